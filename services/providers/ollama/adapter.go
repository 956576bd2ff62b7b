package ollama

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/upb/research-assistant/services/providers"
)

const defaultBaseURL = "http://localhost:11434"

// OllamaAdapter implements the Provider interface for a local Ollama server
type OllamaAdapter struct {
	config providers.ProviderConfig
	client *api.Client
}

var _ providers.Provider = (*OllamaAdapter)(nil)

// NewOllamaAdapter creates a new Ollama adapter
func NewOllamaAdapter(config providers.ProviderConfig) (*OllamaAdapter, error) {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}

	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", config.BaseURL, err)
	}

	return &OllamaAdapter{
		config: config,
		client: api.NewClient(base, newHTTPClient(config.Timeout)),
	}, nil
}

// Name returns the provider name
func (a *OllamaAdapter) Name() string {
	return "ollama"
}

// ChatCompletion performs a chat completion request
func (a *OllamaAdapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var content strings.Builder
	var final api.ChatResponse
	err := a.chat(ctx, req, false, func(chunk api.ChatResponse) error {
		content.WriteString(chunk.Message.Content)
		if chunk.Done {
			final = chunk
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &providers.ChatResponse{
		Model:        req.Model,
		Content:      content.String(),
		FinishReason: final.DoneReason,
		Provider:     a.Name(),
		Usage: providers.Usage{
			PromptTokens:     final.PromptEvalCount,
			CompletionTokens: final.EvalCount,
			TotalTokens:      final.PromptEvalCount + final.EvalCount,
		},
		Latency: time.Since(startTime),
		Created: time.Now(),
	}, nil
}

// ChatCompletionStream performs a streaming chat completion
func (a *OllamaAdapter) ChatCompletionStream(ctx context.Context, req *providers.ChatRequest, callback providers.StreamCallback) error {
	return a.chat(ctx, req, true, func(chunk api.ChatResponse) error {
		if chunk.Message.Content != "" {
			if err := callback(&providers.StreamChunk{Content: chunk.Message.Content}); err != nil {
				return err
			}
		}
		if chunk.Done {
			return callback(&providers.StreamChunk{Done: true})
		}
		return nil
	})
}

// IsAvailable checks if the Ollama server answers
func (a *OllamaAdapter) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	_, err := a.client.List(ctx)
	return err == nil
}

// chat sends req to /api/chat and hands every response object to fn.
// Ollama answers with line-delimited JSON even when streaming is off.
func (a *OllamaAdapter) chat(ctx context.Context, req *providers.ChatRequest, stream bool, fn api.ChatResponseFunc) error {
	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: make([]api.Message, len(req.Messages)),
		Stream:   &stream,
	}
	for i, msg := range req.Messages {
		chatReq.Messages[i] = api.Message{Role: msg.Role, Content: msg.Content}
	}
	if req.Temperature > 0 || req.MaxTokens > 0 {
		chatReq.Options = make(map[string]interface{})
		if req.Temperature > 0 {
			chatReq.Options["temperature"] = req.Temperature
		}
		if req.MaxTokens > 0 {
			chatReq.Options["num_predict"] = req.MaxTokens
		}
	}

	var callbackErr error
	done := false
	err := a.client.Chat(ctx, chatReq, func(chunk api.ChatResponse) error {
		if err := fn(chunk); err != nil {
			callbackErr = err
			return err
		}
		done = done || chunk.Done
		return nil
	})

	switch {
	case callbackErr != nil:
		return callbackErr
	case err != nil:
		return a.wrapError(ctx, err)
	case !done:
		return providers.NewProviderError(a.Name(), "STREAM_ERROR", "Stream ended before done", 0, true, io.ErrUnexpectedEOF)
	}
	return nil
}

func (a *OllamaAdapter) wrapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.ErrorMessage
		if msg == "" {
			msg = http.StatusText(statusErr.StatusCode)
		}
		return providers.NewProviderError(a.Name(), "API_ERROR",
			fmt.Sprintf("Ollama API error (status %d): %s", statusErr.StatusCode, msg),
			statusErr.StatusCode, statusErr.StatusCode >= 500, err)
	}

	return providers.NewProviderError(a.Name(), "STREAM_ERROR", err.Error(), 0, true, err)
}
