package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/research-assistant/services/providers"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

const maxErrorBody = 64 << 10

// OpenAIAdapter talks to OpenAI or any server exposing the same
// /chat/completions and /models endpoints.
type OpenAIAdapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
}

var _ providers.Provider = (*OpenAIAdapter)(nil)

func NewOpenAIAdapter(config providers.ProviderConfig) *OpenAIAdapter {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &OpenAIAdapter{
		config:     config,
		httpClient: providers.NewHTTPClient(config.Timeout),
	}
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	resp, err := a.post(ctx, toWire(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, a.fail("UNMARSHAL_ERROR", "Failed to decode response", resp.StatusCode, false, err)
	}
	if len(body.Choices) == 0 {
		return nil, a.fail("EMPTY_RESPONSE", "Response contained no choices", resp.StatusCode, false, nil)
	}

	choice := body.Choices[0]
	return &providers.ChatResponse{
		ID:           body.ID,
		Provider:     a.Name(),
		Model:        body.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: providers.Usage{
			PromptTokens:     body.Usage.PromptTokens,
			CompletionTokens: body.Usage.CompletionTokens,
			TotalTokens:      body.Usage.TotalTokens,
		},
		Latency: time.Since(start),
		Created: time.Unix(body.Created, 0),
	}, nil
}

// IsAvailable lists models with the configured key. Without a key the
// adapter is never available.
func (a *OpenAIAdapter) IsAvailable(ctx context.Context) bool {
	if a.config.APIKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	a.authorize(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// post sends a chat completion request. Any status other than 200 becomes
// a ProviderError and the response body is closed.
func (a *OpenAIAdapter) post(ctx context.Context, body *chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, a.fail("MARSHAL_ERROR", "Failed to marshal request", 0, false, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, a.fail("REQUEST_ERROR", "Failed to create request", 0, false, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}
	a.authorize(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, a.fail("HTTP_ERROR", "HTTP request failed", 0, true, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, a.statusError(resp.StatusCode, raw)
}

func (a *OpenAIAdapter) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
}

// statusError prefers the structured error envelope and falls back to the
// raw body. Throttling and server errors are retryable.
func (a *OpenAIAdapter) statusError(status int, raw []byte) error {
	retryable := status == http.StatusTooManyRequests || status >= 500

	var env errorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		return a.fail(env.Error.Type, env.Error.Message, status, retryable, errors.New(env.Error.Message))
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = http.StatusText(status)
	}
	return a.fail("UNKNOWN_ERROR", fmt.Sprintf("upstream returned %d: %s", status, text), status, retryable, nil)
}

func (a *OpenAIAdapter) fail(code, message string, status int, retryable bool, cause error) error {
	return providers.NewProviderError(a.Name(), code, message, status, retryable, cause)
}
