package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/upb/research-assistant/services/providers"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// GeminiAdapter implements the Provider interface for Google Gemini models
type GeminiAdapter struct {
	config providers.ProviderConfig
	client *genai.Client
}

var _ providers.Provider = (*GeminiAdapter)(nil)

// NewGeminiAdapter creates a Gemini client authenticated with the configured API key
func NewGeminiAdapter(ctx context.Context, config providers.ProviderConfig) (*GeminiAdapter, error) {
	if config.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiAdapter{config: config, client: client}, nil
}

// Name returns the provider name
func (a *GeminiAdapter) Name() string {
	return "gemini"
}

// Close releases the underlying client
func (a *GeminiAdapter) Close() error {
	return a.client.Close()
}

// ChatCompletion performs a chat completion request
func (a *GeminiAdapter) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	session, last, err := a.startChat(req)
	if err != nil {
		return nil, err
	}

	resp, err := session.SendMessage(ctx, last...)
	if err != nil {
		return nil, a.wrapError(ctx, err)
	}

	out := &providers.ChatResponse{
		Model:    req.Model,
		Content:  textFromResponse(resp),
		Provider: a.Name(),
		Latency:  time.Since(startTime),
		Created:  time.Now(),
	}
	if resp.UsageMetadata != nil {
		out.Usage = providers.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return out, nil
}

// ChatCompletionStream performs a streaming chat completion
func (a *GeminiAdapter) ChatCompletionStream(ctx context.Context, req *providers.ChatRequest, callback providers.StreamCallback) error {
	session, last, err := a.startChat(req)
	if err != nil {
		return err
	}

	iter := session.SendMessageStream(ctx, last...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return callback(&providers.StreamChunk{Done: true})
		}
		if err != nil {
			return a.wrapError(ctx, err)
		}

		if text := textFromResponse(resp); text != "" {
			if err := callback(&providers.StreamChunk{Content: text}); err != nil {
				return err
			}
		}
	}
}

// IsAvailable checks if the provider is currently available
func (a *GeminiAdapter) IsAvailable(ctx context.Context) bool {
	_, err := a.client.ListModels(ctx).Next()
	return err == nil || errors.Is(err, iterator.Done)
}

// startChat configures a model and chat session for req and returns the
// parts of the final user turn to send
func (a *GeminiAdapter) startChat(req *providers.ChatRequest) (*genai.ChatSession, []genai.Part, error) {
	system, history, last, err := toContents(req.Messages)
	if err != nil {
		return nil, nil, providers.NewProviderError(a.Name(), "INVALID_REQUEST", err.Error(), 0, false, err)
	}

	model := a.client.GenerativeModel(req.Model)
	model.SystemInstruction = system
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	session := model.StartChat()
	session.History = history

	return session, last, nil
}

func (a *GeminiAdapter) wrapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		retryable := apiErr.Code >= 500 || apiErr.Code == 429
		return providers.NewProviderError(a.Name(), "API_ERROR", apiErr.Message, apiErr.Code, retryable, err)
	}

	return providers.NewProviderError(a.Name(), "GENERATION_ERROR", "Gemini request failed", 0, false, err)
}

// toContents converts a unified conversation to Gemini contents. The leading
// system message becomes the system instruction, assistant turns use the
// "model" role and the final message must come from the user.
func toContents(messages []providers.Message) (*genai.Content, []*genai.Content, []genai.Part, error) {
	systemText, rest := providers.SplitSystem(messages)
	if len(rest) == 0 {
		return nil, nil, nil, errors.New("conversation has no messages")
	}

	lastMsg := rest[len(rest)-1]
	if lastMsg.Role != providers.RoleUser {
		return nil, nil, nil, fmt.Errorf("last message must have role %q, got %q", providers.RoleUser, lastMsg.Role)
	}

	var system *genai.Content
	if systemText != "" {
		system = &genai.Content{Parts: []genai.Part{genai.Text(systemText)}}
	}

	history := make([]*genai.Content, 0, len(rest)-1)
	for _, msg := range rest[:len(rest)-1] {
		role := roleUser
		if msg.Role == providers.RoleAssistant {
			role = roleModel
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	return system, history, []genai.Part{genai.Text(lastMsg.Content)}, nil
}

// textFromResponse concatenates the text parts of the first candidate
func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
