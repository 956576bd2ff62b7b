package providers

import (
	"context"
	"errors"
	"time"
)

// Provider is one LLM backend. Registry keys providers by Name, which is
// also the prefix of a "provider/model" identifier.
type Provider interface {
	Name() string
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// ChatCompletionStream calls callback once per content delta and a final
	// time with Done set. A callback error stops the stream and is returned.
	ChatCompletionStream(ctx context.Context, req *ChatRequest, callback StreamCallback) error
	IsAvailable(ctx context.Context) bool
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is provider neutral. Model carries no provider prefix and a
// system instruction, when present, is the first message.
type ChatRequest struct {
	Model       string            `json:"model"`
	Messages    []Message         `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ChatResponse struct {
	ID           string        `json:"id"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Content      string        `json:"content"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Usage        Usage         `json:"usage"`
	Latency      time.Duration `json:"latency"`
	Created      time.Time     `json:"created"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type StreamChunk struct {
	Content string
	Done    bool
}

type StreamCallback func(chunk *StreamChunk) error

// ProviderConfig is shared by the HTTP based adapters. Headers are added to
// every outgoing request.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// ProviderError is what adapters return for upstream failures. Code is the
// upstream error type when one is reported, otherwise an adapter constant
// such as "HTTP_ERROR". StatusCode is zero when no response was received.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.Cause == nil || e.Cause.Error() == e.Message {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable reports whether err wraps a retryable ProviderError.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// SplitSystem separates a leading system message from the rest of the
// conversation, for APIs that take the instruction out of band.
func SplitSystem(messages []Message) (string, []Message) {
	if len(messages) == 0 || messages[0].Role != RoleSystem {
		return "", messages
	}
	return messages[0].Content, messages[1:]
}
