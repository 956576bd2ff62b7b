package openai

import "github.com/upb/research-assistant/services/providers"

// Wire types of the /chat/completions endpoint. Only the fields the
// adapter reads or sends are modelled.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	User        *string       `json:"user,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// streamEvent is the payload of one "data:" line. Some compatible servers
// report mid-stream failures as an error object instead of choices.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// toWire maps a provider neutral request. Zero MaxTokens and Temperature
// are left to the upstream defaults.
func toWire(req *providers.ChatRequest, stream bool) *chatRequest {
	out := &chatRequest{
		Model:    req.Model,
		Messages: make([]wireMessage, 0, len(req.Messages)),
		Stream:   stream,
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	if req.MaxTokens > 0 {
		n := req.MaxTokens
		out.MaxTokens = &n
	}
	if req.Temperature > 0 {
		t := req.Temperature
		out.Temperature = &t
	}
	if user, ok := req.Metadata["user"]; ok && user != "" {
		out.User = &user
	}
	return out
}
