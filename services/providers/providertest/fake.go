// Package providertest provides a scripted Provider for tests.
package providertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/upb/research-assistant/services/providers"
)

// Fake is a Provider that replays fixed chunks and records every request
type Fake struct {
	name string

	mu        sync.Mutex
	chunks    []string
	err       error
	failAfter int
	available bool
	requests  []*providers.ChatRequest
}

// New creates a Fake that streams chunks in order
func New(name string, chunks ...string) *Fake {
	return &Fake{
		name:      name,
		chunks:    chunks,
		failAfter: -1,
		available: true,
	}
}

// FailWith makes every call return err before any chunk is sent
func (f *Fake) FailWith(err error) *Fake {
	return f.FailAfter(0, err)
}

// FailAfter makes streaming return err after n chunks were delivered
func (f *Fake) FailAfter(n int, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.failAfter = n
	return f
}

// SetAvailable controls IsAvailable
func (f *Fake) SetAvailable(available bool) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available = available
	return f
}

// Requests returns the requests received so far
func (f *Fake) Requests() []*providers.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*providers.ChatRequest(nil), f.requests...)
}

func (f *Fake) Name() string {
	return f.name
}

func (f *Fake) ChatCompletion(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	var sb strings.Builder
	err := f.ChatCompletionStream(ctx, req, func(chunk *providers.StreamChunk) error {
		sb.WriteString(chunk.Content)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &providers.ChatResponse{
		ID:           "fake-response",
		Model:        req.Model,
		Content:      sb.String(),
		Provider:     f.name,
		Created:      time.Now(),
		FinishReason: "stop",
	}, nil
}

func (f *Fake) ChatCompletionStream(ctx context.Context, req *providers.ChatRequest, callback providers.StreamCallback) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	chunks, err, failAfter := f.chunks, f.err, f.failAfter
	f.mu.Unlock()

	for i, c := range chunks {
		if err != nil && i == failAfter {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if cbErr := callback(&providers.StreamChunk{Content: c}); cbErr != nil {
			return cbErr
		}
	}
	if err != nil {
		return err
	}

	return callback(&providers.StreamChunk{Done: true})
}

func (f *Fake) IsAvailable(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

var _ providers.Provider = (*Fake)(nil)
