package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/research-assistant/services/providers"
)

// sseAdapter serves events as one server-sent event each.
func sseAdapter(t *testing.T, events ...string) *OpenAIAdapter {
	t.Helper()
	return newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, ev := range events {
			fmt.Fprintf(w, "%s\n\n", ev)
			flusher.Flush()
		}
	})
}

func delta(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`, content)
}

func collect(adapter *OpenAIAdapter) ([]string, bool, error) {
	var parts []string
	done := false
	err := adapter.ChatCompletionStream(context.Background(), &providers.ChatRequest{Model: "gpt-4o-mini"},
		func(chunk *providers.StreamChunk) error {
			if chunk.Done {
				done = true
			} else {
				parts = append(parts, chunk.Content)
			}
			return nil
		})
	return parts, done, err
}

func TestChatCompletionStream(t *testing.T) {
	adapter := sseAdapter(t,
		`data: {"id":"c1","choices":[{"index":0,"delta":{"role":"assistant"},"finish_reason":null}]}`,
		": keep-alive",
		"event: message",
		delta("Crisis "),
		delta("leadership"),
		`data: {"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		"data: [DONE]",
	)

	parts, done, err := collect(adapter)
	require.NoError(t, err)
	assert.Equal(t, []string{"Crisis ", "leadership"}, parts)
	assert.True(t, done)
}

func TestChatCompletionStream_OutlastsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for i := 0; i < 5; i++ {
			fmt.Fprintf(w, "%s\n\n", delta(fmt.Sprintf("t%d ", i)))
			flusher.Flush()
			time.Sleep(100 * time.Millisecond)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter(providers.ProviderConfig{APIKey: "test-key", BaseURL: server.URL, Timeout: 250 * time.Millisecond})

	parts, done, err := collect(adapter)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "t0 t1 t2 t3 t4 ", strings.Join(parts, ""))
}

func TestChatCompletionStream_CallbackErrorStops(t *testing.T) {
	adapter := sseAdapter(t, delta("one"), delta("two"), "data: [DONE]")

	stop := errors.New("client went away")
	calls := 0
	err := adapter.ChatCompletionStream(context.Background(), &providers.ChatRequest{Model: "gpt-4o-mini"},
		func(*providers.StreamChunk) error {
			calls++
			return stop
		})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestChatCompletionStream_Failures(t *testing.T) {
	t.Run("missing done marker", func(t *testing.T) {
		parts, done, err := collect(sseAdapter(t, delta("partial")))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.True(t, providers.IsRetryable(err))
		assert.Equal(t, []string{"partial"}, parts)
		assert.False(t, done)
	})

	t.Run("error event", func(t *testing.T) {
		_, _, err := collect(sseAdapter(t, `data: {"error":{"message":"model overloaded","type":"server_error"}}`))
		var provErr *providers.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "server_error", provErr.Code)
		assert.Equal(t, "model overloaded", provErr.Error())
	})

	t.Run("malformed event", func(t *testing.T) {
		_, _, err := collect(sseAdapter(t, "data: {not json"))
		var provErr *providers.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "UNMARSHAL_ERROR", provErr.Code)
	})

	t.Run("rejected before streaming", func(t *testing.T) {
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, _, err := collect(adapter)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "upstream returned 500"))
	})
}
