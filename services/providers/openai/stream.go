package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/upb/research-assistant/services/providers"
)

const maxEventSize = 1 << 20

// ChatCompletionStream reads the server-sent event stream until the
// "[DONE]" marker. A stream that ends without it is reported as
// io.ErrUnexpectedEOF.
func (a *OpenAIAdapter) ChatCompletionStream(ctx context.Context, req *providers.ChatRequest, callback providers.StreamCallback) error {
	resp, err := a.post(ctx, toWire(req, true))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)

	for scanner.Scan() {
		data, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return callback(&providers.StreamChunk{Done: true})
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return a.fail("UNMARSHAL_ERROR", "Failed to parse stream chunk", resp.StatusCode, false, err)
		}
		if ev.Error != nil {
			return a.fail(ev.Error.Type, ev.Error.Message, resp.StatusCode, false, errors.New(ev.Error.Message))
		}
		for _, c := range ev.Choices {
			if c.Delta.Content == "" {
				continue
			}
			if err := callback(&providers.StreamChunk{Content: c.Delta.Content}); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return a.fail("STREAM_ERROR", "Failed to read stream", resp.StatusCode, true, err)
	}
	return a.fail("STREAM_ERROR", "Stream ended without completion marker", resp.StatusCode, true, io.ErrUnexpectedEOF)
}
