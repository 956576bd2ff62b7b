package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/upb/research-assistant/middleware"
	"github.com/upb/research-assistant/services/chat"
	"github.com/upb/research-assistant/services/providers"
	"github.com/upb/research-assistant/utils"
	"go.uber.org/zap"
)

// CitationsHeader carries the JSON citation manifest of a chat reply
const CitationsHeader = "X-Citations"

// ChatService prepares and streams grounded chat turns
type ChatService interface {
	Prepare(ctx context.Context, messages []providers.Message) (*chat.Turn, error)
	Stream(ctx context.Context, turn *chat.Turn, onChunk chat.ChunkHandler) error
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []providers.Message `json:"messages"`
}

// ChatHandler handles the chat endpoint
type ChatHandler struct {
	chat   ChatService
	logger *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// HandleChat handles POST /api/chat.
// The reply is streamed as plain text; the citations of the documents used
// travel in the X-Citations header.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.RequestIDFrom(ctx)

	var req ChatRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	turn, err := h.chat.Prepare(ctx, req.Messages)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	turn.RequestID = requestID

	citations, err := json.Marshal(turn.Citations)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	sw := &streamWriter{w: w, rc: http.NewResponseController(w), citations: string(citations)}
	err = h.chat.Stream(ctx, turn, sw.write)

	switch {
	case err == nil:
		sw.start()
		h.logger.Debug("chat reply streamed",
			zap.String("request_id", requestID),
			zap.Int("bytes", sw.written))

	case !sw.started:
		HandleServiceError(w, err, h.logger)

	default:
		h.logger.Error("chat stream aborted",
			zap.String("request_id", requestID),
			zap.Int("bytes", sw.written),
			zap.Error(err))
		// Headers are gone; abort the connection so the client sees a
		// truncated body rather than a clean end of stream
		panic(http.ErrAbortHandler)
	}
}

// streamWriter commits the 200 response on the first chunk
type streamWriter struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	citations string
	started   bool
	written   int
}

func (s *streamWriter) start() {
	if s.started {
		return
	}
	s.started = true

	h := s.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set(CitationsHeader, s.citations)
	s.w.WriteHeader(http.StatusOK)
}

func (s *streamWriter) write(text string) error {
	s.start()

	n, err := s.w.Write([]byte(text))
	s.written += n
	if err != nil {
		return err
	}

	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
