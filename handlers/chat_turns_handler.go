package handlers

import (
	"context"
	"net/http"

	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/utils"
	"go.uber.org/zap"
)

const (
	defaultTurnsLimit = 50
	maxTurnsLimit     = 500
)

// TurnLister reads stored chat turns
type TurnLister interface {
	Enabled() bool
	ListRecent(ctx context.Context, limit int) ([]*models.ChatTurn, error)
}

// ChatTurnListResponse is the payload of GET /api/v1/chat/turns
type ChatTurnListResponse struct {
	Enabled bool               `json:"enabled"`
	Turns   []*models.ChatTurn `json:"turns"`
}

type turnListQuery struct {
	Limit int `validate:"gte=1"`
}

// ChatTurnsHandler exposes the chat audit trail
type ChatTurnsHandler struct {
	turns  TurnLister
	logger *zap.Logger
}

// NewChatTurnsHandler creates a new ChatTurnsHandler
func NewChatTurnsHandler(turns TurnLister, logger *zap.Logger) *ChatTurnsHandler {
	return &ChatTurnsHandler{
		turns:  turns,
		logger: logger,
	}
}

// HandleList handles GET /api/v1/chat/turns?limit=
func (h *ChatTurnsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.QueryInt(r, "limit", defaultTurnsLimit)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	params := turnListQuery{Limit: limit}
	if err := utils.ValidateStruct(&params); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if params.Limit > maxTurnsLimit {
		params.Limit = maxTurnsLimit
	}

	turns, err := h.turns.ListRecent(r.Context(), params.Limit)
	if err != nil {
		h.logger.Error("failed to list chat turns", zap.Error(err))
		if err := utils.WriteInternalServerError(w, genericFailureMessage, "failed to list chat turns"); err != nil {
			h.logger.Error("failed to write response", zap.Error(err))
		}
		return
	}
	if turns == nil {
		turns = []*models.ChatTurn{}
	}

	if err := utils.WriteOK(w, ChatTurnListResponse{Enabled: h.turns.Enabled(), Turns: turns}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
