package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurnStatus represents the outcome of a chat turn
type ChatTurnStatus string

const (
	ChatTurnStatusCompleted ChatTurnStatus = "completed"
	ChatTurnStatusFailed    ChatTurnStatus = "failed"
)

// ChatTurn is the audit record of one answered chat request.
// Only metadata and the (redacted) query are stored, never the reply.
type ChatTurn struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	RequestID    string         `json:"request_id" db:"request_id"`
	Query        string         `json:"query" db:"query"`
	Provider     string         `json:"provider" db:"provider"`
	Model        string         `json:"model" db:"model"`
	CitationIDs  []string       `json:"citation_ids" db:"citation_ids"`
	Status       ChatTurnStatus `json:"status" db:"status"`
	ErrorMessage *string        `json:"error_message,omitempty" db:"error_message"`
	LatencyMs    int            `json:"latency_ms" db:"latency_ms"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ChatTurn model
func (ChatTurn) TableName() string {
	return "chat_turns"
}

// NewChatTurn creates a completed ChatTurn for the given request
func NewChatTurn(requestID, query, provider, model string, citationIDs []string) *ChatTurn {
	if citationIDs == nil {
		citationIDs = []string{}
	}
	return &ChatTurn{
		ID:          uuid.New(),
		RequestID:   requestID,
		Query:       query,
		Provider:    provider,
		Model:       model,
		CitationIDs: citationIDs,
		Status:      ChatTurnStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
}

// MarkFailed records a failure on the turn
func (t *ChatTurn) MarkFailed(err error) {
	t.Status = ChatTurnStatusFailed
	if err != nil {
		msg := err.Error()
		t.ErrorMessage = &msg
	}
}
