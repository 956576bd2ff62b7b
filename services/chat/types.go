package chat

import (
	"time"

	"github.com/upb/research-assistant/internal/prompt"
	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/services/providers"
)

// Turn is a validated chat request together with its grounding.
// It is produced by Prepare and consumed by Stream.
type Turn struct {
	RequestID string

	// Conversation as received, oldest first
	Messages []providers.Message

	// Query is the content of the latest message
	Query string

	Results      []models.SearchResult
	Citations    []models.Citation
	SystemPrompt string

	// Signals lists instruction-subversion phrasing found in the query
	Signals []prompt.Signal

	StartTime time.Time
}

// CitationIDs returns the ids of the cited documents in rank order
func (t *Turn) CitationIDs() []string {
	ids := make([]string, 0, len(t.Citations))
	for _, c := range t.Citations {
		ids = append(ids, c.ID)
	}
	return ids
}

// ChunkHandler receives streamed reply text in order
type ChunkHandler func(text string) error

// TurnRecorder persists chat turn metadata
type TurnRecorder interface {
	Record(turn *models.ChatTurn) error
}
