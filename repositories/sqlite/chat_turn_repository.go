package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/repositories"
)

// MaxListLimit caps ListRecent page sizes
const MaxListLimit = 500

// ChatTurnRepository implements repositories.ChatTurnRepository on SQLite.
// Citation ids are stored as a JSON array and timestamps as Unix microseconds.
type ChatTurnRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewChatTurnRepository creates a new chat turn repository
func NewChatTurnRepository(db *sql.DB, logger *zap.Logger) repositories.ChatTurnRepository {
	return &ChatTurnRepository{db: db, logger: logger}
}

// Create inserts a new chat turn
func (r *ChatTurnRepository) Create(ctx context.Context, turn *models.ChatTurn) error {
	citations := turn.CitationIDs
	if citations == nil {
		citations = []string{}
	}
	citationJSON, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("failed to encode citation ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO chat_turns (
			id, request_id, query, provider, model, citation_ids,
			status, error_message, latency_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.ID.String(),
		turn.RequestID,
		turn.Query,
		turn.Provider,
		turn.Model,
		string(citationJSON),
		string(turn.Status),
		turn.ErrorMessage,
		turn.LatencyMs,
		turn.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat turn: %w", err)
	}

	r.logger.Debug("chat turn inserted",
		zap.String("id", turn.ID.String()),
		zap.String("status", string(turn.Status)))
	return nil
}

// ListRecent retrieves the most recent chat turns, newest first
func (r *ChatTurnRepository) ListRecent(ctx context.Context, limit int) ([]*models.ChatTurn, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, query, provider, model, citation_ids,
		       status, error_message, latency_ms, created_at
		FROM chat_turns
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat turns: %w", err)
	}
	defer rows.Close()

	turns := make([]*models.ChatTurn, 0)
	for rows.Next() {
		var (
			turn         models.ChatTurn
			citationJSON string
			createdAt    int64
		)
		if err := rows.Scan(
			&turn.ID,
			&turn.RequestID,
			&turn.Query,
			&turn.Provider,
			&turn.Model,
			&citationJSON,
			&turn.Status,
			&turn.ErrorMessage,
			&turn.LatencyMs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		if err := json.Unmarshal([]byte(citationJSON), &turn.CitationIDs); err != nil {
			return nil, fmt.Errorf("failed to decode citation ids of %s: %w", turn.ID, err)
		}
		if turn.CitationIDs == nil {
			turn.CitationIDs = []string{}
		}
		turn.CreatedAt = time.UnixMicro(createdAt).UTC()
		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat turns: %w", err)
	}

	return turns, nil
}

// CountByStatus returns the number of stored turns per status
func (r *ChatTurnRepository) CountByStatus(ctx context.Context) (map[models.ChatTurnStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM chat_turns GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count chat turns: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ChatTurnStatus]int)
	for rows.Next() {
		var status models.ChatTurnStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn count: %w", err)
		}
		counts[status] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat turn counts: %w", err)
	}

	return counts, nil
}
