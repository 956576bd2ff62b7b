package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/repositories"
)

// MaxListLimit caps ListRecent page sizes
const MaxListLimit = 500

// ChatTurnRepository implements the repositories.ChatTurnRepository interface
type ChatTurnRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChatTurnRepository creates a new chat turn repository
func NewChatTurnRepository(db *DB, logger *zap.Logger) repositories.ChatTurnRepository {
	return &ChatTurnRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new chat turn
func (r *ChatTurnRepository) Create(ctx context.Context, turn *models.ChatTurn) error {
	query := `
		INSERT INTO chat_turns (
			id, request_id, query, provider, model, citation_ids,
			status, error_message, latency_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		turn.ID,
		turn.RequestID,
		turn.Query,
		turn.Provider,
		turn.Model,
		pq.Array(turn.CitationIDs),
		turn.Status,
		turn.ErrorMessage,
		turn.LatencyMs,
		turn.CreatedAt,
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

	query := `
		SELECT id, request_id, query, provider, model, citation_ids,
		       status, error_message, latency_ms, created_at
		FROM chat_turns
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat turns: %w", err)
	}
	defer rows.Close()

	turns := make([]*models.ChatTurn, 0)
	for rows.Next() {
		turn := &models.ChatTurn{}
		if err := rows.Scan(
			&turn.ID,
			&turn.RequestID,
			&turn.Query,
			&turn.Provider,
			&turn.Model,
			pq.Array(&turn.CitationIDs),
			&turn.Status,
			&turn.ErrorMessage,
			&turn.LatencyMs,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		if turn.CitationIDs == nil {
			turn.CitationIDs = []string{}
		}
		turns = append(turns, turn)
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
