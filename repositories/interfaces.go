package repositories

import (
	"context"
	"database/sql"

	"github.com/upb/research-assistant/models"
)

// ChatTurnRepository stores the audit trail of chat requests.
type ChatTurnRepository interface {
	Create(ctx context.Context, turn *models.ChatTurn) error
	// ListRecent returns at most limit turns, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.ChatTurn, error)
	CountByStatus(ctx context.Context) (map[models.ChatTurnStatus]int, error)
}

// Repositories groups the repositories of one Store. A nil field means the
// store does not back that repository.
type Repositories struct {
	ChatTurns ChatTurnRepository
}

// Store is an opened database. SQLDB exposes the handle for readiness
// checks.
type Store interface {
	NewRepositories() *Repositories
	SQLDB() *sql.DB
	Close() error
}
