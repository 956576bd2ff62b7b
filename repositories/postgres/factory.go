package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/upb/research-assistant/config"
	"github.com/upb/research-assistant/repositories"
)

// RepositoryFactory owns the pool and hands out repositories built on it.
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

var _ repositories.Store = (*RepositoryFactory)(nil)

// NewRepositoryFactory connects and prepares the schema.
func NewRepositoryFactory(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &RepositoryFactory{db: db, logger: logger}, nil
}

func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{ChatTurns: NewChatTurnRepository(f.db, f.logger)}
}

func (f *RepositoryFactory) SQLDB() *sql.DB { return f.db.DB }

func (f *RepositoryFactory) Close() error { return f.db.Close() }
