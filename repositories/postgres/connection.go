package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/upb/research-assistant/config"
)

const pingTimeout = 5 * time.Second

// DB is a PostgreSQL pool holding the chat_turns table.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB opens a pool sized from cfg and fails unless the server answers a
// ping within pingTimeout.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", zap.String("connection", cfg.LogString()))
	return Wrap(pool, logger), nil
}

func Wrap(pool *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: pool, logger: logger}
}

func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// citation_ids is a native text array, written and read through pq.Array.
const chatTurnsSchema = `
	CREATE TABLE IF NOT EXISTS chat_turns (
		id UUID PRIMARY KEY,
		request_id VARCHAR(255) NOT NULL,
		query TEXT NOT NULL,
		provider VARCHAR(100) NOT NULL,
		model VARCHAR(255) NOT NULL,
		citation_ids TEXT[] NOT NULL DEFAULT '{}',
		status VARCHAR(50) NOT NULL,
		error_message TEXT,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chat_turns_created_at ON chat_turns(created_at);
	CREATE INDEX IF NOT EXISTS idx_chat_turns_request_id ON chat_turns(request_id);
	CREATE INDEX IF NOT EXISTS idx_chat_turns_status ON chat_turns(status);
`

// InitSchema creates the chat_turns table and its indexes if missing.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, chatTurnsSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	db.logger.Info("database schema initialized")
	return nil
}
