// Package sqlite persists chat turns in a local SQLite file, for running the
// audit trail without a PostgreSQL server.
//
// It uses modernc.org/sqlite, a pure Go driver that needs no cgo.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/upb/research-assistant/repositories"
)

const chatTurnsSchema = `
	CREATE TABLE IF NOT EXISTS chat_turns (
		id            TEXT PRIMARY KEY,
		request_id    TEXT NOT NULL,
		query         TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		citation_ids  TEXT NOT NULL DEFAULT '[]',
		status        TEXT NOT NULL,
		error_message TEXT,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chat_turns_created_at ON chat_turns(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_chat_turns_status ON chat_turns(status);
`

// Store is a SQLite database holding the audit tables
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

var _ repositories.Store = (*Store)(nil)

// NewStore opens (creating if needed) the database file at path and
// prepares the schema
func NewStore(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY from the audit workers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, chatTurnsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("sqlite audit store opened", zap.String("path", path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// NewRepositories creates all repository instances backed by the store
func (s *Store) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		ChatTurns: NewChatTurnRepository(s.db, s.logger),
	}
}

func (s *Store) SQLDB() *sql.DB {
	return s.db
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
