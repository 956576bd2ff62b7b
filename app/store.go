package app

import (
	"context"
	"fmt"

	"github.com/upb/research-assistant/repositories"
	"github.com/upb/research-assistant/repositories/postgres"
	"github.com/upb/research-assistant/repositories/sqlite"
)

// openStore picks PostgreSQL when configured, then a SQLite file, and
// otherwise leaves the audit trail off.
func (d *Dependencies) openStore(ctx context.Context) error {
	cfg := d.Config

	var (
		store repositories.Store
		err   error
	)
	switch {
	case cfg.Database != nil:
		store, err = postgres.NewRepositoryFactory(ctx, *cfg.Database, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create repository factory: %w", err)
		}
	case cfg.Audit.SQLitePath != "":
		store, err = sqlite.NewStore(ctx, cfg.Audit.SQLitePath, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite audit store: %w", err)
		}
	default:
		d.Logger.Info("no database configured, chat turns will not be persisted")
		d.Repositories = &repositories.Repositories{}
		return nil
	}

	d.Store = store
	d.Repositories = store.NewRepositories()
	d.onClose(func() error {
		if err := store.Close(); err != nil {
			return fmt.Errorf("failed to close audit store: %w", err)
		}
		return nil
	})
	return nil
}
