// Package app wires configuration, storage, providers and services into
// the object graph shared by the HTTP server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/research-assistant/config"
	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/internal/rag"
	"github.com/upb/research-assistant/repositories"
	"github.com/upb/research-assistant/services/audit"
	"github.com/upb/research-assistant/services/chat"
	"github.com/upb/research-assistant/services/providers"
	"github.com/upb/research-assistant/services/ratelimit"
	"go.uber.org/zap"
)

// Version is set at build time with
// -ldflags "-X github.com/upb/research-assistant/app.Version=..."
var Version = "0.1.0"

type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Store is nil when chat turns are not persisted.
	Store        repositories.Store
	Repositories *repositories.Repositories

	Corpus *corpus.Store
	Engine *rag.Engine

	ProviderRegistry *providers.Registry
	Audit            *audit.Service
	RateLimiter      *ratelimit.RateLimitService
	Chat             *chat.ChatService

	// shutdown runs in reverse order on Close.
	shutdown []func() error
	cancel   context.CancelFunc
}

// NewDependencies builds everything the server needs. Nothing runs in the
// background until Start.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	d := &Dependencies{Config: cfg, Logger: logger}

	store, err := LoadCorpus(cfg.Corpus, logger)
	if err != nil {
		return nil, err
	}
	d.Corpus = store
	d.Engine = rag.NewEngine(store)

	if err := d.openStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := d.registerProviders(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	d.Audit = audit.NewService(d.Repositories.ChatTurns, logger, audit.DefaultConfig())
	if cfg.RateLimit.Enabled {
		d.RateLimiter = ratelimit.NewRateLimitService(cfg.RateLimit, logger)
	}

	// Only an enabled service is handed over so a disabled one does not
	// become a non-nil recorder.
	var recorder chat.TurnRecorder
	if d.Audit.Enabled() {
		recorder = d.Audit
	}
	d.Chat = chat.NewChatService(d.Engine, d.Corpus.Len(), d.ProviderRegistry, recorder, cfg.Chat, logger)

	logger.Info("dependencies initialized")
	return d, nil
}

// SQLDB is the handle of the open audit store, or nil.
func (d *Dependencies) SQLDB() *sql.DB {
	if d.Store == nil {
		return nil
	}
	return d.Store.SQLDB()
}

// Start launches the audit workers and the rate limiter sweeper. They stop
// on Close.
func (d *Dependencies) Start(ctx context.Context) error {
	if err := d.Audit.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}
	d.onClose(func() error {
		if err := d.Audit.Stop(d.Config.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("failed to stop audit service: %w", err)
		}
		return nil
	})

	bg, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if d.RateLimiter != nil {
		go d.RateLimiter.Run(bg)
	}
	return nil
}

// Close releases everything in the reverse order it was acquired and
// returns the joined errors.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")
	if d.cancel != nil {
		d.cancel()
	}

	var errs []error
	for i := len(d.shutdown) - 1; i >= 0; i-- {
		if err := d.shutdown[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.shutdown = nil
	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %w", errors.Join(errs...))
	}
	return nil
}

func (d *Dependencies) onClose(fn func() error) {
	d.shutdown = append(d.shutdown, fn)
}
