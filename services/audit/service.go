package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/upb/research-assistant/internal/prompt"
	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/repositories"
	"go.uber.org/zap"
)

var (
	ErrNotStarted = errors.New("audit service not started")
	ErrBufferFull = errors.New("audit buffer full")
)

// Service persists chat turns asynchronously
type Service struct {
	repo        repositories.ChatTurnRepository
	logger      *zap.Logger
	turns       chan *models.ChatTurn
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the Service
type Config struct {
	BufferSize  int // Size of the turn buffer channel
	WorkerCount int // Number of concurrent writers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewService creates a new audit Service. A nil repository yields a
// disabled service whose writes are dropped and whose listings are empty.
func NewService(repo repositories.ChatTurnRepository, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}

	return &Service{
		repo:        repo,
		logger:      logger,
		turns:       make(chan *models.ChatTurn, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Enabled reports whether turns are persisted
func (s *Service) Enabled() bool {
	return s.repo != nil
}

// Start starts the background writers
func (s *Service) Start() error {
	if !s.Enabled() {
		s.logger.Info("audit disabled, no database configured")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting turns and waits for queued ones to be written
func (s *Service) Stop(timeout time.Duration) error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	pending := len(s.turns)
	close(s.turns)
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_turns", pending))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record queues a turn for persistence without blocking. The query is
// redacted before it leaves the caller.
func (s *Service) Record(turn *models.ChatTurn) error {
	if !s.Enabled() || turn == nil {
		return nil
	}

	turn.Query, _ = prompt.Redact(turn.Query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	select {
	case s.turns <- turn:
		return nil
	default:
		s.logger.Warn("audit channel full, dropping chat turn",
			zap.String("request_id", turn.RequestID),
			zap.String("status", string(turn.Status)))
		return ErrBufferFull
	}
}

// ListRecent returns the newest stored turns
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*models.ChatTurn, error) {
	if !s.Enabled() {
		return []*models.ChatTurn{}, nil
	}
	return s.repo.ListRecent(ctx, limit)
}

// CountByStatus returns stored turn counts per status
func (s *Service) CountByStatus(ctx context.Context) (map[models.ChatTurnStatus]int, error) {
	if !s.Enabled() {
		return map[models.ChatTurnStatus]int{}, nil
	}
	return s.repo.CountByStatus(ctx)
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for turn := range s.turns {
		if err := s.write(turn); err != nil {
			s.logger.Error("failed to write chat turn",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("request_id", turn.RequestID))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *Service) write(turn *models.ChatTurn) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.Create(ctx, turn); err != nil {
		return fmt.Errorf("failed to insert chat turn: %w", err)
	}
	return nil
}

// GetStats returns statistics about the audit service
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Enabled:      s.Enabled(),
		BufferSize:   s.bufferSize,
		PendingTurns: len(s.turns),
		WorkerCount:  s.workerCount,
		Started:      s.started,
	}
}

// Stats represents audit service statistics
type Stats struct {
	Enabled      bool `json:"enabled"`
	BufferSize   int  `json:"buffer_size"`
	PendingTurns int  `json:"pending_turns"`
	WorkerCount  int  `json:"worker_count"`
	Started      bool `json:"started"`
}
