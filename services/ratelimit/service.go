package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/upb/research-assistant/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result is the outcome of a rate limit check
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService keeps one token bucket per client key
type RateLimitService struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewRateLimitService creates a new RateLimitService instance
func NewRateLimitService(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimitService {
	return &RateLimitService{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		ttl:     cfg.TTL,
		now:     time.Now,
		logger:  logger,
	}
}

// Check consumes one token for key when available. When the bucket is
// empty nothing is consumed and RetryAfter tells when a token frees up.
func (s *RateLimitService) Check(key string) Result {
	now := s.now()

	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	s.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Result{Allowed: false}
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{Allowed: false, RetryAfter: delay}
	}

	return Result{Allowed: true}
}

// Cleanup drops buckets idle for longer than the TTL and returns how many
// were removed
func (s *RateLimitService) Cleanup() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Run evicts idle buckets every TTL until ctx is done
func (s *RateLimitService) Run(ctx context.Context) {
	interval := s.ttl
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Cleanup(); removed > 0 {
				s.logger.Debug("evicted idle rate limit buckets", zap.Int("count", removed))
			}
		}
	}
}

// Size returns the number of tracked clients
func (s *RateLimitService) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
