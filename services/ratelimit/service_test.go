package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/upb/research-assistant/config"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(rps float64, burst int, ttl time.Duration) (*RateLimitService, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)}
	svc := NewRateLimitService(config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: rps,
		Burst:             burst,
		TTL:               ttl,
	}, zap.NewNop())
	svc.now = clock.Now
	return svc, clock
}

func TestRateLimitService_Burst(t *testing.T) {
	svc, _ := newTestService(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, svc.Check("10.0.0.1").Allowed, "request %d", i)
	}

	res := svc.Check("10.0.0.1")
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)
}

func TestRateLimitService_Refill(t *testing.T) {
	svc, clock := newTestService(2, 1, time.Minute)

	assert.True(t, svc.Check("a").Allowed)
	assert.False(t, svc.Check("a").Allowed)

	clock.Advance(500 * time.Millisecond)
	assert.True(t, svc.Check("a").Allowed)
}

func TestRateLimitService_DeniedDoesNotConsume(t *testing.T) {
	svc, clock := newTestService(1, 1, time.Minute)

	assert.True(t, svc.Check("a").Allowed)
	for i := 0; i < 5; i++ {
		assert.False(t, svc.Check("a").Allowed)
	}

	clock.Advance(time.Second)
	assert.True(t, svc.Check("a").Allowed)
}

func TestRateLimitService_KeysAreIndependent(t *testing.T) {
	svc, _ := newTestService(1, 1, time.Minute)

	assert.True(t, svc.Check("a").Allowed)
	assert.False(t, svc.Check("a").Allowed)
	assert.True(t, svc.Check("b").Allowed)
	assert.Equal(t, 2, svc.Size())
}

func TestRateLimitService_ZeroBurstNeverAllows(t *testing.T) {
	svc, _ := newTestService(1, 0, time.Minute)

	assert.False(t, svc.Check("a").Allowed)
}

func TestRateLimitService_Cleanup(t *testing.T) {
	svc, clock := newTestService(1, 1, 10*time.Minute)

	svc.Check("old")
	clock.Advance(6 * time.Minute)
	svc.Check("fresh")
	clock.Advance(5 * time.Minute)

	assert.Equal(t, 1, svc.Cleanup())
	assert.Equal(t, 1, svc.Size())

	// The evicted client starts over with a full bucket
	assert.True(t, svc.Check("old").Allowed)
}

func TestRateLimitService_Concurrent(t *testing.T) {
	svc, _ := newTestService(1, 50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Check("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
