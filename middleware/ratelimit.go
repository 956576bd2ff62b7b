package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/upb/research-assistant/services"
	"github.com/upb/research-assistant/services/ratelimit"
	"github.com/upb/research-assistant/utils"
	"go.uber.org/zap"
)

// RateLimitChecker decides whether a client may proceed
type RateLimitChecker interface {
	Check(key string) ratelimit.Result
}

// RateLimitMiddleware throttles requests per client IP
type RateLimitMiddleware struct {
	checker RateLimitChecker
	logger  *zap.Logger
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware
func NewRateLimitMiddleware(checker RateLimitChecker, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		checker: checker,
		logger:  logger,
	}
}

// Limit rejects requests over the client's budget with 429
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		result := m.checker.Check(key)
		if result.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		m.logger.Warn("rate limit exceeded",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("client", key),
			zap.Duration("retry_after", result.RetryAfter))

		var details map[string]interface{}
		if result.RetryAfter > 0 {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			details = map[string]interface{}{"retry_after_seconds": seconds}
		}
		_ = utils.WriteTooManyRequests(w, services.ErrRateLimitExceeded.Message, details)
	})
}

// clientKey is the client IP without port. chi's RealIP middleware has
// already applied forwarding headers to RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
