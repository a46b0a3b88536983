package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/permguard/internal/errors"
	"github.com/allisson/permguard/internal/httputil"
)

// maxTrackedLimiters bounds the number of keys with their own limiter. The
// least recently used key is dropped first and starts over with a full bucket.
const maxTrackedLimiters = 10000

// limiterStore holds one token bucket per key.
type limiterStore struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rps      float64
	burst    int
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	// lru.New only fails for a non-positive size.
	limiters, _ := lru.New[string, *rate.Limiter](maxTrackedLimiters)
	return &limiterStore{
		limiters: limiters,
		rps:      rps,
		burst:    burst,
	}
}

// getLimiter retrieves or creates the limiter for key.
func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, ok := s.limiters.Get(key); ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	s.limiters.Add(key, limiter)
	return limiter
}

// allow reports whether a request for key may proceed. When it may not, the
// returned value is the number of seconds to wait.
func (s *limiterStore) allow(key string) (bool, int) {
	limiter := s.getLimiter(key)
	if limiter.Allow() {
		return true, 0
	}

	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}

func rejectTooManyRequests(c *gin.Context, retryAfter int, message string) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": message,
	})
}

// RateLimitMiddleware enforces per-user rate limiting on authenticated requests.
//
// MUST be used after AuthenticationMiddleware. Each user gets an independent
// token bucket keyed by the principal's user id.
//
// Returns 429 Too Many Requests with a Retry-After header when the limit is exceeded.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no principal in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		userID, ok := principal.UserID()
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		if allowed, retryAfter := store.allow(userID.String()); !allowed {
			logger.Debug("rate limit exceeded",
				slog.String("user_id", userID.String()),
				slog.Int("retry_after", retryAfter))
			rejectTooManyRequests(c, retryAfter, "Too many requests. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}
