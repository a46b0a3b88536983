package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// TokenRateLimitMiddleware enforces per-IP rate limiting on the token endpoint.
//
// Used on the unauthenticated POST /v1/token route to slow down credential
// stuffing. The key is c.ClientIP(), which honors the trusted proxy headers
// configured on the engine.
//
// Returns 429 Too Many Requests with a Retry-After header when the limit is exceeded.
func TokenRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if allowed, retryAfter := store.allow(clientIP); !allowed {
			logger.Debug("token rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))
			rejectTooManyRequests(c, retryAfter,
				"Too many token requests from this IP. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}
