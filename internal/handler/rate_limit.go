package handler

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/internal/service"
)

// RateLimitMiddleware creates a rate limiting middleware. A limiter outage lets
// the request through.
func RateLimitMiddleware(
	rateLimiter service.RateLimiter,
	limit int,
	window time.Duration,
	keyFunc func(*gin.Context) string,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := rateLimiter.Allow(c.Request.Context(), keyFunc(c), limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			respondError(c, logger, domain.ErrRateLimited)
			return
		}

		c.Next()
	}
}

// IPBasedKey keys the limit on the route and the client IP. gin resolves
// forwarded headers only from trusted proxies.
func IPBasedKey(c *gin.Context) string {
	return c.FullPath() + ":" + c.ClientIP()
}
