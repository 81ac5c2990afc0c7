package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/certifiedcode/memberguard/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowCounter is the Redis surface used by the distributed limiter
type WindowCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisRateLimitMiddleware is a fixed-window limiter shared across replicas.
// When counter is nil or Redis errors, the request is judged by an
// in-memory token bucket instead.
func RedisRateLimitMiddleware(counter WindowCounter, config RateLimitConfig) gin.HandlerFunc {
	if counter == nil {
		return memoryRateLimit(config)
	}
	fallback := newRateLimiter(config)

	return func(c *gin.Context) {
		key := config.key(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		redisKey := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), key)
		count, err := counter.Incr(ctx, redisKey)
		if err != nil {
			logger.Log.Warn("Redis rate limiter unavailable, using in-memory limiter",
				logger.WithIP(c.ClientIP()),
				zap.Error(err),
			)
			if !fallback.Allow(key) {
				rejectRateLimited(c, config, fallback.RetryAfter(key))
				return
			}
			c.Next()
			return
		}

		if count == 1 {
			if err := counter.Expire(ctx, redisKey, config.Window); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration",
					zap.String("key", redisKey),
					zap.Error(err),
				)
			}
		}

		if count > int64(config.Limit) {
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(c.ClientIP()),
				zap.Int("limit", config.Limit),
				zap.Int64("current_requests", count),
			)
			rejectRateLimited(c, config, windowRetryAfter(ctx, counter, redisKey, config.Window))
			return
		}

		c.Next()
	}
}

// windowRetryAfter is the whole seconds left in the key's window, or the full
// window when Redis cannot say
func windowRetryAfter(ctx context.Context, counter WindowCounter, key string, window time.Duration) int {
	ttl, err := counter.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		return int(math.Ceil(window.Seconds()))
	}
	return int(math.Ceil(ttl.Seconds()))
}
