package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Counter increments a windowed counter and reports the new value. The
// production implementation is backed by Redis; tests substitute their own.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// redisCounter implements Counter on a Redis client. The pipeline keeps
// increment and expiry atomic.
type redisCounter struct {
	client *redis.Client
}

func (rc redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := rc.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incrCmd.Val(), nil
}

// RateLimiter handles per-user rate limiting
type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
}

// NewRateLimiter creates a rate limiter backed by Redis
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return NewCounterRateLimiter(redisCounter{client: redisClient}, config)
}

// NewCounterRateLimiter creates a rate limiter on an arbitrary Counter.
func NewCounterRateLimiter(counter Counter, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		config:  config,
	}
}

// NewRecipeWriteRateLimiter limits recipe creation to 30 per user per hour.
func NewRecipeWriteRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     30,
		KeyPrefix: "rate_limit:recipe_write",
	})
}

// NewImageUploadRateLimiter limits image uploads to 20 per user per hour.
func NewImageUploadRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     20,
		KeyPrefix: "rate_limit:image_upload",
	})
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// for the authenticated user.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		key := strconv.FormatUint(uint64(userID), 10)
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), key)
		if err != nil {
			// Don't fail the request on a limiter outage
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// IsAllowed checks if a request for the given key is allowed.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	counterKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	count, err := rl.counter.Incr(ctx, counterKey, rl.config.Window)
	if err != nil {
		return false, 0, time.Time{}, err
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.config.Window)
	return int(count) <= rl.config.Limit, remaining, resetTime, nil
}
