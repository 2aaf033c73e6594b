package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"bananas_server/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared by every server instance.
// A nil *RedisLimiter, or one whose Redis is unreachable, lets everything
// through: the game stays playable when Redis is down.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter connects to addr. It returns nil when addr is empty or the
// first ping fails.
func NewRedisLimiter(addr, password string, db int) *RedisLimiter {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("redis rate limiter connected", "addr", addr)
	return &RedisLimiter{client: client, prefix: "rl"}
}

// Ping reports Redis health for readiness checks.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}

// Limit allows maxRequests per window per client IP, counted with
// INCR/EXPIRE under rl:<window_seconds>:<path>:<ip>.
func (l *RedisLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		endpoint := c.FullPath()
		key := l.prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + endpoint + ":" + c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			RLErrors.WithLabelValues(endpoint).Inc()
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			l.client.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
