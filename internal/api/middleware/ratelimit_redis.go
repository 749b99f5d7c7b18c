package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE. Without a
// reachable Redis it lets every request through.
type RateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	log    *slog.Logger
}

// NewRedisRateLimiter connects to addr. An empty addr or a failed ping leaves
// the limiter disabled so the server stays available.
func NewRedisRateLimiter(addr, password string, db, max int, window time.Duration, log *slog.Logger) *RateLimiter {
	rl := &RateLimiter{max: max, window: window, log: log}
	if addr == "" || max <= 0 {
		return rl
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return rl
	}
	rl.client = client
	return rl
}

func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.client != nil
}

func (rl *RateLimiter) Close() error {
	if !rl.Enabled() {
		return nil
	}
	return rl.client.Close()
}

// Mutations limits non-GET requests per client IP. Key format:
// rl:<window_seconds>:<ip>.
func (rl *RateLimiter) Mutations() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(rl.window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			rl.client.Expire(ctx, key, rl.window)
		}

		if val > int64(rl.max) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
