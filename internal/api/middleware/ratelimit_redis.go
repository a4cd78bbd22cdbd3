package middleware

import (
	"context"
	"credit-approval/internal/config"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// windowCounter counts hits on a key inside a fixed window.
type windowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client redis.Cmdable
	logger *slog.Logger
}

func (c redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit pipeline failed: %w", err)
	}

	count, err := incrCmd.Result()
	if err != nil {
		return 0, err
	}
	ttl, err := ttlCmd.Result()
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to read TTL for rate limit key", "error", err, "key", key)
	}
	// -1: no expiry set, -2: key vanished between INCR and TTL.
	if ttl == -1 || ttl == -2 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			c.logger.ErrorContext(ctx, "Failed to set Redis EXPIRE for rate limit key", "error", err, "key", key)
		}
	}
	return count, nil
}

// RedisRateLimiter is a fixed-window limiter shared by every replica.
type RedisRateLimiter struct {
	counter windowCounter
	limit   int64
	window  time.Duration
	logger  *slog.Logger
}

func NewRedisRateLimiter(cfg config.RateLimitConfig, client redis.Cmdable, logger *slog.Logger) *RedisRateLimiter {
	return newRedisRateLimiter(cfg, redisCounter{client: client, logger: logger}, logger)
}

func newRedisRateLimiter(cfg config.RateLimitConfig, counter windowCounter, logger *slog.Logger) *RedisRateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = time.Second
	}
	limit := int64(math.Ceil(cfg.RPS * window.Seconds()))
	if limit < 1 {
		limit = 1
	}
	logger.Info("Redis rate limiter configured", "limit", limit, "window", window)
	return &RedisRateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
}

func (rl *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == unknownIP {
			rl.logger.ErrorContext(r.Context(), "Blocking request due to unknown client IP for rate limiting", "remoteAddr", r.RemoteAddr)
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden")
			return
		}

		count, err := rl.counter.Hit(r.Context(), rateLimitKeyPrefix+ip, rl.window)
		if err != nil {
			// Fail open: redis trouble must not take the API down.
			rl.logger.ErrorContext(r.Context(), "Rate limit check failed, allowing request", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		if count > rl.limit {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip, "count", count, "limit", rl.limit)
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(rl.window.Seconds())))
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED",
				fmt.Sprintf("Rate limit exceeded. Limit is %d requests per %v.", rl.limit, rl.window))
			return
		}
		next.ServeHTTP(w, r)
	})
}
