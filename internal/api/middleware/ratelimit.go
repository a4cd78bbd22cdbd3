package middleware

import (
	"credit-approval/internal/config"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	limiterCleanupInterval = 10 * time.Minute
)

type RateLimiter interface {
	Middleware(next http.Handler) http.Handler
}

// NewRateLimiter returns the limiter for cfg.Backend. A redis backend without
// a client, or a disabled config, yields a pass-through limiter.
func NewRateLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) RateLimiter {
	logger = logger.With("component", "RateLimiter", "backend", cfg.Backend)
	if !cfg.Enabled {
		logger.Info("Rate limiting is disabled via configuration.")
		return passThrough{}
	}

	switch cfg.Backend {
	case BackendRedis:
		if redisClient == nil {
			logger.Warn("Rate limiting enabled but no Redis client provided; disabling.")
			return passThrough{}
		}
		return NewRedisRateLimiter(cfg, redisClient, logger)
	default:
		return NewMemoryRateLimiter(cfg, logger)
	}
}

type passThrough struct{}

func (passThrough) Middleware(next http.Handler) http.Handler { return next }

// MemoryRateLimiter keeps one token bucket per client IP in process memory.
type MemoryRateLimiter struct {
	limiters sync.Map
	cfg      config.RateLimitConfig
	logger   *slog.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryRateLimiter(cfg config.RateLimitConfig, logger *slog.Logger) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		cfg:    cfg,
		logger: logger,
		stop:   make(chan struct{}),
	}
	logger.Info("In-memory rate limiter configured", "rps", cfg.RPS, "burst", cfg.Burst)

	go rl.cleanupLimiters(limiterCleanupInterval)

	return rl
}

func (rl *MemoryRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *MemoryRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *MemoryRateLimiter) cleanupLimiters(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

// evictIdle drops buckets that have refilled completely.
func (rl *MemoryRateLimiter) evictIdle() {
	now := time.Now()
	rl.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *MemoryRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
