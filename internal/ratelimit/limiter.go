package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/monitoring"
	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

// Config holds rate limiter configuration
type Config struct {
	PerMinute       int           // Assessments allowed per client IP per minute; 0 disables limiting
	BurstMultiplier int           // Burst capacity multiplier for the in-memory fallback
	KeyPrefix       string        // Redis key namespace
	IdleTTL         time.Duration // Fallback limiters unused for this long are dropped
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		PerMinute:       60,
		BurstMultiplier: 1,
		KeyPrefix:       "frailty:ratelimit",
		IdleTTL:         10 * time.Minute,
	}
}

// StoreServiceName names the shared store in dependency health reports.
const StoreServiceName = "redis"

// StoreHealth tracks the shared store's outcomes. While the store is reported
// unavailable the limiter goes straight to its in-memory buckets.
type StoreHealth interface {
	IsServiceAvailable(serviceName string) bool
	RecordSuccess(serviceName string)
	RecordError(serviceName string, err error)
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides distributed rate limiting with Redis and in-memory fallback
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      *monitoring.Metrics
	health       StoreHealth

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter with Redis and in-memory fallback.
// A nil or disabled redisClient selects the in-memory limiter only.
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	if redisClient == nil {
		redisClient = &RedisClient{}
	}
	if config.BurstMultiplier < 1 {
		config.BurstMultiplier = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		config:           config,
		metrics:          metrics,
		fallbackLimiters: make(map[string]*fallbackEntry),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Warn("Redis unavailable, using in-memory rate limiting only")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

// WithHealth reports store outcomes to h and consults it before each store call.
func (rl *RateLimiter) WithHealth(h StoreHealth) *RateLimiter {
	rl.health = h
	return rl
}

func (rl *RateLimiter) storeUsable() bool {
	if !rl.redisClient.IsEnabled() || rl.redisLimiter == nil {
		return false
	}
	return rl.health == nil || rl.health.IsServiceAvailable(StoreServiceName)
}

// Enabled reports whether any limit is enforced.
func (rl *RateLimiter) Enabled() bool {
	return rl.config.PerMinute > 0
}

// AllowIP checks whether ip may submit another assessment this minute.
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	key := fmt.Sprintf("%s:ip:%s", rl.config.KeyPrefix, ip)
	return rl.allow(ctx, key, rl.config.PerMinute, time.Minute)
}

func (rl *RateLimiter) allow(ctx context.Context, key string, limit int, period time.Duration) (*Result, error) {
	if rl.storeUsable() {
		result, err := rl.allowRedis(ctx, key, limit, period)
		if err == nil {
			if rl.health != nil {
				rl.health.RecordSuccess(StoreServiceName)
			}
			return result, nil
		}
		slog.Warn("Redis rate limit check failed, using fallback", "error", err)
		if rl.health != nil {
			rl.health.RecordError(StoreServiceName, err)
		}
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitRedisError()
		}
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, limit, period), nil
}

// allowRedis runs the GCRA check shared by every replica.
func (rl *RateLimiter) allowRedis(ctx context.Context, key string, limit int, period time.Duration) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit,
		Burst:  limit,
		Period: period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

// allowFallback uses a per-key token bucket held in process memory.
func (rl *RateLimiter) allowFallback(key string, limit int, period time.Duration) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		rps := rate.Limit(float64(limit) / period.Seconds())
		entry = &fallbackEntry{limiter: rate.NewLimiter(rps, limit*rl.config.BurstMultiplier)}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	rl.fallbackMutex.Unlock()

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)

	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(period),
	}

	if !allowed {
		// time until one token is back
		missing := 1 - tokens
		result.RetryAfter = time.Duration(missing / float64(entry.limiter.Limit()) * float64(time.Second))
		result.ResetAt = now.Add(result.RetryAfter)
	}

	return result
}

func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	evicted := 0
	for key, entry := range rl.fallbackLimiters {
		if now.Sub(entry.lastSeen) > rl.config.IdleTTL {
			delete(rl.fallbackLimiters, key)
			evicted++
		}
	}
	if evicted > 0 {
		slog.Debug("Evicted idle fallback rate limiters", "count", evicted)
	}
	return evicted
}

// Close stops the cleanup goroutine. It does not close the Redis client.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"per_minute":        rl.config.PerMinute,
		"redis_enabled":     rl.redisClient.IsEnabled(),
		"fallback_limiters": fallbackCount,
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.Stats()
	}

	return stats
}
