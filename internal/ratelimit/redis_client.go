package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var errStoreDisabled = errors.New("rate limit store is not connected")

// StoreOptions locate the shared rate limit store.
type StoreOptions struct {
	// Addr is host:port or a redis:// URL. Empty disables the store.
	Addr        string
	Password    string
	DB          int
	PingTimeout time.Duration
}

// RedisClient is the connection to the shared rate limit store. A client
// without a connection is valid and reports itself disabled.
type RedisClient struct {
	client *redis.Client
	addr   string
}

func redisOptions(o StoreOptions) (*redis.Options, error) {
	opts := &redis.Options{Addr: o.Addr}
	if strings.Contains(o.Addr, "://") {
		parsed, err := redis.ParseURL(o.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}
	if o.Password != "" {
		opts.Password = o.Password
	}
	if o.DB != 0 {
		opts.DB = o.DB
	}

	opts.MaxRetries = 1
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	return opts, nil
}

// NewRedisClient connects to the store. Without an address it returns a
// disabled client and no error; when the store cannot be reached it returns
// a disabled client together with the error.
func NewRedisClient(ctx context.Context, o StoreOptions) (*RedisClient, error) {
	if o.Addr == "" {
		slog.Info("Redis address not configured, rate limiting will use in-memory fallback")
		return &RedisClient{}, nil
	}

	opts, err := redisOptions(o)
	if err != nil {
		return &RedisClient{}, err
	}

	timeout := o.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := redis.NewClient(opts)
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return &RedisClient{addr: opts.Addr}, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	slog.Info("Connected to rate limit store", "addr", opts.Addr, "db", opts.DB)
	return &RedisClient{client: client, addr: opts.Addr}, nil
}

// GetClient returns the underlying client, nil when disabled.
func (r *RedisClient) GetClient() *redis.Client {
	if r == nil {
		return nil
	}
	return r.client
}

func (r *RedisClient) IsEnabled() bool {
	return r != nil && r.client != nil
}

// HealthCheck pings the store.
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if !r.IsEnabled() {
		return errStoreDisabled
	}
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	if !r.IsEnabled() {
		return nil
	}
	slog.Info("Closing rate limit store connection", "addr", r.addr)
	return r.client.Close()
}

// PoolStats summarises the connection pool for the health endpoint.
type PoolStats struct {
	Enabled    bool   `json:"enabled"`
	Addr       string `json:"addr,omitempty"`
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
	StaleConns uint32 `json:"stale_conns"`
}

func (r *RedisClient) Stats() PoolStats {
	if !r.IsEnabled() {
		return PoolStats{}
	}

	s := r.client.PoolStats()
	return PoolStats{
		Enabled:    true,
		Addr:       r.addr,
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}
