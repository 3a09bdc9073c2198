package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/config"
	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/resilience"
	"github.com/gin-gonic/gin"
)

var version = "1.0.0"

// @title        KOA Frailty Risk API
// @version      1.0.0
// @description  Frailty risk estimation for patients with knee osteoarthritis, with additive per-feature attribution.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err, "cause", errors.Unwrap(err))
		os.Exit(1)
	}

	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)
	gin.SetMode(cfg.Server.GinMode)

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLoggerWithWriter(os.Stdout, cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := resilience.NewDegradationManager(resilience.DefaultDegradationConfig())
	redisClient := connectRedis(ctx, cfg.Redis, health)

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.PerMinute = cfg.RateLimit.PerMinute
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics).WithHealth(health)

	go health.StartHealthChecks(ctx)

	r, err := newRouter(newServer(cfg, appMetrics, appLogger, limiter, health))
	if err != nil {
		slog.Error("Failed to build router", "error", err, "cause", errors.Unwrap(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "version", version,
			"rate_limit_per_min", cfg.RateLimit.PerMinute, "swagger", cfg.Server.EnableSwagger)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	limiter.Close()
	apperrors.SafeClose(redisClient, "redis")

	slog.Info("Server exited")
}

// connectRedis dials the rate limit store with retries. Without an address, or
// when every attempt fails, the limiter runs on its in-memory fallback.
func connectRedis(ctx context.Context, cfg config.RedisConfig, health *resilience.DegradationManager) *ratelimit.RedisClient {
	if cfg.Addr == "" {
		client, _ := ratelimit.NewRedisClient(ctx, ratelimit.StoreOptions{})
		return client
	}

	var client *ratelimit.RedisClient
	err := resilience.Retry(ctx, func() error {
		var err error
		client, err = ratelimit.NewRedisClient(ctx, ratelimit.StoreOptions{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return err
	})
	if err != nil {
		slog.Warn("Redis unavailable, continuing without it", "addr", cfg.Addr, "error", err)
	}

	health.RegisterService(ratelimit.StoreServiceName, client.HealthCheck)
	if err != nil {
		health.RecordError(ratelimit.StoreServiceName, err)
	}
	return client
}
