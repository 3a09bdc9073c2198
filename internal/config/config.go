package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Model     analysis.ModelConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	EnableSwagger  bool
}

type LogConfig struct {
	Level slog.Level
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	PerMinute int
}

type SecurityConfig struct {
	RequestTimeout time.Duration
	EnableHSTS     bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8080"),
			GinMode:        getEnvOrDefault("GIN_MODE", "release"),
			AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "*")),
		},
		Log: LogConfig{
			Level: monitoring.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		},
		Model: analysis.DefaultModelConfig(),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	switch cfg.Server.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("GIN_MODE %q must be debug, release or test", cfg.Server.GinMode), nil)
	}

	var err error
	if cfg.Server.EnableSwagger, err = getBool("ENABLE_SWAGGER", true); err != nil {
		return nil, err
	}
	if cfg.Security.EnableHSTS, err = getBool("ENABLE_HSTS", false); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimit.PerMinute, err = getInt("RATE_LIMIT_PER_MIN", 30); err != nil {
		return nil, err
	}
	if cfg.RateLimit.PerMinute < 0 {
		return nil, apperrors.NewConfigurationError("RATE_LIMIT_PER_MIN must not be negative", nil)
	}

	timeout := getEnvOrDefault("REQUEST_TIMEOUT", "10s")
	if cfg.Security.RequestTimeout, err = time.ParseDuration(timeout); err != nil || cfg.Security.RequestTimeout <= 0 {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("REQUEST_TIMEOUT %q is not a positive duration", timeout), err)
	}

	if path := os.Getenv("MODEL_CONFIG_PATH"); path != "" {
		model, err := analysis.LoadModelConfig(path)
		if err != nil {
			return nil, apperrors.NewConfigurationError("invalid model configuration", err)
		}
		cfg.Model = model
		slog.Info("Loaded model configuration", "path", path)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewConfigurationError(fmt.Sprintf("%s must be an integer", key), err)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewConfigurationError(fmt.Sprintf("%s must be a boolean", key), err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
