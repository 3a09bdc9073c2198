package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/koa-frailty-meter/internal/analysis"
	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL", "MODEL_CONFIG_PATH", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "RATE_LIMIT_PER_MIN", "ALLOWED_ORIGINS", "REQUEST_TIMEOUT", "ENABLE_HSTS", "ENABLE_SWAGGER",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Server.EnableSwagger)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, analysis.DefaultModelConfig(), cfg.Model)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.Equal(t, 10*time.Second, cfg.Security.RequestTimeout)
	assert.False(t, cfg.Security.EnableHSTS)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_PER_MIN", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("ENABLE_HSTS", "true")
	t.Setenv("ENABLE_SWAGGER", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 0, cfg.RateLimit.PerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Security.RequestTimeout)
	assert.True(t, cfg.Security.EnableHSTS)
	assert.False(t, cfg.Server.EnableSwagger)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"GIN_MODE", "production"},
		{"REDIS_DB", "one"},
		{"RATE_LIMIT_PER_MIN", "-1"},
		{"RATE_LIMIT_PER_MIN", "many"},
		{"REQUEST_TIMEOUT", "soon"},
		{"REQUEST_TIMEOUT", "0s"},
		{"ENABLE_HSTS", "maybe"},
		{"ENABLE_SWAGGER", "2"},
		{"MODEL_CONFIG_PATH", "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)

			appErr := apperrors.ToAppError(err)
			assert.Equal(t, apperrors.CategoryConfiguration, appErr.Category)
		})
	}
}

func TestFromEnv_ModelFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base: 0.4\nthresholds:\n  high: 0.8\n  medium: 0.2\n"), 0o600))
	t.Setenv("MODEL_CONFIG_PATH", path)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Model.Base)
	assert.Equal(t, 0.8, cfg.Model.Thresholds.High)
	assert.Equal(t, 0.2, cfg.Model.Thresholds.Medium)
	assert.Len(t, cfg.Model.Terms, 11)
}

func TestFromEnv_InvalidModelFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  high: 0.2\n  medium: 0.5\n"), 0o600))
	t.Setenv("MODEL_CONFIG_PATH", path)

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model configuration")
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		os.Unsetenv("PORT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
}
