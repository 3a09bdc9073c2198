package monitoring

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMetrics_RecordAssessment(t *testing.T) {
	m := NewMetrics()

	m.RecordAssessment("medium", "form", 0.35)
	m.RecordAssessment("high", "api", 0.8)
	m.RecordAssessment("high", "api", 0.75)

	assert.Equal(t, int64(3), m.AssessmentCount)
	assert.Equal(t, map[string]int64{"medium": 1, "high": 2}, m.GetTierDistribution())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.assessments.WithLabelValues("high", "api")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.probability))
}

func TestMetrics_RecordValidationFailure(t *testing.T) {
	m := NewMetrics()
	m.RecordValidationFailure([]string{"age", "PA"})
	m.RecordValidationFailure([]string{"age"})

	assert.Equal(t, int64(2), m.InvalidCount)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("age")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("PA")))
}

func TestMetrics_ResponseTimes(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}
	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(400)
	m.IncrementRateLimitBlock()

	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.Equal(t, 99*time.Millisecond, m.GetPercentileResponseTime(99))
	assert.Equal(t, map[int]int64{200: 1, 400: 1}, m.GetStatusCodeDistribution())

	stats := m.GetStats()
	assert.Contains(t, stats, "assessments_by_tier")
	assert.Equal(t, int64(1), stats["rate_limit"].(map[string]interface{})["blocks"])
	assert.InDelta(t, 50.5, stats["avg_response_time_ms"], 1e-9)
}

func TestMetrics_AverageResponseTime(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, time.Duration(0), m.AverageResponseTime())

	// a slow request keeps its weight after later fast ones
	m.RecordResponseTime(90 * time.Millisecond)
	m.RecordResponseTime(10 * time.Millisecond)
	m.RecordResponseTime(10 * time.Millisecond)
	m.RecordResponseTime(10 * time.Millisecond)

	assert.Equal(t, 30*time.Millisecond, m.AverageResponseTime())
	assert.Equal(t, int64(4), m.TimedRequests)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordAssessment("low", "form", 0.2)
	m.ObserveRequest(http.MethodPost, "/assess", 200, 10*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `frailty_assessments_total{channel="form",tier="low"} 1`)
	assert.Contains(t, body, `frailty_http_requests_total{method="POST",route="/assess",status="200"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	tests := []struct {
		name     string
		inbound  string
		preserve bool
	}{
		{"generates when missing", "", false},
		{"keeps caller id", "abc-123", true},
		{"replaces unsafe id", "bad\"<script>", false},
		{"replaces oversize id", strings.Repeat("x", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			id := w.Header().Get(RequestIDHeader)
			require.NotEmpty(t, id)
			assert.Equal(t, id, w.Body.String())
			if tt.preserve {
				assert.Equal(t, tt.inbound, id)
			} else {
				assert.Len(t, id, 36)
			}
		})
	}
}

func TestMonitoringMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)
	m := NewMetrics()

	router := gin.New()
	router.Use(RequestIDMiddleware(), MonitoringMiddleware(m, logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/bad", "/bad"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, int64(3), m.RequestCount)
	assert.Equal(t, int64(2), m.ErrorCount)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/bad", "400")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "HTTP Request", entry["msg"])
	assert.Equal(t, "/ok", entry["path"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestAssessmentLogger_NoPatientValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	logger.AssessmentLogger("req-1", "api", "high", 0.8, time.Millisecond)
	logger.ValidationLogger("req-2", "form", []string{"age"})

	out := buf.String()
	assert.Contains(t, out, `"tier":"high"`)
	assert.Contains(t, out, `"fields":["age"]`)
	assert.NotContains(t, out, "bl_crp")
}

func TestSecurityMonitoringMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelInfo)

	router := gin.New()
	router.Use(SecurityMonitoringMiddleware(logger, 1024))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, buf.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "sqlmap/1.7")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Contains(t, buf.String(), "suspicious_user_agent")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
