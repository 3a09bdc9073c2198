package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	assert.Equal(t, int64(16<<10), config.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, config.RequestTimeout)
	assert.Contains(t, config.AllowedContentTypes, "application/json")
	assert.Contains(t, config.AllowedContentTypes, "application/x-www-form-urlencoded")
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name       string
		enableHSTS bool
	}{
		{"without hsts", false},
		{"with hsts", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(SecurityHeadersMiddleware(tt.enableHSTS))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.enableHSTS {
				assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
			} else {
				assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
			}
		})
	}
}

func TestCSPMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CSPMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetNonce(c))
	})

	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/", nil))
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))

	nonce := w1.Body.String()
	require.Len(t, nonce, 24)
	assert.NotContains(t, nonce, "+")
	assert.NotEqual(t, nonce, w2.Body.String(), "nonce must be unique per request")

	policy := w1.Header().Get("Content-Security-Policy")
	assert.Contains(t, policy, "style-src 'nonce-"+nonce+"'")
	assert.Contains(t, policy, "script-src 'none'")
	assert.Contains(t, policy, "default-src 'none'")
	assert.NotContains(t, policy, "unsafe-inline")
	assert.Contains(t, policy, "form-action 'self'")
}

func TestGetNonce_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetNonce(c))
}

func newGuardedRouter(cfg SecurityConfig) *gin.Engine {
	sm := NewSecurityMiddleware(cfg)
	router := gin.New()
	router.POST("/assess", append(sm.Guards(), func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			_ = c.Error(err)
			c.String(http.StatusRequestEntityTooLarge, "too large")
			return
		}
		_, hasDeadline := c.Request.Context().Deadline()
		if !hasDeadline {
			c.String(http.StatusInternalServerError, "no deadline")
			return
		}
		c.String(http.StatusOK, "ok")
	})...)
	return router
}

func TestValidateContentType(t *testing.T) {
	router := newGuardedRouter(DefaultSecurityConfig())

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"form encoded", "application/x-www-form-urlencoded", "age=40", http.StatusOK},
		{"form with charset", "application/x-www-form-urlencoded; charset=utf-8", "age=40", http.StatusOK},
		{"json", "application/json", "{}", http.StatusOK},
		{"xml rejected", "application/xml", "<a/>", http.StatusUnsupportedMediaType},
		{"missing type with body", "", "age=40", http.StatusUnsupportedMediaType},
		{"garbage type", "not a type;;", "age=40", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/assess", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnsupportedMediaType {
				assert.Contains(t, w.Body.String(), "unsupported content type")
			}
		})
	}
}

func TestLimitBody(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.MaxBodyBytes = 32
	router := newGuardedRouter(cfg)

	t.Run("declared length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/assess", strings.NewReader(strings.Repeat("a", 64)))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "request body exceeds 32 bytes")
	})

	t.Run("undeclared length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/assess", strings.NewReader("age="+strings.Repeat("4", 64)))
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("within limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/assess", strings.NewReader("age=40"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestTimeout(t *testing.T) {
	cfg := DefaultSecurityConfig()
	cfg.RequestTimeout = 2 * time.Second
	router := newGuardedRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/assess", strings.NewReader("age=40"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Timeout"))
}
