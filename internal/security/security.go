package security

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/gin-gonic/gin"
)

// SecurityConfig holds request hardening limits.
type SecurityConfig struct {
	MaxBodyBytes        int64         `json:"max_body_bytes"`
	RequestTimeout      time.Duration `json:"request_timeout"`
	AllowedContentTypes []string      `json:"allowed_content_types"`
	TrustedProxies      []string      `json:"trusted_proxies"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxBodyBytes:   16 << 10,
		RequestTimeout: 10 * time.Second,
		AllowedContentTypes: []string{
			"application/json",
			"application/x-www-form-urlencoded",
			"multipart/form-data",
		},
		TrustedProxies: []string{"127.0.0.1", "::1"},
	}
}

// SecurityMiddleware bundles the per-request guards for assessment endpoints.
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{config: config}
}

// Config returns the limits in force.
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

func abortWith(c *gin.Context, appErr *apperrors.AppError) {
	appErr.RequestID = c.GetString(apperrors.RequestIDKey)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
}

// ValidateContentType rejects bodies whose media type the assessment binders cannot read.
// Requests without a body are let through.
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")
	if contentType == "" && c.Request.ContentLength <= 0 {
		c.Next()
		return
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		abortWith(c, apperrors.NewUnsupportedMediaError(contentType))
		return
	}

	for _, allowed := range sm.config.AllowedContentTypes {
		if mediaType == allowed {
			c.Next()
			return
		}
	}

	abortWith(c, apperrors.NewUnsupportedMediaError(mediaType))
}

// LimitBody caps the request body at MaxBodyBytes.
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	limit := sm.config.MaxBodyBytes
	if limit <= 0 {
		c.Next()
		return
	}

	if c.Request.ContentLength > limit {
		abortWith(c, apperrors.NewPayloadTooLargeError(limit))
		return
	}

	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	c.Next()
}

// RequestTimeout attaches a deadline to the request context.
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	if sm.config.RequestTimeout <= 0 {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// Guards returns the middleware chain applied to assessment submissions.
func (sm *SecurityMiddleware) Guards() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		sm.RequestTimeout,
		sm.ValidateContentType,
		sm.LimitBody,
	}
}
