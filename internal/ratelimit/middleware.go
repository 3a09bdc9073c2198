package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/gin-gonic/gin"
)

// IPRateLimitMiddleware limits assessment submissions per client IP.
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		ip := c.ClientIP()
		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			// never block on limiter failure
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitBlock()
			}

			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			appErr := apperrors.NewRateLimitError(fmt.Sprintf("%ds", retryAfter))
			appErr.RequestID = c.GetString(apperrors.RequestIDKey)
			_ = c.Error(appErr)
			body := appErr.Response()
			body["retry_after"] = retryAfter
			c.AbortWithStatusJSON(appErr.HTTPStatus, body)
			return
		}

		c.Next()
	}
}
