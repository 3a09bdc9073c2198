package monitoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RequestIDMiddleware reuses a sane inbound X-Request-ID or generates a UUID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 64 || strings.ContainsAny(id, "\r\n\"<>") {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// MonitoringMiddleware creates Gin middleware for request monitoring
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncrementRequest()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method

		metrics.RecordResponseTime(duration)
		metrics.RecordRequestByStatus(statusCode)
		metrics.ObserveRequest(method, c.FullPath(), statusCode, duration)

		if statusCode >= 400 {
			metrics.IncrementError()
		}

		logger.RequestLogger(method, c.Request.URL.Path, c.ClientIP(), c.GetHeader("User-Agent"),
			c.GetString(RequestIDKey), statusCode, duration)

		if duration > 5*time.Second {
			logger.PerformanceLogger("slow_request", duration.Seconds(), "seconds")
		}

		if statusCode >= 500 {
			logger.SystemLogger("server_error", fmt.Sprintf("Status %d for %s %s", statusCode, method, c.FullPath()))
		}
	}
}

// SecurityMonitoringMiddleware logs requests from known scanners and oversize bodies.
func SecurityMonitoringMiddleware(logger *Logger, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		details := make(map[string]interface{})

		if containsSuspiciousUserAgent(userAgent) {
			details["type"] = "suspicious_user_agent"
		}
		if maxBody > 0 && c.Request.ContentLength > maxBody {
			details["type"] = "large_request_body"
			details["size_bytes"] = c.Request.ContentLength
		}

		if len(details) > 0 {
			details["path"] = c.Request.URL.Path
			logger.SecurityLogger("suspicious_activity_detected", c.ClientIP(), userAgent, details)
		}

		c.Next()
	}
}

var suspiciousAgents = []string{
	"sqlmap",
	"nmap",
	"masscan",
	"zmap",
	"dirbuster",
	"gobuster",
	"nikto",
	"acunetix",
	"nessus",
}

func containsSuspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, agent := range suspiciousAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}
