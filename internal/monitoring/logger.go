package monitoring

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger provides structured logging with request and assessment helpers.
type Logger struct {
	*slog.Logger
}

// NewLoggerWithWriter creates a JSON logger writing to w at level.
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// ParseLevel maps debug, info, warn and error to a slog level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent, requestID string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"request_id", requestID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// AssessmentLogger logs a completed assessment. Patient inputs are never logged.
func (l *Logger) AssessmentLogger(requestID, channel, tier string, probability float64, duration time.Duration) {
	l.Info("Assessment Completed",
		"request_id", requestID,
		"channel", channel,
		"tier", tier,
		"probability", probability,
		"duration_us", duration.Microseconds(),
	)
}

// ValidationLogger logs which fields were rejected, without their values.
func (l *Logger) ValidationLogger(requestID, channel string, fields []string) {
	l.Warn("Assessment Rejected",
		"request_id", requestID,
		"channel", channel,
		"fields", fields,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]interface{}) {
	attrs := []any{
		"event", event,
		"ip", ip,
		"user_agent", userAgent,
	}
	for key, value := range details {
		attrs = append(attrs, key, value)
	}

	l.Warn("Security Event", attrs...)
}

// PerformanceLogger logs performance metrics
func (l *Logger) PerformanceLogger(metric string, value float64, unit string) {
	l.Info("Performance Metric",
		"metric", metric,
		"value", value,
		"unit", unit,
	)
}

var startTime = time.Now()
