package security

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds the baseline security headers to every response.
// HSTS is only sent when the deployment terminates TLS in front of the service.
func SecurityHeadersMiddleware(enableHSTS bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		// assessment results are patient data
		c.Header("Cache-Control", "no-store")

		if enableHSTS {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}
