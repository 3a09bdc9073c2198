package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/ZanzyTHEbar/koa-frailty-meter/internal/errors"
	"github.com/gin-gonic/gin"
)

const (
	nonceKey   = "csp-nonce"
	nonceBytes = 18
)

// GenerateNonce returns a random URL-safe nonce.
func GenerateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CSPMiddleware sets a per-request policy for the HTML pages. The page ships
// no script; its one inline <style> block must carry the nonce.
func CSPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce, err := GenerateNonce()
		if err != nil {
			abortWith(c, apperrors.NewInternalError("csp nonce generation failed", err))
			return
		}

		c.Set(nonceKey, nonce)
		c.Header("Content-Security-Policy", buildCSPPolicy(nonce))
		c.Next()
	}
}

// GetNonce returns the nonce CSPMiddleware stored for this request, or "".
func GetNonce(c *gin.Context) string {
	return c.GetString(nonceKey)
}

func buildCSPPolicy(nonce string) string {
	directives := []string{
		"default-src 'none'",
		"script-src 'none'",
		"style-src 'nonce-" + nonce + "'",
		"img-src 'self' data:",
		"form-action 'self'",
		"frame-ancestors 'none'",
		"base-uri 'none'",
	}
	return strings.Join(directives, "; ")
}
