package middleware

import (
	"net/http"
	"strings"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// SecurityHeaders adds common security headers to all responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		// swagger UI needs inline scripts
		if !strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

var dangerousPatterns = []string{
	"<script",
	"javascript:",
	"onerror=",
	"onload=",
	"onclick=",
	"eval(",
	"document.cookie",
}

// InputSanitizer blocks requests with script injection patterns in query parameters
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		for key, values := range c.Request.URL.Query() {
			for _, v := range values {
				if containsDangerous(v) {
					common.V2ErrorResponse(c, http.StatusBadRequest, "Potentially dangerous input in "+key, nil)
					c.Abort()
					return
				}
			}
		}
		c.Next()
	}
}

func containsDangerous(v string) bool {
	lower := strings.ToLower(v)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
