package httpserver

import "github.com/gin-gonic/gin"

// sessionHeader is the client-supplied session identifier used to index
// conversations for listing (spec.md §6 "X-Session-Id").
const sessionHeader = "X-Session-Id"

// securityHeaders sets standard security response headers on every
// response (teacher pkg/api/middleware.go securityHeaders, translated from
// an echo.MiddlewareFunc to a gin.HandlerFunc).
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		c.Next()
	}
}
