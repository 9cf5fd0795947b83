package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// SecurityOptions tunes the headers set by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS adds Strict-Transport-Security on TLS requests only.
	EnableHSTS bool
	// HSTSMaxAgeSeconds defaults to one year when zero.
	HSTSMaxAgeSeconds int
	// NoStore adds Cache-Control: no-store, for APIs serving personal data.
	NoStore bool
}

// SecurityHeaders sets a conservative baseline of response headers for a
// JSON API: nosniff, frame denial, referrer suppression, and a locked-down
// Permissions-Policy. HSTS is opt-in and only emitted over TLS so plain
// HTTP deployments behind a terminating proxy are not poisoned.
func SecurityHeaders(opts SecurityOptions) gin.HandlerFunc {
	maxAge := opts.HSTSMaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 31536000
	}
	hstsValue := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if opts.NoStore {
			h.Set("Cache-Control", "no-store")
		}
		if opts.EnableHSTS && c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
