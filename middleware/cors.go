package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS handles CORS headers
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// CacheControl keeps API responses out of caches and lets generated
// artifacts under staticPrefix be cached for a day.
func CacheControl(staticPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case strings.HasPrefix(path, "/api"):
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		case strings.HasPrefix(path, staticPrefix+"/") && strings.HasSuffix(path, ".pdf"):
			// artifact names carry a timestamp and never change
			c.Header("Cache-Control", "public, max-age=86400, immutable")
		}

		c.Next()
	}
}
