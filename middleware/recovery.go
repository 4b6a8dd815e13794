package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/abaevpavel/pdfer-base/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in a later handler into a 500 answer carrying the
// request id. http.ErrAbortHandler is re-raised so net/http drops the
// connection as it would without this middleware.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error(c.Request.Context(), "panic recovered",
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			// a partly written response cannot be replaced
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": GetRequestID(c),
			})
		}()

		c.Next()
	}
}
