package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/swap-router/internal/http/httputil"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminAuth rejects requests whose X-Admin-Key does not match key.
// An empty key disables every route behind it.
func AdminAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			httputil.AbortWithError(c, http.StatusUnauthorized, "admin api disabled")
			return
		}
		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			httputil.AbortWithError(c, http.StatusUnauthorized, "invalid admin key")
			return
		}
		c.Next()
	}
}
