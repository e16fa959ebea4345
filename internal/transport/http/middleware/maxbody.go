package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "menus-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			abort(c, resp.CodeBadRequest, "request body too large")
		}
	}
}
