package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "menus-api/internal/transport/http/response"
)

// SimpleRecovery panic 转成统一响应体
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("rid", RequestIDOf(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
