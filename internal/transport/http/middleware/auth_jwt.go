package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"menus-api/internal/core/auth"
	resp "menus-api/internal/transport/http/response"
)

// 上下文 key
const (
	KeyUserID = "userId"
	KeyRoles  = "roles"
	KeyClaims = "claims"
)

// AuthJWT requireRole 为空只校验登录
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil || claims.UID == 0 {
			abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && !claims.HasRole(requireRole) {
			abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRoles, claims.Roles)
		c.Set(KeyClaims, claims)
		c.Next()
	}
}

// abort 中间件里拒绝请求：HTTP 200 + 统一响应体，业务码记到上下文
func abort(c *gin.Context, code int, msg string) {
	c.Set(resp.CtxKeyCode, code)
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}
