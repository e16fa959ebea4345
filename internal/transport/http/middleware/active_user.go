package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"menus-api/internal/domain"
	resp "menus-api/internal/transport/http/response"
)

// KeyUser 当前请求对应的库内用户
const KeyUser = "user"

// UserFinder 只查活跃用户，不存在或已软删返回 (nil, nil)
type UserFinder interface {
	FindActive(ctx context.Context, id uint) (*domain.User, error)
}

// ActiveUser 挂在 AuthJWT 之后：token 里的 uid 必须仍是活跃用户，
// 角色以库里为准，token 中的 roles 只作参考
func ActiveUser(users UserFinder, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetUint(KeyUserID)
		if uid == 0 {
			abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		u, err := users.FindActive(c.Request.Context(), uid)
		if err != nil {
			_ = c.Error(err)
			abort(c, resp.CodeServerError, "internal error")
			return
		}
		if u == nil {
			abort(c, resp.CodeUnauthorized, "account disabled")
			return
		}
		if requireRole != "" && !u.HasRole(requireRole) {
			abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyUser, u)
		c.Set(KeyRoles, u.GetRoles())
		c.Next()
	}
}
