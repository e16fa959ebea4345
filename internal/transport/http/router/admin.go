package router

import (
	"github.com/gin-gonic/gin"

	"menus-api/internal/domain"
	"menus-api/internal/transport/http/handler"
	mdw "menus-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端：/admin/v1，统一要求 ROLE_ADMIN（以库里的角色为准，
// 被封禁的管理员立即失效）。token 从用户端 /api/v1/auth/login 获取，两边共用 JWT 密钥
func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d, "admin")

	admin := r.Group("/admin/v1")
	admin.Use(
		mdw.AuthJWT(d.JWT, ""),
		mdw.ActiveUser(d.Users, domain.RoleAdmin),
	)

	NewRegistry(
		handler.NewMenuHandler(d.Menus),
		handler.NewAdminHandler(d.Users),
	).MountAllAdmin(admin)
	return r
}
