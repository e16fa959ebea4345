package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"menus-api/internal/domain"
	"menus-api/internal/dto"
	"menus-api/internal/service"
	"menus-api/internal/transport/http/ez"
)

var requireAdmin = []string{domain.RoleAdmin}

// AdminHandler 管理端用户接口，挂在已校验 ROLE_ADMIN 的分组上
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

func (h *AdminHandler) Priority() int { return 20 }

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ezAdmin := ez.New(admin)

	// --- 用户列表 ---
	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 可选：按 email 模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含软删
	}
	type listOut struct {
		Total int64            `json:"total"`
		Items []map[string]any `json:"items"`
	}

	ez.RegisterAction(ezAdmin, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  requireAdmin,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			us, total, err := h.users.List(c.Request.Context(), service.ListQuery{
				Q:           in.Q,
				WithDeleted: in.WithDeleted,
				Offset:      in.Offset,
				Limit:       in.Limit,
			})
			if err != nil {
				return listOut{}, fail(err)
			}
			return listOut{Total: total, Items: dto.SerializeUsers(us, dto.TrashContext)}, nil
		},
	})

	// --- 封禁（软删） ---
	ez.RegisterAction(ezAdmin, ez.Action[struct{}, map[string]any]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  requireAdmin,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]any, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			u, err := h.users.Ban(c.Request.Context(), id)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeUser(u, dto.TrashContext), nil
		},
	})

	ez.RegisterAction(ezAdmin, ez.Action[struct{}, map[string]any]{
		Method: http.MethodPost,
		Path:   "/users/:id/restore",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  requireAdmin,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]any, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			u, err := h.users.Restore(c.Request.Context(), id)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeUser(u, dto.TrashContext), nil
		},
	})

	// --- 物理删除 ---
	ez.RegisterAction(ezAdmin, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Roles:  requireAdmin,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			if err := h.users.Purge(c.Request.Context(), id); err != nil {
				return nil, fail(err)
			}
			return gin.H{"id": id}, nil
		},
	})
}
