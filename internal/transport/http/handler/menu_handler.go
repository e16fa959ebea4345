package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"menus-api/internal/dto"
	"menus-api/internal/service"
	"menus-api/internal/transport/http/ez"
)

type MenuHandler struct {
	menus *service.MenuService
}

func NewMenuHandler(menus *service.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

func (h *MenuHandler) Priority() int { return 10 }

// MountAPI /api/v1/menus
func (h *MenuHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	ez.RegisterAction(e, ez.Action[dto.MenuInput, map[string]any]{
		Method: http.MethodPost,
		Path:   "/menus",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *dto.MenuInput) (map[string]any, error) {
			if errs := in.Normalize().Validate(); errs != nil {
				return nil, invalid(errs)
			}
			m, err := h.menus.Create(c.Request.Context(), *in, true)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeMenu(m, dto.MenuContext), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []map[string]any]{
		Method: http.MethodGet,
		Path:   "/menus",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]map[string]any, error) {
			ms, err := h.menus.List(c.Request.Context())
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeMenus(ms, dto.MenuContext), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, map[string]any]{
		Method: http.MethodGet,
		Path:   "/menus/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]any, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			m, err := h.menus.Get(c.Request.Context(), id)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeMenu(m, dto.MenuContext), nil
		},
	})

	// PUT 全量覆盖：body 里没给的可选字段会被清空
	ez.RegisterAction(e, ez.Action[dto.MenuInput, map[string]any]{
		Method: http.MethodPut,
		Path:   "/menus/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *dto.MenuInput) (map[string]any, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			m, err := h.menus.Get(c.Request.Context(), id)
			if err != nil {
				return nil, fail(err)
			}
			if errs := in.Normalize().Validate(); errs != nil {
				return nil, invalid(errs)
			}
			m, err = h.menus.Update(c.Request.Context(), m, *in)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeMenu(m, dto.MenuContext), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/menus/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			m, err := h.menus.Get(c.Request.Context(), id)
			if err != nil {
				return nil, fail(err)
			}
			if err := h.menus.Delete(c.Request.Context(), m); err != nil {
				return nil, fail(err)
			}
			return gin.H{"message": "Menu item deleted"}, nil
		},
	})
}

// MountAdmin /admin/v1/menus 回收站
func (h *MenuHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	ez.RegisterAction(e, ez.Action[struct{}, []map[string]any]{
		Method: http.MethodGet,
		Path:   "/menus/trash",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]map[string]any, error) {
			ms, err := h.menus.Trash(c.Request.Context())
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeMenus(ms, dto.TrashContext), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, map[string]any]{
		Method: http.MethodPost,
		Path:   "/menus/:id/restore",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]any, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			m, err := h.menus.Restore(c.Request.Context(), id)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeMenu(m, dto.TrashContext), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/menus/:id/purge",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, err
			}
			if err := h.menus.Purge(c.Request.Context(), id); err != nil {
				return nil, fail(err)
			}
			return gin.H{"id": id}, nil
		},
	})
}
