package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"menus-api/internal/core/auth"
	"menus-api/internal/domain"
	"menus-api/internal/dto"
	"menus-api/internal/service"
	"menus-api/internal/transport/http/ez"
	mdw "menus-api/internal/transport/http/middleware"
)

// AccountHandler 注册、登录、个人资料
type AccountHandler struct {
	users *service.UserService
	jwter *auth.JWTer
	guard gin.HandlerFunc // 登录/注册的限速，可为空
}

func NewAccountHandler(users *service.UserService, jwter *auth.JWTer, guard gin.HandlerFunc) *AccountHandler {
	return &AccountHandler{users: users, jwter: jwter, guard: guard}
}

func (h *AccountHandler) Priority() int { return 20 }

type loginOut struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      map[string]any `json:"user"`
}

func (h *AccountHandler) MountAPI(api *gin.RouterGroup) {
	public := api.Group("")
	if h.guard != nil {
		public.Use(h.guard)
	}
	ezPublic := ez.New(public)

	// 公开注册不接受 roles
	ez.RegisterAction(ezPublic, ez.Action[dto.UserInput, map[string]any]{
		Method: http.MethodPost,
		Path:   "/registration",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *dto.UserInput) (map[string]any, error) {
			in.Roles = nil
			if errs := in.Normalize().Validate(); errs != nil {
				return nil, invalid(errs)
			}
			u, err := h.users.Create(c.Request.Context(), *in, true)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeUser(u, dto.UserContext), nil
		},
	})

	ez.RegisterAction(ezPublic, ez.Action[dto.LoginInput, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *dto.LoginInput) (loginOut, error) {
			if errs := in.Validate(); errs != nil {
				return loginOut{}, invalid(errs)
			}
			u, err := h.users.Authenticate(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, fail(err)
			}
			tok, exp, err := h.jwter.Issue(u.ID, u.Email, u.GetRoles())
			if err != nil {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, ExpiresAt: exp, User: dto.SerializeUser(u, dto.UserContext)}, nil
		},
	})

	// /me 必须挂在带鉴权中间件的分组上
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(h.jwter, ""), mdw.ActiveUser(h.users, ""))
	ezAuth := ez.New(authed)

	ez.RegisterAction(ezAuth, ez.Action[struct{}, map[string]any]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]any, error) {
			return dto.SerializeUser(currentUser(c), dto.UserContext), nil
		},
	})

	// 改邮箱/密码；角色保持不变
	ez.RegisterAction(ezAuth, ez.Action[dto.UserInput, map[string]any]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *dto.UserInput) (map[string]any, error) {
			u := currentUser(c)
			in.Roles = []string(u.Roles)
			if errs := in.Normalize().Validate(); errs != nil {
				return nil, invalid(errs)
			}
			u, err := h.users.Update(c.Request.Context(), u, *in)
			if err != nil {
				return nil, fail(err)
			}
			return dto.SerializeUser(u, dto.UserContext), nil
		},
	})

	ez.RegisterAction(ezAuth, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.users.Delete(c.Request.Context(), currentUser(c)); err != nil {
				return nil, fail(err)
			}
			return gin.H{"message": "Account deleted"}, nil
		},
	})
}

// currentUser ActiveUser 中间件放进上下文的用户
func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(mdw.KeyUser).(*domain.User)
}
