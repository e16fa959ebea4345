package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"menus-api/internal/transport/http/handler"
	mdw "menus-api/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：/api/v1
func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d, "api")
	api := r.Group("/api/v1")

	var guard gin.HandlerFunc
	if d.Limits.AuthRPS > 0 {
		guard = mdw.RateLimitPerIP(rate.Limit(d.Limits.AuthRPS), d.Limits.AuthBurst)
	}
	NewRegistry(
		handler.NewMenuHandler(d.Menus),
		handler.NewAccountHandler(d.Users, d.JWT, guard),
	).MountAllAPI(api)
	return r
}
