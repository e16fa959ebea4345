package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"menus-api/internal/core/auth"
	"menus-api/internal/core/config"
	"menus-api/internal/core/server"
	"menus-api/internal/service"
	mdw "menus-api/internal/transport/http/middleware"
)

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log    *zap.Logger
	JWT    *auth.JWTer
	Menus  *service.MenuService
	Users  *service.UserService
	Limits config.Limits
	CORS   []string

	// Checks /health 里逐个执行，如 db / redis 的 ping
	Checks map[string]func(context.Context) error
}

func newEngine(d Deps, name string) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := server.NewRouter(d.Log, server.Options{Name: name, CORSOrigins: d.CORS})

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.ConcurrencyLimit(d.Limits.Concurrency),
		mdw.MaxBodyBytes(d.Limits.MaxBodyMB<<20),
		mdw.Timeout(time.Duration(d.Limits.TimeoutSec)*time.Second),
		mdw.SimpleRecovery(d.Log),
		mdw.Metrics(name),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", health(d.Checks))
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

// 健康检查：任一依赖失败返回 503
func health(checks map[string]func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0, "errors": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	}
}
