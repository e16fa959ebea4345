package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"menus-api/internal/core/auth"
	"menus-api/internal/core/cache"
	"menus-api/internal/core/config"
	"menus-api/internal/core/database"
	"menus-api/internal/repo"
	"menus-api/internal/service"
	"menus-api/internal/transport/http/router"
)

// App 一个进程里共享的依赖
type App struct {
	Cfg     *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Session *repo.Session
	Cache   *cache.Cache // 未配置 redis 时为 nil
	JWT     *auth.JWTer
	Menus   *service.MenuService
	Users   *service.UserService
}

func DBOpts(cfg *config.Config, l *zap.Logger) database.Opts {
	return database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
		Log:                l,
	}
}

func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(DBOpts(cfg, l))
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	return Wire(cfg, l, db), nil
}

// Wire 已有 *gorm.DB 时组装其余依赖，测试里直接用
func Wire(cfg *config.Config, l *zap.Logger, db *gorm.DB) *App {
	a := &App{Cfg: cfg, Log: l, DB: db}
	// HTTP 请求并发共用，只允许立即提交
	a.Session = repo.NewSession(db, repo.WithLogger(l.Named("repo")), repo.WithAutocommit())

	if cfg.Redis.Addr != "" {
		a.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		l.Info("menu cache enabled", zap.String("redis", cfg.Redis.Addr))
	}

	a.JWT = &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	a.Menus = a.newMenuService(a.Session)
	a.Users = service.NewUserService(repo.NewUserRepo(a.Session), l.Named("users"), cfg.Security.BcryptCost)
	return a
}

// NewMenuBatch 独占一个 Session 的 MenuService，暂存只在这一批里可见
func (a *App) NewMenuBatch() *service.MenuService {
	return a.newMenuService(repo.NewSession(a.DB, repo.WithLogger(a.Log.Named("repo"))))
}

func (a *App) newMenuService(s *repo.Session) *service.MenuService {
	return service.NewMenuService(repo.NewMenuRepo(s), a.Log.Named("menus"),
		service.WithMenuCache(a.Cache, time.Duration(a.Cfg.Cache.MenuTTLSec)*time.Second))
}

func (a *App) Deps() router.Deps {
	checks := map[string]func(context.Context) error{
		"db": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.Cache != nil {
		checks["redis"] = a.Cache.Ping
	}
	return router.Deps{
		Log:    a.Log,
		JWT:    a.JWT,
		Menus:  a.Menus,
		Users:  a.Users,
		Limits: a.Cfg.Limits,
		CORS:   a.Cfg.App.CORS,
		Checks: checks,
	}
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("close cache", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
