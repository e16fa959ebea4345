package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"menus-api/internal/core/cache"
	"menus-api/internal/domain"
	"menus-api/internal/dto"
	"menus-api/internal/repo"
)

const menusCacheKey = "menus:active"

// MenuStore MenuService 需要的持久化能力，*repo.MenuRepo 实现
type MenuStore interface {
	Save(ctx context.Context, m *domain.Menu, commit bool) error
	Remove(ctx context.Context, m *domain.Menu, commit bool) error
	Restore(ctx context.Context, m *domain.Menu, commit bool) error
	PermanentlyRemove(ctx context.Context, m *domain.Menu, commit bool) error
	Flush(ctx context.Context) error
	Discard() int
	Find(ctx context.Context, id uint) (*domain.Menu, error)
	FindIn(ctx context.Context, id uint, v repo.Visibility) (*domain.Menu, error)
	FindBy(ctx context.Context, c repo.Criteria) ([]domain.Menu, error)
	FindByOrder(ctx context.Context, order int) (*domain.Menu, error)
}

type MenuService struct {
	repo  MenuStore
	log   *zap.Logger
	cache *cache.Cache
	ttl   time.Duration

	// 串行化 checkOrder 和随后的落库
	orderMu sync.Mutex

	// 最近一次失效没成功，缓存里可能还是旧列表
	stale atomic.Bool
}

type MenuOption func(*MenuService)

// WithMenuCache 菜单列表走 redis 读穿；c 为 nil 等于不开
func WithMenuCache(c *cache.Cache, ttl time.Duration) MenuOption {
	return func(s *MenuService) {
		s.cache = c
		s.ttl = ttl
	}
}

func NewMenuService(r MenuStore, l *zap.Logger, opts ...MenuOption) *MenuService {
	if l == nil {
		l = zap.NewNop()
	}
	s := &MenuService{repo: r, log: l, ttl: time.Minute}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create commit=false 时只暂存，由 Flush 统一落库。
// 同一批次内的 order 冲突只能靠调用方保证
func (s *MenuService) Create(ctx context.Context, in dto.MenuInput, commit bool) (*domain.Menu, error) {
	m := new(domain.Menu).
		SetName(in.Name).
		SetDescription(in.Description).
		SetOrder(in.Order)
	err := s.withOrder(ctx, in.Order, 0, func() error {
		return s.repo.Save(ctx, m, commit)
	})
	if errors.Is(err, ErrOrderTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}
	if commit {
		s.invalidate(ctx)
	}
	return m, nil
}

// Update 覆盖全部可变字段，总是立即落库
func (s *MenuService) Update(ctx context.Context, m *domain.Menu, in dto.MenuInput) (*domain.Menu, error) {
	err := s.withOrder(ctx, in.Order, m.ID, func() error {
		m.SetName(in.Name).
			SetDescription(in.Description).
			SetOrder(in.Order)
		return s.repo.Save(ctx, m, true)
	})
	if errors.Is(err, ErrOrderTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update menu %d: %w", m.ID, err)
	}
	s.invalidate(ctx)
	return m, nil
}

// Delete 软删，立即落库
func (s *MenuService) Delete(ctx context.Context, m *domain.Menu) error {
	if err := s.repo.Remove(ctx, m, true); err != nil {
		return fmt.Errorf("delete menu %d: %w", m.ID, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*domain.Menu, error) {
	m, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, menuNotFound(id)
	}
	return m, nil
}

func (s *MenuService) List(ctx context.Context) ([]domain.Menu, error) {
	load := func(ctx context.Context) ([]domain.Menu, error) {
		return s.repo.FindBy(ctx, repo.Criteria{Order: "id"})
	}
	// 失效补做成功之前绕过缓存
	if s.stale.Load() && !s.retryInvalidate(ctx) {
		return load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, menusCacheKey, s.ttl, load)
}

// Trash 已软删的菜单
func (s *MenuService) Trash(ctx context.Context) ([]domain.Menu, error) {
	return s.repo.FindBy(ctx, repo.Criteria{Order: "id", Visibility: repo.OnlyDeleted})
}

func (s *MenuService) Restore(ctx context.Context, id uint) (*domain.Menu, error) {
	m, err := s.repo.FindIn(ctx, id, repo.OnlyDeleted)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, menuNotFound(id)
	}
	err = s.withOrder(ctx, m.Order, m.ID, func() error {
		return s.repo.Restore(ctx, m, true)
	})
	if errors.Is(err, ErrOrderTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("restore menu %d: %w", id, err)
	}
	s.invalidate(ctx)
	return m, nil
}

// Purge 物理删除，软删与否都可以
func (s *MenuService) Purge(ctx context.Context, id uint) error {
	m, err := s.repo.FindIn(ctx, id, repo.WithDeleted)
	if err != nil {
		return err
	}
	if m == nil {
		return menuNotFound(id)
	}
	if err := s.repo.PermanentlyRemove(ctx, m, true); err != nil {
		return fmt.Errorf("purge menu %d: %w", id, err)
	}
	s.invalidate(ctx)
	s.log.Info("menu purged", zap.Uint("id", id))
	return nil
}

// Flush 提交 commit=false 暂存的批次
func (s *MenuService) Flush(ctx context.Context) error {
	if err := s.repo.Flush(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Discard 放弃尚未 Flush 的批次
func (s *MenuService) Discard() int { return s.repo.Discard() }

// withOrder 在 orderMu 下先 checkOrder 再执行 write。
// 只在本进程内有效：多个实例共用一个库时仍可能写出重复 order，
// 表上没有唯一约束（软删的菜单要保留原 order）。
// commit=false 时 write 只是入队，同一批次内的冲突由调用方保证，见 fixtures.LoadMenus
func (s *MenuService) withOrder(ctx context.Context, order *int, self uint, write func() error) error {
	s.orderMu.Lock()
	defer s.orderMu.Unlock()
	if err := s.checkOrder(ctx, order, self); err != nil {
		return err
	}
	return write()
}

// checkOrder order 在活跃菜单里唯一；self 为当前菜单 id（新建传 0）。
// 先查后写，单独调用有竞态，写路径都走 withOrder
func (s *MenuService) checkOrder(ctx context.Context, order *int, self uint) error {
	if order == nil {
		return nil
	}
	other, err := s.repo.FindByOrder(ctx, *order)
	if err != nil {
		return err
	}
	if other != nil && other.ID != self {
		return ErrOrderTaken
	}
	return nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, menusCacheKey); err != nil {
		s.stale.Store(true)
		s.log.Warn("menu cache invalidate failed, bypassing cache", zap.Error(err))
		return
	}
	s.stale.Store(false)
}

func (s *MenuService) retryInvalidate(ctx context.Context) bool {
	if err := s.cache.Invalidate(ctx, menusCacheKey); err != nil {
		return false
	}
	s.stale.Store(false)
	s.log.Info("menu cache invalidated after earlier failure")
	return true
}
