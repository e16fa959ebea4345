package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"menus-api/internal/domain"
	"menus-api/internal/dto"
	"menus-api/internal/repo"
	"menus-api/pkg/utils"
)

type UserStore interface {
	Save(ctx context.Context, u *domain.User, commit bool) error
	Remove(ctx context.Context, u *domain.User, commit bool) error
	Restore(ctx context.Context, u *domain.User, commit bool) error
	PermanentlyRemove(ctx context.Context, u *domain.User, commit bool) error
	Flush(ctx context.Context) error
	Find(ctx context.Context, id uint) (*domain.User, error)
	FindIn(ctx context.Context, id uint, v repo.Visibility) (*domain.User, error)
	FindBy(ctx context.Context, c repo.Criteria) ([]domain.User, error)
	Count(ctx context.Context, c repo.Criteria) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type UserService struct {
	repo UserStore
	log  *zap.Logger
	cost int // bcrypt cost
}

func NewUserService(r UserStore, l *zap.Logger, bcryptCost int) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{repo: r, log: l, cost: bcryptCost}
}

// Create 密码先哈希再落库，明文不会进实体
func (s *UserService) Create(ctx context.Context, in dto.UserInput, commit bool) (*domain.User, error) {
	if other, err := s.repo.FindByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if other != nil {
		return nil, ErrEmailTaken
	}
	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := new(domain.User).
		SetEmail(in.Email).
		SetPassword(hash).
		SetRoles(in.Roles)
	if err := s.repo.Save(ctx, u, commit); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Update 覆盖 email/password/roles，总是立即落库
func (s *UserService) Update(ctx context.Context, u *domain.User, in dto.UserInput) (*domain.User, error) {
	if other, err := s.repo.FindByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if other != nil && other.ID != u.ID {
		return nil, ErrEmailTaken
	}
	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.SetEmail(in.Email).
		SetPassword(hash).
		SetRoles(in.Roles)
	if err := s.repo.Save(ctx, u, true); err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, u *domain.User) error {
	if err := s.repo.Remove(ctx, u, true); err != nil {
		return fmt.Errorf("delete user %d: %w", u.ID, err)
	}
	s.log.Info("user soft deleted", zap.Uint("id", u.ID))
	return nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, userNotFound(id)
	}
	return u, nil
}

// FindActive 鉴权中间件用：不存在或已软删返回 (nil, nil)
func (s *UserService) FindActive(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.Find(ctx, id)
}

// Authenticate 查不到、已软删、密码不对都返回 ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

type ListQuery struct {
	Q           string
	WithDeleted bool
	Offset      int
	Limit       int
}

// List 管理端用户列表，返回当前页和总数
func (s *UserService) List(ctx context.Context, q ListQuery) ([]domain.User, int64, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	c := repo.Criteria{Order: "id DESC", Offset: q.Offset, Limit: q.Limit}
	if q.WithDeleted {
		c.Visibility = repo.WithDeleted
	}
	if q.Q != "" {
		c.Scopes = []func(*gorm.DB) *gorm.DB{repo.EmailLike(q.Q)}
	}
	total, err := s.repo.Count(ctx, repo.Criteria{Visibility: c.Visibility, Scopes: c.Scopes})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	us, err := s.repo.FindBy(ctx, c)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return us, total, nil
}

// Ban 管理端封禁 = 软删
func (s *UserService) Ban(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Restore(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.repo.FindIn(ctx, id, repo.OnlyDeleted)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, userNotFound(id)
	}
	if err := s.repo.Restore(ctx, u, true); err != nil {
		return nil, fmt.Errorf("restore user %d: %w", id, err)
	}
	return u, nil
}

func (s *UserService) Purge(ctx context.Context, id uint) error {
	u, err := s.repo.FindIn(ctx, id, repo.WithDeleted)
	if err != nil {
		return err
	}
	if u == nil {
		return userNotFound(id)
	}
	if err := s.repo.PermanentlyRemove(ctx, u, true); err != nil {
		if errors.Is(err, repo.ErrNotTracked) {
			return userNotFound(id)
		}
		return fmt.Errorf("purge user %d: %w", id, err)
	}
	s.log.Info("user purged", zap.Uint("id", id))
	return nil
}

func (s *UserService) Flush(ctx context.Context) error { return s.repo.Flush(ctx) }
