package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"menus-api/internal/domain"
)

type UserRepo struct {
	*Repository[domain.User, *domain.User]
}

func NewUserRepo(s *Session) *UserRepo {
	return &UserRepo{Repository: NewRepository[domain.User](s)}
}

// FindByEmail 忽略大小写，只查活跃用户
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return r.FindOneBy(ctx, Criteria{Scopes: []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Where("LOWER(email) = ?", email) },
	}})
}

// EmailLike 管理端模糊搜
func EmailLike(q string) func(*gorm.DB) *gorm.DB {
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	return func(db *gorm.DB) *gorm.DB { return db.Where("LOWER(email) LIKE ?", like) }
}
