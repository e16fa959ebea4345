package repo

import (
	"context"

	"menus-api/internal/domain"
)

type MenuRepo struct {
	*Repository[domain.Menu, *domain.Menu]
}

func NewMenuRepo(s *Session) *MenuRepo {
	return &MenuRepo{Repository: NewRepository[domain.Menu](s)}
}

// FindByOrder 活跃菜单里占用该 order 的那一条
func (r *MenuRepo) FindByOrder(ctx context.Context, order int) (*domain.Menu, error) {
	return r.FindOneBy(ctx, Criteria{Where: map[string]any{"order": order}})
}
