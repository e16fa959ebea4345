package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"menus-api/internal/domain"
	"menus-api/internal/dto"
)

// MenuCreator *service.MenuService 实现
type MenuCreator interface {
	Create(ctx context.Context, in dto.MenuInput, commit bool) (*domain.Menu, error)
	Flush(ctx context.Context) error
	Discard() int
}

// LoadMenus 读 JSON 数组，全部暂存后一次 Flush：要么全部入库，要么一条都不入
func LoadMenus(ctx context.Context, r io.Reader, menus MenuCreator) ([]*domain.Menu, error) {
	var items []dto.MenuInput
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	seen := make(map[int]int, len(items))
	for i := range items {
		in := items[i].Normalize()
		if errs := in.Validate(); errs != nil {
			return nil, fmt.Errorf("fixture #%d: %w", i, errs)
		}
		// 同一批次里的 order 冲突 service 查不到，这里先挡掉
		if in.Order != nil {
			if j, dup := seen[*in.Order]; dup {
				return nil, fmt.Errorf("fixture #%d: order %d already used by fixture #%d", i, *in.Order, j)
			}
			seen[*in.Order] = i
		}
	}

	out := make([]*domain.Menu, 0, len(items))
	for i := range items {
		m, err := menus.Create(ctx, items[i], false)
		if err != nil {
			menus.Discard()
			return nil, fmt.Errorf("fixture #%d: %w", i, err)
		}
		out = append(out, m)
	}
	if err := menus.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush fixtures: %w", err)
	}
	return out, nil
}

func LoadMenusFile(ctx context.Context, path string, menus MenuCreator) ([]*domain.Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadMenus(ctx, f, menus)
}
