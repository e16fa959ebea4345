package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"menus-api/internal/domain"
)

const (
	opSave    = "save"
	opRemove  = "remove"
	opRestore = "restore"
	opPurge   = "purge"
)

// Visibility 控制读路径是否带软删过滤。零值 = 只看活跃记录
type Visibility int

const (
	ActiveOnly Visibility = iota
	WithDeleted
	OnlyDeleted
)

// Active 软删过滤：deleted 非空即排除（立即生效，不支持"预约删除"）
func Active(db *gorm.DB) *gorm.DB { return db.Where("deleted IS NULL") }

func (v Visibility) scope(db *gorm.DB) *gorm.DB {
	switch v {
	case WithDeleted:
		return db
	case OnlyDeleted:
		return db.Where("deleted IS NOT NULL")
	default:
		return Active(db)
	}
}

// Criteria 查询条件。Where 的 key 是列名
type Criteria struct {
	Where      map[string]any
	Scopes     []func(*gorm.DB) *gorm.DB
	Order      string
	Offset     int
	Limit      int
	Visibility Visibility
}

// Repository 通用仓库：所有写操作经过 Session，所有读操作经过 read()
type Repository[T any, PT interface {
	*T
	domain.Entity
}] struct {
	s    *Session
	name string
}

func NewRepository[T any, PT interface {
	*T
	domain.Entity
}](s *Session) *Repository[T, PT] {
	return &Repository[T, PT]{s: s, name: tableOf[T]()}
}

func tableOf[T any]() string {
	if tn, ok := any(new(T)).(interface{ TableName() string }); ok {
		return tn.TableName()
	}
	return fmt.Sprintf("%T", *new(T))
}

// Save 新实体插入并写 created；已有 id 的更新全部列并写 modified
func (r *Repository[T, PT]) Save(ctx context.Context, e PT, commit bool) error {
	return r.stage(ctx, e, opSave, commit, func(tx *gorm.DB) error {
		return r.write(tx, e)
	})
}

// Remove 软删 = MarkDeleted + Save
func (r *Repository[T, PT]) Remove(ctx context.Context, e PT, commit bool) error {
	if e.GetID() == 0 {
		return ErrNotTracked
	}
	return r.stage(ctx, e, opRemove, commit, func(tx *gorm.DB) error {
		r.s.policy.MarkDeleted(e)
		return r.write(tx, e)
	})
}

func (r *Repository[T, PT]) Restore(ctx context.Context, e PT, commit bool) error {
	if e.GetID() == 0 {
		return ErrNotTracked
	}
	return r.stage(ctx, e, opRestore, commit, func(tx *gorm.DB) error {
		r.s.policy.Restore(e)
		return r.write(tx, e)
	})
}

// PermanentlyRemove 物理删除，不经过生命周期
func (r *Repository[T, PT]) PermanentlyRemove(ctx context.Context, e PT, commit bool) error {
	if e.GetID() == 0 {
		return ErrNotTracked
	}
	return r.stage(ctx, e, opPurge, commit, func(tx *gorm.DB) error {
		res := tx.Delete(PT(new(T)), e.GetID())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotTracked
		}
		return nil
	})
}

// Flush 提交 Session 里所有暂存操作（包括其他仓库的）
func (r *Repository[T, PT]) Flush(ctx context.Context) error { return r.s.Flush(ctx) }

// Discard 放弃 Session 里暂存的操作
func (r *Repository[T, PT]) Discard() int { return r.s.Discard() }

// Find 只查活跃记录；不存在或已软删返回 (nil, nil)
func (r *Repository[T, PT]) Find(ctx context.Context, id uint) (PT, error) {
	return r.FindIn(ctx, id, ActiveOnly)
}

func (r *Repository[T, PT]) FindIn(ctx context.Context, id uint, v Visibility) (PT, error) {
	var e T
	err := r.read(ctx, v).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository[T, PT]) FindAll(ctx context.Context) ([]T, error) {
	return r.FindBy(ctx, Criteria{Order: "id"})
}

func (r *Repository[T, PT]) FindBy(ctx context.Context, c Criteria) ([]T, error) {
	q := r.filter(ctx, c)
	if c.Order != "" {
		q = q.Order(c.Order)
	}
	if c.Offset > 0 {
		q = q.Offset(c.Offset)
	}
	if c.Limit > 0 {
		q = q.Limit(c.Limit)
	}
	out := make([]T, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindOneBy 取第一条匹配的活跃记录（按 id），没有返回 (nil, nil)
func (r *Repository[T, PT]) FindOneBy(ctx context.Context, c Criteria) (PT, error) {
	var e T
	err := r.filter(ctx, c).Order("id").Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository[T, PT]) Count(ctx context.Context, c Criteria) (int64, error) {
	var n int64
	if err := r.filter(ctx, c).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository[T, PT]) filter(ctx context.Context, c Criteria) *gorm.DB {
	q := r.read(ctx, c.Visibility)
	if len(c.Where) > 0 {
		q = q.Where(c.Where)
	}
	if len(c.Scopes) > 0 {
		q = q.Scopes(c.Scopes...)
	}
	return q
}

// read 唯一的读入口，软删过滤在这里统一加上
func (r *Repository[T, PT]) read(ctx context.Context, v Visibility) *gorm.DB {
	return r.s.db.WithContext(ctx).Model(PT(new(T))).Scopes(v.scope)
}

func (r *Repository[T, PT]) write(tx *gorm.DB, e PT) error {
	if e.GetID() == 0 {
		if err := r.s.policy.StampCreated(e); err != nil {
			return err
		}
		return tx.Create(e).Error
	}

	r.s.policy.StampModified(e)
	// 显式 Select("*")：全列更新，且不会在 0 行时退化成 upsert
	res := tx.Select("*").Save(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL 在值没变化时也返回 0，再确认一次行是否存在
		var n int64
		if err := tx.Model(PT(new(T))).Where("id = ?", e.GetID()).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotTracked
		}
	}
	return nil
}

// stage commit=false 只入队；commit=true 连同已暂存的操作一起提交。
// 执行前拍快照，事务失败时还原实体
func (r *Repository[T, PT]) stage(ctx context.Context, e PT, name string, commit bool, apply func(tx *gorm.DB) error) error {
	var (
		prev T
		ran  bool
	)
	o := op{
		entity: r.name,
		name:   name,
		run: func(tx *gorm.DB) error {
			prev, ran = *e, true
			return apply(tx)
		},
		undo: func() {
			if ran {
				*e = prev
			}
		},
	}
	if !commit {
		return r.s.stage(o)
	}
	return r.s.flush(ctx, o)
}
