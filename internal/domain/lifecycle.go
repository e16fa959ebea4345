package domain

import (
	"errors"
	"time"
)

// ErrAlreadyCreated created 只能写一次
var ErrAlreadyCreated = errors.New("lifecycle: created already set")

// Lifecycle 三个时间戳，所有持久化实体共用
type Lifecycle struct {
	Created  time.Time  `gorm:"column:created;not null"`
	Modified *time.Time `gorm:"column:modified"`
	Deleted  *time.Time `gorm:"column:deleted;index"`
}

// Life 通过嵌入提升到实体上，Policy 只认这个
func (l *Lifecycle) Life() *Lifecycle { return l }

// Entity 可被仓库持久化的实体
type Entity interface {
	GetID() uint
	Life() *Lifecycle
}

// Policy 统一的生命周期规则。零值可用。
type Policy struct {
	Now func() time.Time
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// StampCreated 首次持久化时调用；重复调用返回 ErrAlreadyCreated，不改原值
func (p Policy) StampCreated(e Entity) error {
	l := e.Life()
	if !l.Created.IsZero() {
		return ErrAlreadyCreated
	}
	l.Created = p.now()
	return nil
}

func (p Policy) StampModified(e Entity) {
	t := p.now()
	e.Life().Modified = &t
}

// MarkDeleted 幂等：已删除的只刷新时间
func (p Policy) MarkDeleted(e Entity) {
	t := p.now()
	e.Life().Deleted = &t
}

func (p Policy) Restore(e Entity) { e.Life().Deleted = nil }

func (p Policy) IsDeleted(e Entity) bool { return e.Life().Deleted != nil }
