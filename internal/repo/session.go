package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"menus-api/internal/domain"
)

type op struct {
	entity string
	name   string
	run    func(tx *gorm.DB) error
	undo   func()
}

// Session 工作单元：commit=false 的写操作先暂存，Flush 时在同一个事务里全部落库。
// 同一个 Session 可以被多个仓库共享；暂存队列是 Session 级别的，
// 任何一次 commit=true 都会带走队列里所有人的操作。
// 并发请求共用的 Session 应该用 WithAutocommit，批量导入各自 NewSession。
type Session struct {
	db     *gorm.DB
	log    *zap.Logger
	policy domain.Policy

	autocommit bool

	mu      sync.Mutex
	pending []op
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option { return func(s *Session) { s.log = l } }

// WithAutocommit 禁止暂存：commit=false 返回 ErrStagingDisabled，
// 每次写操作只提交它自己
func WithAutocommit() Option { return func(s *Session) { s.autocommit = true } }

// WithClock 测试里固定时间用
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.policy.Now = now }
}

func NewSession(db *gorm.DB, opts ...Option) *Session {
	s := &Session{db: db, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Pending 暂存中的操作数
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Session) stage(o op) error {
	if s.autocommit {
		return fmt.Errorf("%s %s: %w", o.name, o.entity, ErrStagingDisabled)
	}
	s.mu.Lock()
	s.pending = append(s.pending, o)
	s.mu.Unlock()
	return nil
}

// Discard 丢弃暂存队列，实体保持未入库的样子
func (s *Session) Discard() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	s.pending = nil
	return n
}

// Flush 一次事务提交所有暂存操作；失败时整体回滚，
// 内存中的实体也恢复到执行前的状态，队列清空。
func (s *Session) Flush(ctx context.Context) error { return s.flush(ctx) }

// flush 取队列和追加 extra 在同一把锁里完成，
// 保证 commit=true 的调用方一定在自己这次事务里执行到自己的操作
func (s *Session) flush(ctx context.Context, extra ...op) error {
	s.mu.Lock()
	ops := append(s.pending, extra...)
	s.pending = nil
	s.mu.Unlock()
	if len(ops) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range ops {
			if err := o.run(tx); err != nil {
				return fmt.Errorf("%s %s: %w", o.name, o.entity, err)
			}
		}
		return nil
	})
	if err != nil {
		for i := len(ops) - 1; i >= 0; i-- {
			ops[i].undo()
		}
		s.log.Warn("flush rolled back", zap.Int("ops", len(ops)), zap.Error(err))
		return err
	}

	for _, o := range ops {
		lifecycleOps.WithLabelValues(o.entity, o.name).Inc()
	}
	s.log.Debug("flush committed", zap.Int("ops", len(ops)))
	return nil
}
