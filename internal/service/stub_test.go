package service_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"menus-api/internal/domain"
	"menus-api/internal/repo"
)

// stubMenuStore 所有操作都返回 err
type stubMenuStore struct{ err error }

func (s *stubMenuStore) Save(context.Context, *domain.Menu, bool) error              { return s.err }
func (s *stubMenuStore) Remove(context.Context, *domain.Menu, bool) error            { return s.err }
func (s *stubMenuStore) Restore(context.Context, *domain.Menu, bool) error           { return s.err }
func (s *stubMenuStore) PermanentlyRemove(context.Context, *domain.Menu, bool) error { return s.err }
func (s *stubMenuStore) Flush(context.Context) error                                 { return s.err }
func (s *stubMenuStore) Discard() int                                                { return 0 }
func (s *stubMenuStore) Find(context.Context, uint) (*domain.Menu, error)            { return nil, s.err }
func (s *stubMenuStore) FindIn(context.Context, uint, repo.Visibility) (*domain.Menu, error) {
	return nil, s.err
}
func (s *stubMenuStore) FindBy(context.Context, repo.Criteria) ([]domain.Menu, error) {
	return nil, s.err
}
func (s *stubMenuStore) FindByOrder(context.Context, int) (*domain.Menu, error) { return nil, s.err }

// mockUserStore testify mock
type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Save(ctx context.Context, u *domain.User, commit bool) error {
	return m.Called(ctx, u, commit).Error(0)
}

func (m *mockUserStore) Remove(ctx context.Context, u *domain.User, commit bool) error {
	return m.Called(ctx, u, commit).Error(0)
}

func (m *mockUserStore) Restore(ctx context.Context, u *domain.User, commit bool) error {
	return m.Called(ctx, u, commit).Error(0)
}

func (m *mockUserStore) PermanentlyRemove(ctx context.Context, u *domain.User, commit bool) error {
	return m.Called(ctx, u, commit).Error(0)
}

func (m *mockUserStore) Flush(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockUserStore) Find(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) FindIn(ctx context.Context, id uint, v repo.Visibility) (*domain.User, error) {
	args := m.Called(ctx, id, v)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) FindBy(ctx context.Context, c repo.Criteria) ([]domain.User, error) {
	args := m.Called(ctx, c)
	if v := args.Get(0); v != nil {
		return v.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Count(ctx context.Context, c repo.Criteria) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// gatedMenuStore FindBy 先取快照，再等 gate 放行，用来制造“读到一半被删”的时序
type gatedMenuStore struct {
	stubMenuStore
	mu      sync.Mutex
	menus   []domain.Menu
	started chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newGatedMenuStore(menus ...domain.Menu) *gatedMenuStore {
	return &gatedMenuStore{menus: menus, started: make(chan struct{}), gate: make(chan struct{})}
}

func (s *gatedMenuStore) FindBy(context.Context, repo.Criteria) ([]domain.Menu, error) {
	s.mu.Lock()
	snap := append([]domain.Menu(nil), s.menus...)
	s.mu.Unlock()
	s.once.Do(func() { close(s.started) })
	<-s.gate
	return snap, nil
}

func (s *gatedMenuStore) Remove(_ context.Context, m *domain.Menu, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menus {
		if s.menus[i].ID == m.ID {
			s.menus = append(s.menus[:i], s.menus[i+1:]...)
			break
		}
	}
	return nil
}
