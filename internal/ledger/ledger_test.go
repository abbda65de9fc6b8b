package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/campusbooks/student-ledger/internal/accounts"
	"github.com/campusbooks/student-ledger/internal/interfaces"
	"github.com/campusbooks/student-ledger/internal/models"
	"github.com/campusbooks/student-ledger/internal/storage/memory"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *capturePublisher) Publish(topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	store    *memory.Store
	registry *accounts.Registry
	svc      *Service
	events   *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	require.NoError(t, store.EnsureSchema(ctx))

	registry, err := accounts.NewRegistry(ctx, store)
	require.NoError(t, err)

	events := &capturePublisher{}
	svc := NewService(store, registry,
		WithPublisher(events),
		WithClock(func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }),
	)
	return &fixture{store: store, registry: registry, svc: svc, events: events}
}

func (f *fixture) addStudent(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := f.store.Atomically(context.Background(), func(uow interfaces.UnitOfWork) error {
		var err error
		id, err = uow.InsertStudent(context.Background(), models.Student{Name: name})
		return err
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) addCourse(t *testing.T, name, price string) int64 {
	t.Helper()
	var id int64
	err := f.store.Atomically(context.Background(), func(uow interfaces.UnitOfWork) error {
		var err error
		id, err = uow.InsertCourse(context.Background(), models.Course{
			Name:  name,
			Price: decimal.RequireFromString(price),
		})
		return err
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) studentExists(t *testing.T, id int64) bool {
	t.Helper()
	var ok bool
	err := f.store.Atomically(context.Background(), func(uow interfaces.UnitOfWork) error {
		var err error
		ok, err = uow.StudentExists(context.Background(), id)
		return err
	})
	require.NoError(t, err)
	return ok
}

func (f *fixture) selectionExists(t *testing.T, id int64) bool {
	t.Helper()
	var ok bool
	err := f.store.Atomically(context.Background(), func(uow interfaces.UnitOfWork) error {
		var err error
		ok, err = uow.SelectionExists(context.Background(), id)
		return err
	})
	require.NoError(t, err)
	return ok
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
