// Package ledger is the double-entry accounting core: it turns business
// events (enrollment, payment) into balanced ledger entry pairs, derives
// student balances, and performs the deletion cascades that keep the ledger
// consistent with the surrounding CRUD layer.
package ledger

import (
	"time"

	"go.uber.org/zap"

	"github.com/campusbooks/student-ledger/internal/accounts"
	"github.com/campusbooks/student-ledger/internal/interfaces"
)

// Kafka topics for committed postings and cascades.
const (
	TopicPostings = "ledger_postings"
	TopicCascades = "ledger_cascades"
)

// Service is the posting engine plus the balance and cascade operations.
// All writes go through the store's unit of work; the service itself holds
// no mutable state and is safe for concurrent use.
type Service struct {
	store    interfaces.LedgerStore
	registry *accounts.Registry
	events   interfaces.EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher attaches an after-commit event publisher. Publish failures
// are logged, never propagated.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the posting clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the accounting service. The registry must already have
// validated the three required accounts.
func NewService(store interfaces.LedgerStore, registry *accounts.Registry, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: registry,
		log:      zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish sends an event if a publisher is configured. The commit already
// happened; a publish failure must not fail the request.
func (s *Service) publish(topic string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(topic, event); err != nil {
		s.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
