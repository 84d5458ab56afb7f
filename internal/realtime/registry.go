package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/google/uuid"
)

const defaultBufferSize = 16

// Filter selects the analytics records a subscription wants.
type Filter func(record domain.AccountAnalytics) bool

// ByAccountID matches the records of a single account.
func ByAccountID(accountID string) Filter {
	return func(record domain.AccountAnalytics) bool {
		return record.AccountID == accountID
	}
}

// Subscription is one live query. Updates are delivered on Updates() until
// Close is called or the context it was opened with is done.
type Subscription struct {
	id       string
	filter   Filter
	outbound chan domain.AccountAnalytics
	registry *Registry
	stop     func() bool
	once     sync.Once
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Updates yields matching records in notification order. The channel is
// closed once the subscription ends.
func (s *Subscription) Updates() <-chan domain.AccountAnalytics { return s.outbound }

// Close deregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if stop := s.registry.remove(s); stop != nil {
			stop()
		}
	})
}

// Registry tracks open subscriptions and fans analytics updates out to them.
type Registry struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	bufferSize int
	subs       map[string]*Subscription
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBufferSize sets how many undelivered updates a subscription may hold.
func WithBufferSize(size int) RegistryOption {
	return func(r *Registry) {
		if size > 0 {
			r.bufferSize = size
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:     slog.Default(),
		bufferSize: defaultBufferSize,
		subs:       make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "SubscriptionRegistry"))
	return r
}

// Subscribe registers a new subscription for records matching filter.
func (r *Registry) Subscribe(ctx context.Context, filter Filter) *Subscription {
	s := &Subscription{
		id:       uuid.NewString(),
		filter:   filter,
		outbound: make(chan domain.AccountAnalytics, r.bufferSize),
		registry: r,
	}

	r.mu.Lock()
	r.subs[s.id] = s
	s.stop = context.AfterFunc(ctx, s.Close)
	r.mu.Unlock()

	r.logger.Debug("Subscription opened", slog.String("subscription_id", s.id))
	return s
}

// Notify delivers record to every matching subscription without blocking.
// A subscriber whose buffer is full loses its oldest queued update.
func (r *Registry) Notify(_ context.Context, record domain.AccountAnalytics) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subs {
		if !s.filter(record) {
			continue
		}
		if !offer(s.outbound, record) {
			r.logger.Warn("Dropped update for slow subscriber",
				slog.String("subscription_id", s.id),
				slog.String("account_id", record.AccountID))
		}
	}
	return nil
}

// Len returns the number of open subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// CloseAll ends every open subscription, e.g. on shutdown.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	open := make([]*Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		open = append(open, s)
	}
	r.mu.RUnlock()

	for _, s := range open {
		s.Close()
	}
}

// remove deregisters s and returns the stop func of its context hook.
func (r *Registry) remove(s *Subscription) func() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[s.id]; !ok {
		return nil
	}
	delete(r.subs, s.id)
	close(s.outbound)
	r.logger.Debug("Subscription closed", slog.String("subscription_id", s.id))
	return s.stop
}

// offer enqueues record, evicting the oldest entry when ch is full.
// Returns false if an older update had to be dropped.
func offer(ch chan domain.AccountAnalytics, record domain.AccountAnalytics) bool {
	select {
	case ch <- record:
		return true
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- record:
	default:
	}
	return false
}
