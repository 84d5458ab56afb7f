package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// EventRepository keeps the event log in process memory.
type EventRepository struct {
	mu      sync.RWMutex
	streams map[string][]domain.StoredEvent
	log     []domain.StoredEvent
	now     func() time.Time
}

// NewEventRepository creates an empty in-memory event log.
func NewEventRepository() *EventRepository {
	return &EventRepository{
		streams: make(map[string][]domain.StoredEvent),
		now:     time.Now,
	}
}

var _ portsrepo.EventStoreFacade = (*EventRepository)(nil)

// Append records evt as version expectedVersion+1 of its stream.
func (r *EventRepository) Append(ctx context.Context, aggregateID string, expectedVersion int64, evt domain.Event) (domain.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredEvent{}, err
	}
	if evt == nil {
		return domain.StoredEvent{}, fmt.Errorf("%w: event is required", apperrors.ErrValidation)
	}
	if evt.AggregateID() != aggregateID {
		return domain.StoredEvent{}, fmt.Errorf("%w: event for %s appended to stream %s", apperrors.ErrValidation, evt.AggregateID(), aggregateID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := int64(len(r.streams[aggregateID]))
	if current != expectedVersion {
		return domain.StoredEvent{}, fmt.Errorf("%w: stream %s is at version %d, expected %d", apperrors.ErrConcurrencyConflict, aggregateID, current, expectedVersion)
	}

	stored := domain.StoredEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		Version:     current + 1,
		Position:    int64(len(r.log)) + 1,
		Type:        evt.EventType(),
		OccurredAt:  r.now().UTC(),
		Event:       evt,
	}
	r.streams[aggregateID] = append(r.streams[aggregateID], stored)
	r.log = append(r.log, stored)
	return stored, nil
}

// ReadAll returns a copy of the stream in append order.
func (r *EventRepository) ReadAll(ctx context.Context, aggregateID string) ([]domain.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stream := r.streams[aggregateID]
	out := make([]domain.StoredEvent, len(stream))
	copy(out, stream)
	return out, nil
}

// Exists reports whether the stream has any event.
func (r *EventRepository) Exists(ctx context.Context, aggregateID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams[aggregateID]) > 0, nil
}

// ReadFrom pages through the log in global order.
func (r *EventRepository) ReadFrom(ctx context.Context, afterPosition int64, limit int) ([]domain.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", apperrors.ErrValidation)
	}
	if afterPosition < 0 {
		afterPosition = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// positions are dense and 1-based, so position p lives at index p-1
	start := afterPosition
	if start >= int64(len(r.log)) {
		return []domain.StoredEvent{}, nil
	}
	end := min(start+int64(limit), int64(len(r.log)))
	out := make([]domain.StoredEvent, end-start)
	copy(out, r.log[start:end])
	return out, nil
}
