package repositories

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
)

// EventReader defines read operations over the event log
type EventReader interface {
	// ReadAll returns every event of one account stream in append order.
	// An unknown stream yields an empty slice, not an error.
	ReadAll(ctx context.Context, aggregateID string) ([]domain.StoredEvent, error)

	// Exists reports whether the stream has at least one event.
	Exists(ctx context.Context, aggregateID string) (bool, error)
}

// EventPager pages through the whole log in global append order.
type EventPager interface {
	// ReadFrom returns up to limit events whose Position is greater than afterPosition.
	ReadFrom(ctx context.Context, afterPosition int64, limit int) ([]domain.StoredEvent, error)
}

// EventWriter defines write operations over the event log
type EventWriter interface {
	// Append durably records evt as the next event of the stream.
	// expectedVersion is the number of events the caller saw in the stream;
	// a mismatch fails with apperrors.ErrConcurrencyConflict and nothing is written.
	Append(ctx context.Context, aggregateID string, expectedVersion int64, evt domain.Event) (domain.StoredEvent, error)
}

// EventStoreFacade combines all event log interfaces
type EventStoreFacade interface {
	EventReader
	EventPager
	EventWriter
}
