package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/SscSPs/account_ledger/internal/utils/mapping"
	"github.com/google/uuid"
)

const eventColumns = `position, event_id, aggregate_id, version, event_type, payload, occurred_at`

// EventRepository stores the event log in the events table.
type EventRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventRepository creates an event log over db.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

var _ portsrepo.EventStoreFacade = (*EventRepository)(nil)

// Append atomically checks the stream version and inserts the event.
func (r *EventRepository) Append(ctx context.Context, aggregateID string, expectedVersion int64, evt domain.Event) (domain.StoredEvent, error) {
	if evt == nil || evt.AggregateID() != aggregateID {
		return domain.StoredEvent{}, fmt.Errorf("%w: event does not belong to stream %s", apperrors.ErrValidation, aggregateID)
	}

	stored := domain.StoredEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		Version:     expectedVersion + 1,
		Type:        evt.EventType(),
		OccurredAt:  r.now().UTC().Truncate(time.Millisecond),
		Event:       evt,
	}
	row, err := mapping.ToModelEvent(stored)
	if err != nil {
		return domain.StoredEvent{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoredEvent{}, apperrors.NewStoreError("begin tx", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ?`, aggregateID).Scan(&current)
	if err != nil {
		return domain.StoredEvent{}, apperrors.NewStoreError("read stream version", err)
	}
	if current != expectedVersion {
		return domain.StoredEvent{}, fmt.Errorf("%w: stream %s is at version %d, expected %d", apperrors.ErrConcurrencyConflict, aggregateID, current, expectedVersion)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (event_id, aggregate_id, version, event_type, payload, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
		row.EventID, row.AggregateID, row.Version, row.EventType, string(row.Payload), toMillis(row.OccurredAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return domain.StoredEvent{}, fmt.Errorf("%w: stream %s version %d already written", apperrors.ErrConcurrencyConflict, aggregateID, row.Version)
		}
		return domain.StoredEvent{}, apperrors.NewStoreError("append event", err)
	}
	position, err := res.LastInsertId()
	if err != nil {
		return domain.StoredEvent{}, apperrors.NewStoreError("read event position", err)
	}

	if err := tx.Commit(); err != nil {
		if isConstraintError(err) {
			return domain.StoredEvent{}, fmt.Errorf("%w: stream %s", apperrors.ErrConcurrencyConflict, aggregateID)
		}
		return domain.StoredEvent{}, apperrors.NewStoreError("commit tx", err)
	}

	stored.Position = position
	return stored, nil
}

// ReadAll returns the stream ordered by version.
func (r *EventRepository) ReadAll(ctx context.Context, aggregateID string) ([]domain.StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE aggregate_id = ? ORDER BY version`, aggregateID)
	if err != nil {
		return nil, apperrors.NewStoreError("read stream "+aggregateID, err)
	}
	return collectEvents(rows)
}

// Exists reports whether any event has been written for the stream.
func (r *EventRepository) Exists(ctx context.Context, aggregateID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE aggregate_id = ?)`, aggregateID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStoreError("check stream "+aggregateID, err)
	}
	return exists, nil
}

// ReadFrom pages through the whole log ordered by position.
func (r *EventRepository) ReadFrom(ctx context.Context, afterPosition int64, limit int) ([]domain.StoredEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", apperrors.ErrValidation)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE position > ? ORDER BY position LIMIT ?`, afterPosition, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("page events", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]domain.StoredEvent, error) {
	defer rows.Close()

	events := []domain.StoredEvent{}
	for rows.Next() {
		var (
			m          models.Event
			payload    string
			occurredAt int64
		)
		if err := rows.Scan(&m.Position, &m.EventID, &m.AggregateID, &m.Version, &m.EventType, &payload, &occurredAt); err != nil {
			return nil, apperrors.NewStoreError("scan event row", err)
		}
		m.Payload = []byte(payload)
		m.OccurredAt = fromMillis(occurredAt)

		evt, err := mapping.ToDomainStoredEvent(m)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: %w", apperrors.ErrCorruptHistory, m.EventID, err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate event rows", err)
	}
	return events, nil
}
