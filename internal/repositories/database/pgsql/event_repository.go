package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/SscSPs/account_ledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `position, event_id::text, aggregate_id, version, event_type, payload, occurred_at`

// PgxEventRepository stores the event log in the events table.
type PgxEventRepository struct {
	BaseRepository
}

// newPgxEventRepository creates a new repository for the event log.
func newPgxEventRepository(pool *pgxpool.Pool) *PgxEventRepository {
	return &PgxEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.EventStoreFacade   = (*PgxEventRepository)(nil)
	_ portsrepo.TransactionManager = (*PgxEventRepository)(nil)
)

// Append checks the stream version and inserts the event in one transaction.
// Two writers racing past the version check are separated by the
// (aggregate_id, version) unique key.
func (r *PgxEventRepository) Append(ctx context.Context, aggregateID string, expectedVersion int64, evt domain.Event) (domain.StoredEvent, error) {
	if evt == nil || evt.AggregateID() != aggregateID {
		return domain.StoredEvent{}, fmt.Errorf("%w: event does not belong to stream %s", apperrors.ErrValidation, aggregateID)
	}

	row, err := mapping.ToModelEvent(domain.StoredEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		Version:     expectedVersion + 1,
		Type:        evt.EventType(),
		Event:       evt,
	})
	if err != nil {
		return domain.StoredEvent{}, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return domain.StoredEvent{}, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	var current int64
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = $1`, aggregateID).Scan(&current)
	if err != nil {
		return domain.StoredEvent{}, apperrors.NewStoreError("failed to read stream version", err)
	}
	if current != expectedVersion {
		return domain.StoredEvent{}, fmt.Errorf("%w: stream %s is at version %d, expected %d", apperrors.ErrConcurrencyConflict, aggregateID, current, expectedVersion)
	}

	query := `
		INSERT INTO events (event_id, aggregate_id, version, event_type, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING position, occurred_at;
	`
	err = tx.QueryRow(ctx, query, row.EventID, row.AggregateID, row.Version, row.EventType, row.Payload).
		Scan(&row.Position, &row.OccurredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.StoredEvent{}, fmt.Errorf("%w: stream %s version %d already written", apperrors.ErrConcurrencyConflict, aggregateID, row.Version)
		}
		return domain.StoredEvent{}, apperrors.NewStoreError("failed to append event", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return domain.StoredEvent{}, err
	}

	return domain.StoredEvent{
		EventID:     row.EventID,
		AggregateID: row.AggregateID,
		Version:     row.Version,
		Position:    row.Position,
		Type:        evt.EventType(),
		OccurredAt:  row.OccurredAt.UTC(),
		Event:       evt,
	}, nil
}

// ReadAll returns the stream ordered by version.
func (r *PgxEventRepository) ReadAll(ctx context.Context, aggregateID string) ([]domain.StoredEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE aggregate_id = $1 ORDER BY version;`
	rows, err := r.Pool.Query(ctx, query, aggregateID)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to read stream "+aggregateID, err)
	}
	return collectEvents(rows)
}

// Exists reports whether any event has been written for the stream.
func (r *PgxEventRepository) Exists(ctx context.Context, aggregateID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE aggregate_id = $1)`, aggregateID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewStoreError("failed to check stream "+aggregateID, err)
	}
	return exists, nil
}

// ReadFrom pages through the whole log ordered by position.
func (r *PgxEventRepository) ReadFrom(ctx context.Context, afterPosition int64, limit int) ([]domain.StoredEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", apperrors.ErrValidation)
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE position > $1 ORDER BY position LIMIT $2;`
	rows, err := r.Pool.Query(ctx, query, afterPosition, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to page events", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]domain.StoredEvent, error) {
	defer rows.Close()

	events := []domain.StoredEvent{}
	for rows.Next() {
		var m models.Event
		if err := rows.Scan(&m.Position, &m.EventID, &m.AggregateID, &m.Version, &m.EventType, &m.Payload, &m.OccurredAt); err != nil {
			return nil, apperrors.NewStoreError("failed to scan event row", err)
		}
		m.OccurredAt = m.OccurredAt.UTC()
		evt, err := mapping.ToDomainStoredEvent(m)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: %w", apperrors.ErrCorruptHistory, m.EventID, err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating event rows", err)
	}
	return events, nil
}
