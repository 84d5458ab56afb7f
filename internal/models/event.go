package models

import "time"

// Event is one row of the append-only events table.
type Event struct {
	Position    int64     `db:"position"`
	EventID     string    `db:"event_id"`
	AggregateID string    `db:"aggregate_id"`
	Version     int64     `db:"version"`
	EventType   string    `db:"event_type"`
	Payload     []byte    `db:"payload"` // JSON encoded domain event
	OccurredAt  time.Time `db:"occurred_at"`
}
