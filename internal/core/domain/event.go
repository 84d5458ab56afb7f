package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType identifies the kind of an account event.
type EventType string

const (
	// EventTypeAccountCreated records the opening of an account.
	EventTypeAccountCreated EventType = "account.created"
	// EventTypeAccountCredited records money added to an account.
	EventTypeAccountCredited EventType = "account.credited"
	// EventTypeAccountDebited records money taken from an account.
	EventTypeAccountDebited EventType = "account.debited"
)

// EventHandler receives every event variant through its own method.
// Adding a variant to Event means adding a method here, so every fold and
// projection stops compiling until it handles the new variant.
type EventHandler interface {
	OnAccountCreated(evt AccountCreated) error
	OnAccountCredited(evt AccountCredited) error
	OnAccountDebited(evt AccountDebited) error
}

// Event is a fact recorded in an account stream. The set of implementations is closed.
type Event interface {
	AggregateID() string
	EventType() EventType
	// Dispatch calls the handler method matching the concrete variant.
	Dispatch(h EventHandler) error
	isEvent()
}

// AccountCreated opens an account with an initial balance.
type AccountCreated struct {
	AccountID      string          `json:"accountId"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Currency       string          `json:"currency"`
	Status         AccountStatus   `json:"status"`
}

// AccountCredited adds Amount to an account.
type AccountCredited struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// AccountDebited removes Amount from an account.
type AccountDebited struct {
	AccountID string          `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

func (e AccountCreated) AggregateID() string { return e.AccountID }
func (e AccountCreated) EventType() EventType { return EventTypeAccountCreated }
func (e AccountCreated) Dispatch(h EventHandler) error { return h.OnAccountCreated(e) }
func (AccountCreated) isEvent() {}

func (e AccountCredited) AggregateID() string { return e.AccountID }
func (e AccountCredited) EventType() EventType { return EventTypeAccountCredited }
func (e AccountCredited) Dispatch(h EventHandler) error { return h.OnAccountCredited(e) }
func (AccountCredited) isEvent() {}

func (e AccountDebited) AggregateID() string { return e.AccountID }
func (e AccountDebited) EventType() EventType { return EventTypeAccountDebited }
func (e AccountDebited) Dispatch(h EventHandler) error { return h.OnAccountDebited(e) }
func (AccountDebited) isEvent() {}

// StoredEvent is an event as recorded by the event log.
type StoredEvent struct {
	// EventID uniquely identifies the stored event.
	EventID string `json:"eventId"`
	// AggregateID is the account stream the event belongs to.
	AggregateID string `json:"aggregateId"`
	// Version is the 1-based position of the event inside its stream.
	// Assigned by the store on append.
	Version int64 `json:"version"`
	// Position is the global append order across all streams.
	// Assigned by the store on append.
	Position int64 `json:"position"`
	// Type mirrors Event.EventType().
	Type EventType `json:"type"`
	// OccurredAt is when the event was appended.
	OccurredAt time.Time `json:"occurredAt"`
	// Event is the decoded payload.
	Event Event `json:"payload"`
}

// Events strips the envelopes, keeping append order.
func Events(stored []StoredEvent) []Event {
	out := make([]Event, len(stored))
	for i, se := range stored {
		out[i] = se.Event
	}
	return out
}
