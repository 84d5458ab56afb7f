package mapping

import (
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/internal/models"
)

// ToModelEvent converts a domain StoredEvent to an events row, encoding the payload
func ToModelEvent(d domain.StoredEvent) (models.Event, error) {
	payload, err := domain.EncodeEvent(d.Event)
	if err != nil {
		return models.Event{}, err
	}
	return models.Event{
		Position:    d.Position,
		EventID:     d.EventID,
		AggregateID: d.AggregateID,
		Version:     d.Version,
		EventType:   string(d.Type),
		Payload:     payload,
		OccurredAt:  d.OccurredAt,
	}, nil
}

// ToDomainStoredEvent converts an events row to a domain StoredEvent, decoding the payload
func ToDomainStoredEvent(m models.Event) (domain.StoredEvent, error) {
	evt, err := domain.DecodeEvent(domain.EventType(m.EventType), m.Payload)
	if err != nil {
		return domain.StoredEvent{}, err
	}
	return domain.StoredEvent{
		EventID:     m.EventID,
		AggregateID: m.AggregateID,
		Version:     m.Version,
		Position:    m.Position,
		Type:        domain.EventType(m.EventType),
		OccurredAt:  m.OccurredAt,
		Event:       evt,
	}, nil
}
