package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeEvent serializes an event payload for storage.
func EncodeEvent(evt Event) ([]byte, error) {
	if evt == nil {
		return nil, fmt.Errorf("event is required")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", evt.EventType(), err)
	}
	return payload, nil
}

// DecodeEvent rebuilds an event from its stored type and payload.
func DecodeEvent(eventType EventType, payload []byte) (Event, error) {
	switch eventType {
	case EventTypeAccountCreated:
		var evt AccountCreated
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		return evt, nil
	case EventTypeAccountCredited:
		var evt AccountCredited
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		return evt, nil
	case EventTypeAccountDebited:
		var evt AccountDebited
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
		}
		return evt, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}
