package mapping

import (
	"testing"

	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestToDomainStoredEvent_RejectsUnknownType(t *testing.T) {
	_, err := ToDomainStoredEvent(models.Event{EventType: "account.frozen", Payload: []byte(`{}`)})
	assert.Error(t, err)
}

func TestToDomainStoredEvent_RejectsBadPayload(t *testing.T) {
	_, err := ToDomainStoredEvent(models.Event{EventType: "account.credited", Payload: []byte(`not json`)})
	assert.Error(t, err)
}
