package bus

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
)

// Bus carries analytics updates between service instances.
type Bus interface {
	Publish(ctx context.Context, record domain.AccountAnalytics) error
	StartForwarder(ctx context.Context, onRecord func(record domain.AccountAnalytics)) error
	Close() error
}
