package services

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/internal/realtime"
)

// AnalyticsQuerySvc serves the read model
type AnalyticsQuerySvc interface {
	// GetAll returns every analytics record.
	GetAll(ctx context.Context) ([]domain.AccountAnalytics, error)

	// GetByID returns nil, nil when the account has no record yet.
	GetByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error)

	// SubscribeByID returns the current record (possibly nil) and a subscription
	// delivering every later update of that account. The subscription ends when
	// ctx is done or Close is called.
	SubscribeByID(ctx context.Context, accountID string) (*realtime.Subscription, *domain.AccountAnalytics, error)
}

// UpdateNotifier pushes an updated analytics record to interested subscribers.
type UpdateNotifier interface {
	Notify(ctx context.Context, record domain.AccountAnalytics) error
}
