package services

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountCommandSvc defines the write side entry points
type AccountCommandSvc interface {
	// Dispatch runs one command against its account and returns the appended event's identity.
	Dispatch(ctx context.Context, cmd domain.Command) (*domain.DispatchResult, error)

	// CreateAccount opens an account under a freshly generated id.
	CreateAccount(ctx context.Context, initialBalance decimal.Decimal, currency string) (*domain.DispatchResult, error)

	// CreditAccount adds amount to an existing account.
	CreditAccount(ctx context.Context, accountID string, amount decimal.Decimal, currency string) (*domain.DispatchResult, error)

	// DebitAccount takes amount from an existing account.
	DebitAccount(ctx context.Context, accountID string, amount decimal.Decimal, currency string) (*domain.DispatchResult, error)
}

// AccountLoaderSvc exposes the aggregate as rebuilt from its history
type AccountLoaderSvc interface {
	// LoadAccount replays the stream; apperrors.ErrNotFound for an unknown account.
	LoadAccount(ctx context.Context, accountID string) (*domain.AccountState, error)

	// History returns the stored events of one account in append order;
	// apperrors.ErrNotFound for an unknown account.
	History(ctx context.Context, accountID string) ([]domain.StoredEvent, error)
}

// AccountCommandSvcFacade combines all command-side service interfaces
type AccountCommandSvcFacade interface {
	AccountCommandSvc
	AccountLoaderSvc
}

// EventPublisher receives events after they are durably appended.
type EventPublisher interface {
	Publish(ctx context.Context, evt domain.StoredEvent) error
}
