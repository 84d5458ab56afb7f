package repositories

import (
	"context"

	"github.com/SscSPs/account_ledger/internal/core/domain"
)

// AnalyticsReader defines read operations for account analytics records
type AnalyticsReader interface {
	// FindByID returns apperrors.ErrNotFound when no record exists for accountID.
	FindByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error)

	// FindAll returns every record ordered by account id.
	FindAll(ctx context.Context) ([]domain.AccountAnalytics, error)
}

// AnalyticsWriter defines write operations for account analytics records
type AnalyticsWriter interface {
	// Create inserts a new record; apperrors.ErrDuplicate if one already exists.
	Create(ctx context.Context, record domain.AccountAnalytics) error

	// Update replaces an existing record; apperrors.ErrNotFound if it is missing.
	Update(ctx context.Context, record domain.AccountAnalytics) error
}

// AnalyticsRepositoryFacade combines all analytics repository interfaces
type AnalyticsRepositoryFacade interface {
	AnalyticsReader
	AnalyticsWriter
}
