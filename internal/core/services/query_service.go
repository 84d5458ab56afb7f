package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/realtime"
)

// QueryService answers reads from the analytics read model.
type QueryService struct {
	BaseService
	analytics portsrepo.AnalyticsReader
	registry  *realtime.Registry
}

// NewQueryService creates a query service; registry receives live subscriptions.
func NewQueryService(analytics portsrepo.AnalyticsReader, registry *realtime.Registry) *QueryService {
	return &QueryService{analytics: analytics, registry: registry}
}

var _ portssvc.AnalyticsQuerySvc = (*QueryService)(nil)

func (s *QueryService) GetAll(ctx context.Context) ([]domain.AccountAnalytics, error) {
	records, err := s.analytics.FindAll(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account analytics")
		return nil, err
	}
	return records, nil
}

// GetByID returns nil without an error when the account has no record.
func (s *QueryService) GetByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	record, err := s.analytics.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to get account analytics", slog.String("account_id", accountID))
		return nil, err
	}
	return record, nil
}

// SubscribeByID registers for updates before reading the current record, so
// no update between the two is lost. The first update may repeat the initial record.
func (s *QueryService) SubscribeByID(ctx context.Context, accountID string) (*realtime.Subscription, *domain.AccountAnalytics, error) {
	if accountID == "" {
		return nil, nil, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}

	sub := s.registry.Subscribe(ctx, realtime.ByAccountID(accountID))
	initial, err := s.GetByID(ctx, accountID)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}

	s.LogDebug(ctx, "Subscription opened",
		slog.String("account_id", accountID),
		slog.String("subscription_id", sub.ID()))
	return sub, initial, nil
}
