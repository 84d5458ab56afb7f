package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
)

// AnalyticsRepository keeps analytics records in process memory.
type AnalyticsRepository struct {
	mu      sync.RWMutex
	records map[string]domain.AccountAnalytics
}

// NewAnalyticsRepository creates an empty in-memory read model.
func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{records: make(map[string]domain.AccountAnalytics)}
}

var _ portsrepo.AnalyticsRepositoryFacade = (*AnalyticsRepository)(nil)

func (r *AnalyticsRepository) Create(ctx context.Context, record domain.AccountAnalytics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.AccountID]; ok {
		return fmt.Errorf("%w: analytics for account %s", apperrors.ErrDuplicate, record.AccountID)
	}
	r.records[record.AccountID] = record
	return nil
}

func (r *AnalyticsRepository) Update(ctx context.Context, record domain.AccountAnalytics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.AccountID]; !ok {
		return fmt.Errorf("%w: analytics for account %s", apperrors.ErrNotFound, record.AccountID)
	}
	r.records[record.AccountID] = record
	return nil
}

func (r *AnalyticsRepository) FindByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &record, nil
}

func (r *AnalyticsRepository) FindAll(ctx context.Context) ([]domain.AccountAnalytics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]domain.AccountAnalytics, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.AccountAnalytics) int {
		return strings.Compare(a.AccountID, b.AccountID)
	})
	return out, nil
}
