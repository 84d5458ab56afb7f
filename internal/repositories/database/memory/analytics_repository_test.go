package memory

import (
	"context"
	"testing"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository()

	_, err := repo.FindByID(ctx, "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	rec := domain.AccountAnalytics{AccountID: "a", Balance: decimal.NewFromInt(10), LastEventVersion: 1}
	require.NoError(t, repo.Create(ctx, rec))
	assert.ErrorIs(t, repo.Create(ctx, rec), apperrors.ErrDuplicate)

	rec.Balance = decimal.NewFromInt(15)
	rec.LastEventVersion = 2
	require.NoError(t, repo.Update(ctx, rec))

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(got.Balance))
	assert.Equal(t, int64(2), got.LastEventVersion)

	assert.ErrorIs(t, repo.Update(ctx, domain.AccountAnalytics{AccountID: "missing"}), apperrors.ErrNotFound)
}

func TestAnalyticsRepository_FindAllSortedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, domain.AccountAnalytics{AccountID: id}))
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].AccountID, all[1].AccountID, all[2].AccountID})
}
