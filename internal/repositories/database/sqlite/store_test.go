package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	require.NoError(t, database.MigrateSQLite(path, nil))

	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func opened(id, initial string) domain.AccountCreated {
	return domain.AccountCreated{AccountID: id, InitialBalance: decimal.RequireFromString(initial), Currency: "USD", Status: domain.StatusCreated}
}

func TestEventRepository_AppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	created, err := repo.Append(ctx, "a", 0, opened("a", "100.25"))
	require.NoError(t, err)
	credited, err := repo.Append(ctx, "a", 1, domain.AccountCredited{AccountID: "a", Amount: decimal.RequireFromString("0.10"), Currency: "USD"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, int64(2), credited.Version)
	assert.Less(t, created.Position, credited.Position)

	stream, err := repo.ReadAll(ctx, "a")
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, created.EventID, stream[0].EventID)
	assert.Equal(t, created.OccurredAt, stream[0].OccurredAt)
	assert.Equal(t, domain.EventTypeAccountCredited, stream[1].Type)

	state, err := domain.Replay(domain.Events(stream))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.35").Equal(state.Balance))
}

func TestEventRepository_VersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	_, err := repo.Append(ctx, "a", 0, opened("a", "1"))
	require.NoError(t, err)

	_, err = repo.Append(ctx, "a", 0, opened("a", "1"))
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	_, err = repo.Append(ctx, "a", 5, domain.AccountDebited{AccountID: "a", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
}

func TestEventRepository_ExistsAndReadFrom(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	ok, err := repo.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Append(ctx, id, 0, opened(id, "1"))
		require.NoError(t, err)
	}

	ok, err = repo.Exists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	page, err := repo.ReadFrom(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].AggregateID)
	assert.Equal(t, "b", page[1].AggregateID)

	page, err = repo.ReadFrom(ctx, page[1].Position, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].AggregateID)
}

func TestAnalyticsRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository(openTestDB(t))
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	_, err := repo.FindByID(ctx, "a")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	rec := domain.NewAccountAnalytics(opened("a", "100"), 1, at)
	require.NoError(t, repo.Create(ctx, rec))
	assert.ErrorIs(t, repo.Create(ctx, rec), apperrors.ErrDuplicate)

	rec = rec.WithCredit(decimal.RequireFromString("0.000001"), 2, at.Add(time.Minute))
	require.NoError(t, repo.Update(ctx, rec))

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.000001").Equal(got.Balance))
	assert.True(t, decimal.RequireFromString("0.000001").Equal(got.TotalCredit))
	assert.Equal(t, int64(1), got.TotalNumberOfCredits)
	assert.Equal(t, int64(2), got.LastEventVersion)
	assert.Equal(t, at, got.CreatedAt)
	assert.Equal(t, at.Add(time.Minute), got.LastUpdatedAt)

	err = repo.Update(ctx, domain.AccountAnalytics{AccountID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIsConstraintError(t *testing.T) {
	assert.False(t, isConstraintError(errors.New("random error")))
	assert.False(t, isConstraintError(nil))
}
