package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/SscSPs/account_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const analyticsColumns = `account_id, currency, balance, total_credit, total_debit, total_number_of_credits, total_number_of_debits, last_event_version, created_at, last_updated_at`

// PgxAnalyticsRepository stores the account analytics read model.
type PgxAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// newPgxAnalyticsRepository creates a new repository for account analytics.
func newPgxAnalyticsRepository(pool *pgxpool.Pool) *PgxAnalyticsRepository {
	return &PgxAnalyticsRepository{pool: pool}
}

// Ensure PgxAnalyticsRepository implements portsrepo.AnalyticsRepositoryFacade
var _ portsrepo.AnalyticsRepositoryFacade = (*PgxAnalyticsRepository)(nil)

// Create inserts a new analytics record.
func (r *PgxAnalyticsRepository) Create(ctx context.Context, record domain.AccountAnalytics) error {
	m := mapping.ToModelAnalytics(record)
	query := `
		INSERT INTO account_analytics (` + analyticsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.Currency,
		m.Balance,
		m.TotalCredit,
		m.TotalDebit,
		m.TotalNumberOfCredits,
		m.TotalNumberOfDebits,
		m.LastEventVersion,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: analytics for account %s", apperrors.ErrDuplicate, m.AccountID)
		}
		return apperrors.NewStoreError("failed to save analytics for account "+m.AccountID, err)
	}
	return nil
}

// Update overwrites the mutable columns of an existing record.
func (r *PgxAnalyticsRepository) Update(ctx context.Context, record domain.AccountAnalytics) error {
	m := mapping.ToModelAnalytics(record)
	query := `
		UPDATE account_analytics
		SET balance = $2, total_credit = $3, total_debit = $4,
		    total_number_of_credits = $5, total_number_of_debits = $6,
		    last_event_version = $7, last_updated_at = $8
		WHERE account_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		m.AccountID,
		m.Balance,
		m.TotalCredit,
		m.TotalDebit,
		m.TotalNumberOfCredits,
		m.TotalNumberOfDebits,
		m.LastEventVersion,
		m.LastUpdatedAt,
	)
	if err != nil {
		return apperrors.NewStoreError("failed to update analytics for account "+m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: analytics for account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

// FindByID retrieves the record of one account.
func (r *PgxAnalyticsRepository) FindByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error) {
	query := `SELECT ` + analyticsColumns + ` FROM account_analytics WHERE account_id = $1;`

	m, err := scanAnalytics(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStoreError("failed to find analytics for account "+accountID, err)
	}
	record := mapping.ToDomainAnalytics(m)
	return &record, nil
}

// FindAll lists every record ordered by account id.
func (r *PgxAnalyticsRepository) FindAll(ctx context.Context) ([]domain.AccountAnalytics, error) {
	query := `SELECT ` + analyticsColumns + ` FROM account_analytics ORDER BY account_id;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to list analytics", err)
	}
	defer rows.Close()

	var ms []models.AccountAnalytics
	for rows.Next() {
		m, err := scanAnalytics(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("failed to scan analytics row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating analytics rows", err)
	}
	return mapping.ToDomainAnalyticsSlice(ms), nil
}

func scanAnalytics(row pgx.Row) (models.AccountAnalytics, error) {
	var m models.AccountAnalytics
	err := row.Scan(
		&m.AccountID,
		&m.Currency,
		&m.Balance,
		&m.TotalCredit,
		&m.TotalDebit,
		&m.TotalNumberOfCredits,
		&m.TotalNumberOfDebits,
		&m.LastEventVersion,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	m.CreatedAt = m.CreatedAt.UTC()
	m.LastUpdatedAt = m.LastUpdatedAt.UTC()
	return m, err
}
