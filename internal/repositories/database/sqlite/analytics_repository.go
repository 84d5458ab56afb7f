package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/account_ledger/internal/models"
	"github.com/SscSPs/account_ledger/internal/utils/mapping"
)

const analyticsColumns = `account_id, currency, balance, total_credit, total_debit, total_number_of_credits, total_number_of_debits, last_event_version, created_at, last_updated_at`

// AnalyticsRepository stores the account analytics read model.
// Decimals are kept as TEXT so no precision is lost.
type AnalyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates an analytics store over db.
func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

var _ portsrepo.AnalyticsRepositoryFacade = (*AnalyticsRepository)(nil)

func (r *AnalyticsRepository) Create(ctx context.Context, record domain.AccountAnalytics) error {
	m := mapping.ToModelAnalytics(record)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO account_analytics (`+analyticsColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AccountID, m.Currency, m.Balance.String(), m.TotalCredit.String(), m.TotalDebit.String(),
		m.TotalNumberOfCredits, m.TotalNumberOfDebits, m.LastEventVersion,
		toMillis(m.CreatedAt), toMillis(m.LastUpdatedAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: analytics for account %s", apperrors.ErrDuplicate, m.AccountID)
		}
		return apperrors.NewStoreError("save analytics for account "+m.AccountID, err)
	}
	return nil
}

func (r *AnalyticsRepository) Update(ctx context.Context, record domain.AccountAnalytics) error {
	m := mapping.ToModelAnalytics(record)
	res, err := r.db.ExecContext(ctx, `
		UPDATE account_analytics
		SET balance = ?, total_credit = ?, total_debit = ?,
		    total_number_of_credits = ?, total_number_of_debits = ?,
		    last_event_version = ?, last_updated_at = ?
		WHERE account_id = ?`,
		m.Balance.String(), m.TotalCredit.String(), m.TotalDebit.String(),
		m.TotalNumberOfCredits, m.TotalNumberOfDebits,
		m.LastEventVersion, toMillis(m.LastUpdatedAt), m.AccountID,
	)
	if err != nil {
		return apperrors.NewStoreError("update analytics for account "+m.AccountID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError("update analytics for account "+m.AccountID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: analytics for account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

func (r *AnalyticsRepository) FindByID(ctx context.Context, accountID string) (*domain.AccountAnalytics, error) {
	m, err := scanAnalytics(r.db.QueryRowContext(ctx, `SELECT `+analyticsColumns+` FROM account_analytics WHERE account_id = ?`, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStoreError("find analytics for account "+accountID, err)
	}
	record := mapping.ToDomainAnalytics(m)
	return &record, nil
}

func (r *AnalyticsRepository) FindAll(ctx context.Context) ([]domain.AccountAnalytics, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+analyticsColumns+` FROM account_analytics ORDER BY account_id`)
	if err != nil {
		return nil, apperrors.NewStoreError("list analytics", err)
	}
	defer rows.Close()

	var ms []models.AccountAnalytics
	for rows.Next() {
		m, err := scanAnalytics(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan analytics row", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate analytics rows", err)
	}
	return mapping.ToDomainAnalyticsSlice(ms), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalytics(row rowScanner) (models.AccountAnalytics, error) {
	var (
		m                      models.AccountAnalytics
		createdAt, lastUpdated int64
	)
	err := row.Scan(
		&m.AccountID,
		&m.Currency,
		&m.Balance,
		&m.TotalCredit,
		&m.TotalDebit,
		&m.TotalNumberOfCredits,
		&m.TotalNumberOfDebits,
		&m.LastEventVersion,
		&createdAt,
		&lastUpdated,
	)
	if err != nil {
		return models.AccountAnalytics{}, err
	}
	m.CreatedAt = fromMillis(createdAt)
	m.LastUpdatedAt = fromMillis(lastUpdated)
	return m, nil
}
