package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountAnalytics is one row of the account_analytics read model table.
type AccountAnalytics struct {
	AccountID            string          `db:"account_id"`
	Currency             string          `db:"currency"`
	Balance              decimal.Decimal `db:"balance"`
	TotalCredit          decimal.Decimal `db:"total_credit"`
	TotalDebit           decimal.Decimal `db:"total_debit"`
	TotalNumberOfCredits int64           `db:"total_number_of_credits"`
	TotalNumberOfDebits  int64           `db:"total_number_of_debits"`
	LastEventVersion     int64           `db:"last_event_version"`
	CreatedAt            time.Time       `db:"created_at"`
	LastUpdatedAt        time.Time       `db:"last_updated_at"`
}
