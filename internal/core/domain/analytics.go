package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountAnalytics is the read-side record kept per account by the projector.
// Balance mirrors the aggregate; the totals and counters only ever grow.
type AccountAnalytics struct {
	AccountID            string          `json:"accountId"`
	Currency             string          `json:"currency"`
	Balance              decimal.Decimal `json:"balance"`
	TotalCredit          decimal.Decimal `json:"totalCredit"`
	TotalDebit           decimal.Decimal `json:"totalDebit"`
	TotalNumberOfCredits int64           `json:"totalNumberOfCredits"`
	TotalNumberOfDebits  int64           `json:"totalNumberOfDebits"`
	// LastEventVersion is the stream version of the last event applied to this record.
	LastEventVersion int64     `json:"lastEventVersion"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUpdatedAt    time.Time `json:"lastUpdatedAt"`
}

// NewAccountAnalytics starts a record from an AccountCreated event.
func NewAccountAnalytics(evt AccountCreated, version int64, at time.Time) AccountAnalytics {
	return AccountAnalytics{
		AccountID:        evt.AccountID,
		Currency:         evt.Currency,
		Balance:          evt.InitialBalance,
		TotalCredit:      decimal.Zero,
		TotalDebit:       decimal.Zero,
		LastEventVersion: version,
		CreatedAt:        at,
		LastUpdatedAt:    at,
	}
}

// Applied reports whether the event at version has already been folded into the record.
func (a AccountAnalytics) Applied(version int64) bool {
	return version <= a.LastEventVersion
}

// WithCredit returns a copy of the record with a credit applied.
func (a AccountAnalytics) WithCredit(amount decimal.Decimal, version int64, at time.Time) AccountAnalytics {
	a.Balance = a.Balance.Add(amount)
	a.TotalCredit = a.TotalCredit.Add(amount)
	a.TotalNumberOfCredits++
	a.LastEventVersion = version
	a.LastUpdatedAt = at
	return a
}

// WithDebit returns a copy of the record with a debit applied.
func (a AccountAnalytics) WithDebit(amount decimal.Decimal, version int64, at time.Time) AccountAnalytics {
	a.Balance = a.Balance.Sub(amount)
	a.TotalDebit = a.TotalDebit.Add(amount)
	a.TotalNumberOfDebits++
	a.LastEventVersion = version
	a.LastUpdatedAt = at
	return a
}
