package mapping

import (
	"github.com/SscSPs/account_ledger/internal/core/domain"
	"github.com/SscSPs/account_ledger/internal/models"
)

// ToModelAnalytics converts a domain AccountAnalytics to a model AccountAnalytics
func ToModelAnalytics(d domain.AccountAnalytics) models.AccountAnalytics {
	return models.AccountAnalytics{
		AccountID:            d.AccountID,
		Currency:             d.Currency,
		Balance:              d.Balance,
		TotalCredit:          d.TotalCredit,
		TotalDebit:           d.TotalDebit,
		TotalNumberOfCredits: d.TotalNumberOfCredits,
		TotalNumberOfDebits:  d.TotalNumberOfDebits,
		LastEventVersion:     d.LastEventVersion,
		CreatedAt:            d.CreatedAt,
		LastUpdatedAt:        d.LastUpdatedAt,
	}
}

// ToDomainAnalytics converts a model AccountAnalytics to a domain AccountAnalytics
func ToDomainAnalytics(m models.AccountAnalytics) domain.AccountAnalytics {
	return domain.AccountAnalytics{
		AccountID:            m.AccountID,
		Currency:             m.Currency,
		Balance:              m.Balance,
		TotalCredit:          m.TotalCredit,
		TotalDebit:           m.TotalDebit,
		TotalNumberOfCredits: m.TotalNumberOfCredits,
		TotalNumberOfDebits:  m.TotalNumberOfDebits,
		LastEventVersion:     m.LastEventVersion,
		CreatedAt:            m.CreatedAt,
		LastUpdatedAt:        m.LastUpdatedAt,
	}
}

// ToDomainAnalyticsSlice converts a slice of model records to a slice of domain records
func ToDomainAnalyticsSlice(ms []models.AccountAnalytics) []domain.AccountAnalytics {
	ds := make([]domain.AccountAnalytics, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAnalytics(m)
	}
	return ds
}
