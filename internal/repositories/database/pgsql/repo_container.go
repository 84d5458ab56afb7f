package pgsql

import (
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EventStore:    newPgxEventRepository(dbPool),
		AnalyticsRepo: newPgxAnalyticsRepository(dbPool),
	}
}
