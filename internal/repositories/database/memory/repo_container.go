package memory

import (
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the in-memory stores. Nothing survives a restart.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EventStore:    NewEventRepository(),
		AnalyticsRepo: NewAnalyticsRepository(),
	}
}
