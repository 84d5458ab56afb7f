package services

import (
	"log/slog"

	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/platform/config"
	"github.com/SscSPs/account_ledger/internal/realtime"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// notifier receives analytics updates; pass the registry itself for a single
// instance or a bus that forwards into it.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	registry *realtime.Registry,
	notifier portssvc.UpdateNotifier,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	if notifier == nil {
		notifier = registry
	}

	// The projector comes first since the dispatcher publishes into it
	projector := NewProjector(
		repos.AnalyticsRepo,
		WithEventPager(repos.EventStore),
		WithEventReader(repos.EventStore),
		WithUpdateNotifier(notifier),
		WithWorkers(cfg.ProjectorWorkers, cfg.ProjectorQueueSize),
		WithProjectorLogger(logger),
	)

	dispatcher := NewCommandDispatcher(
		repos.EventStore,
		WithEventPublisher(projector),
		WithCommandTimeout(cfg.CommandTimeout),
		WithCurrencyMatch(cfg.EnforceCurrencyMatch),
		WithDispatcherLogger(logger),
	)

	queries := NewQueryService(repos.AnalyticsRepo, registry)
	queries.Logger = logger

	return &portssvc.ServiceContainer{
		Commands:  dispatcher,
		Queries:   queries,
		Projector: projector,
	}
}
