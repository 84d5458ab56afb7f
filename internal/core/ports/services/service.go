package services

import (
	"context"
)

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Commands  AccountCommandSvcFacade
	Queries   AnalyticsQuerySvc
	Projector ProjectorSvc
}

// ProjectorSvc keeps the read model in step with the event log.
type ProjectorSvc interface {
	EventPublisher

	// Start launches the projection workers; they stop when ctx is done or Stop is called.
	Start(ctx context.Context)

	// Stop drains queued events and waits for the workers to exit.
	Stop()

	// CatchUp projects, synchronously, every logged event the read model may have missed.
	CatchUp(ctx context.Context) error
}
