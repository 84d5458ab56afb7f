package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
)

const (
	defaultProjectorWorkers   = 4
	defaultProjectorQueueSize = 256
	catchUpPageSize           = 200
)

var (
	errProjectorNotRunning = errors.New("projector is not running")
	errProjectorStopped    = errors.New("projector stopped")
)

// Projector folds appended events into the account analytics read model.
// Events are sharded by account id; each shard is drained by one worker, so
// events of one account are projected in the order they were published.
type Projector struct {
	BaseService
	analytics portsrepo.AnalyticsRepositoryFacade
	pager     portsrepo.EventPager
	streams   portsrepo.EventReader
	notifier  portssvc.UpdateNotifier
	workers   int
	queueSize int

	mu      sync.RWMutex
	shards  []chan domain.StoredEvent
	started bool
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
}

// ProjectorOption is a functional option for configuring the projector
type ProjectorOption func(*Projector)

// WithUpdateNotifier sets who is told about every changed record.
func WithUpdateNotifier(n portssvc.UpdateNotifier) ProjectorOption {
	return func(p *Projector) {
		p.notifier = n
	}
}

// WithEventPager enables CatchUp over the given log.
func WithEventPager(pager portsrepo.EventPager) ProjectorOption {
	return func(p *Projector) {
		p.pager = pager
	}
}

// WithEventReader lets the projector fill a version gap in one account's
// record from that account's stream instead of rejecting every later event.
func WithEventReader(streams portsrepo.EventReader) ProjectorOption {
	return func(p *Projector) {
		p.streams = streams
	}
}

// WithWorkers sets the number of shards and the queue depth of each.
func WithWorkers(workers, queueSize int) ProjectorOption {
	return func(p *Projector) {
		if workers > 0 {
			p.workers = workers
		}
		if queueSize > 0 {
			p.queueSize = queueSize
		}
	}
}

// WithProjectorLogger sets the fallback logger.
func WithProjectorLogger(logger *slog.Logger) ProjectorOption {
	return func(p *Projector) {
		p.Logger = logger
	}
}

// NewProjector creates a projector writing to analytics.
func NewProjector(analytics portsrepo.AnalyticsRepositoryFacade, options ...ProjectorOption) *Projector {
	p := &Projector{
		analytics: analytics,
		workers:   defaultProjectorWorkers,
		queueSize: defaultProjectorQueueSize,
		done:      make(chan struct{}),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

var _ portssvc.ProjectorSvc = (*Projector)(nil)

// Start launches the shard workers. Calling it again has no effect.
func (p *Projector) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.shards = make([]chan domain.StoredEvent, p.workers)
	for i := range p.shards {
		p.shards[i] = make(chan domain.StoredEvent, p.queueSize)
		p.wg.Add(1)
		go p.run(ctx, p.shards[i])
	}
	p.LogInfo(ctx, "Projector started", slog.Int("workers", p.workers), slog.Int("queue_size", p.queueSize))
}

// Stop refuses new events, lets the workers drain what is queued and waits for them.
func (p *Projector) Stop() {
	p.stop.Do(func() {
		close(p.done)

		p.mu.Lock()
		for _, ch := range p.shards {
			close(ch)
		}
		p.mu.Unlock()

		p.wg.Wait()
	})
}

// Publish queues evt on its account's shard, blocking while the shard is full.
func (p *Projector) Publish(ctx context.Context, evt domain.StoredEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.done:
		return errProjectorStopped
	default:
	}
	if !p.started {
		return errProjectorNotRunning
	}

	select {
	case p.shards[p.shardFor(evt.AggregateID)] <- evt:
		return nil
	case <-p.done:
		return errProjectorStopped
	case <-ctx.Done():
		return fmt.Errorf("queue event %s: %w", evt.EventID, ctx.Err())
	}
}

func (p *Projector) shardFor(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(p.shards)))
}

func (p *Projector) run(ctx context.Context, events <-chan domain.StoredEvent) {
	defer p.wg.Done()
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			p.projectLogged(ctx, evt)
		case <-ctx.Done():
			return
		}
	}
}

// projectLogged isolates failures: a bad event is logged and dropped.
func (p *Projector) projectLogged(ctx context.Context, evt domain.StoredEvent) {
	if err := p.Project(ctx, evt); err != nil {
		p.LogError(ctx, err, "Failed to project event",
			slog.String("event_id", evt.EventID),
			slog.String("account_id", evt.AggregateID),
			slog.String("event_type", string(evt.Type)),
			slog.Int64("version", evt.Version))
	}
}

// Project applies one stored event to the read model synchronously.
// Events at or below a record's LastEventVersion are skipped.
func (p *Projector) Project(ctx context.Context, evt domain.StoredEvent) error {
	if evt.Event == nil {
		return fmt.Errorf("%w: event %s has no payload", apperrors.ErrValidation, evt.EventID)
	}
	return evt.Event.Dispatch(&projection{ctx: ctx, p: p, stored: evt})
}

// CatchUp pages through the whole log and projects every event the read
// model has not seen yet. Failures of single events are logged, not returned.
func (p *Projector) CatchUp(ctx context.Context) error {
	if p.pager == nil {
		return errors.New("projector has no event pager")
	}

	var after, projected int64
	for {
		page, err := p.pager.ReadFrom(ctx, after, catchUpPageSize)
		if err != nil {
			return fmt.Errorf("catch-up after position %d: %w", after, err)
		}
		for _, evt := range page {
			p.projectLogged(ctx, evt)
			after = evt.Position
			projected++
		}
		if len(page) < catchUpPageSize {
			break
		}
	}

	p.LogInfo(ctx, "Projector catch-up finished", slog.Int64("events_seen", projected), slog.Int64("last_position", after))
	return nil
}

// projection applies one stored event; it is the read side's EventHandler.
type projection struct {
	ctx    context.Context
	p      *Projector
	stored domain.StoredEvent
}

func (h *projection) OnAccountCreated(evt domain.AccountCreated) error {
	existing, err := h.p.analytics.FindByID(h.ctx, evt.AccountID)
	switch {
	case err == nil:
		if existing.Applied(h.stored.Version) {
			return nil
		}
		return fmt.Errorf("%w: analytics for account %s", apperrors.ErrDuplicate, evt.AccountID)
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	record := domain.NewAccountAnalytics(evt, h.stored.Version, h.stored.OccurredAt)
	return h.p.analytics.Create(h.ctx, record)
}

func (h *projection) OnAccountCredited(evt domain.AccountCredited) error {
	return h.update(evt.AccountID, func(r domain.AccountAnalytics) domain.AccountAnalytics {
		return r.WithCredit(evt.Amount, h.stored.Version, h.stored.OccurredAt)
	})
}

func (h *projection) OnAccountDebited(evt domain.AccountDebited) error {
	return h.update(evt.AccountID, func(r domain.AccountAnalytics) domain.AccountAnalytics {
		return r.WithDebit(evt.Amount, h.stored.Version, h.stored.OccurredAt)
	})
}

func (h *projection) update(accountID string, apply func(domain.AccountAnalytics) domain.AccountAnalytics) error {
	record, err := h.p.analytics.FindByID(h.ctx, accountID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	var last int64
	if record != nil {
		if record.Applied(h.stored.Version) {
			return nil
		}
		last = record.LastEventVersion
	}
	if next := last + 1; h.stored.Version != next {
		record, err = h.p.fillGap(h.ctx, accountID, next, h.stored.Version)
		if err != nil {
			return err
		}
	}

	updated := apply(*record)
	if err := h.p.analytics.Update(h.ctx, updated); err != nil {
		return err
	}

	if h.p.notifier != nil {
		if err := h.p.notifier.Notify(h.ctx, updated); err != nil {
			h.p.LogError(h.ctx, err, "Failed to notify subscribers", slog.String("account_id", accountID))
		}
	}
	return nil
}

// fillGap projects versions [from, to) of one stream, read back from the event
// log, and returns the record as it stands right before version to.
func (p *Projector) fillGap(ctx context.Context, accountID string, from, to int64) (*domain.AccountAnalytics, error) {
	if p.streams == nil {
		if from == 1 {
			return nil, fmt.Errorf("%w: no analytics record for account %s", apperrors.ErrProjectionIntegrity, accountID)
		}
		return nil, fmt.Errorf("%w: account %s expected version %d, got %d", apperrors.ErrProjectionIntegrity, accountID, from, to)
	}

	history, err := p.streams.ReadAll(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("read stream %s to fill versions %d-%d: %w", accountID, from, to-1, err)
	}
	for _, evt := range history {
		if evt.Version < from || evt.Version >= to {
			continue
		}
		if err := p.Project(ctx, evt); err != nil {
			return nil, fmt.Errorf("fill version %d of account %s: %w", evt.Version, accountID, err)
		}
	}

	record, err := p.analytics.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no analytics record for account %s", apperrors.ErrProjectionIntegrity, accountID)
		}
		return nil, err
	}
	if record.LastEventVersion != to-1 {
		return nil, fmt.Errorf("%w: account %s stream ends at version %d, expected %d", apperrors.ErrProjectionIntegrity, accountID, record.LastEventVersion, to-1)
	}

	p.LogInfo(ctx, "Filled projection gap from the event log",
		slog.String("account_id", accountID),
		slog.Int64("from_version", from),
		slog.Int64("to_version", to-1))
	return record, nil
}

var _ domain.EventHandler = (*projection)(nil)
