package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCommandTimeout = 5 * time.Second

// CommandDispatcher runs commands against account aggregates.
// Commands addressing the same account run one at a time; different accounts
// proceed in parallel.
type CommandDispatcher struct {
	BaseService
	events       portsrepo.EventStoreFacade
	publisher    portssvc.EventPublisher
	validate     *validator.Validate
	locks        *keyedLock
	timeout      time.Duration
	handleOpts   []domain.HandleOption
	newAccountID func() string
}

// CommandDispatcherOption is a functional option for configuring the dispatcher
type CommandDispatcherOption func(*CommandDispatcher)

// WithEventPublisher sets where appended events are handed for projection.
func WithEventPublisher(p portssvc.EventPublisher) CommandDispatcherOption {
	return func(d *CommandDispatcher) {
		d.publisher = p
	}
}

// WithCommandTimeout bounds how long one command may take, lock wait included.
func WithCommandTimeout(timeout time.Duration) CommandDispatcherOption {
	return func(d *CommandDispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithCurrencyMatch makes credits and debits in a foreign currency fail.
func WithCurrencyMatch(enforce bool) CommandDispatcherOption {
	return func(d *CommandDispatcher) {
		if enforce {
			d.handleOpts = append(d.handleOpts, domain.WithCurrencyEnforcement())
		}
	}
}

// WithAccountIDGenerator replaces the uuid generator used by CreateAccount.
func WithAccountIDGenerator(gen func() string) CommandDispatcherOption {
	return func(d *CommandDispatcher) {
		d.newAccountID = gen
	}
}

// WithDispatcherLogger sets the fallback logger.
func WithDispatcherLogger(logger *slog.Logger) CommandDispatcherOption {
	return func(d *CommandDispatcher) {
		d.Logger = logger
	}
}

// NewCommandDispatcher creates a dispatcher over the given event log.
func NewCommandDispatcher(events portsrepo.EventStoreFacade, options ...CommandDispatcherOption) *CommandDispatcher {
	d := &CommandDispatcher{
		events:       events,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		locks:        newKeyedLock(),
		timeout:      defaultCommandTimeout,
		newAccountID: uuid.NewString,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

var _ portssvc.AccountCommandSvcFacade = (*CommandDispatcher)(nil)

// Dispatch loads the account, lets the aggregate decide, appends the resulting
// event and hands it to the publisher.
func (d *CommandDispatcher) Dispatch(ctx context.Context, cmd domain.Command) (*domain.DispatchResult, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: command is required", apperrors.ErrValidation)
	}
	if err := d.validate.StructCtx(ctx, cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	accountID := cmd.TargetAccountID()
	logger := d.GetLogger(ctx).With(
		slog.String("account_id", accountID),
		slog.String("command", fmt.Sprintf("%T", cmd)),
	)

	unlock, err := d.locks.Lock(ctx, accountID)
	if err != nil {
		logger.Warn("Gave up waiting for account lock", slog.String("error", err.Error()))
		return nil, fmt.Errorf("waiting for account %s: %w", accountID, err)
	}
	defer unlock()

	history, err := d.events.ReadAll(ctx, accountID)
	if err != nil {
		logger.Error("Failed to load account history", slog.String("error", err.Error()))
		return nil, err
	}

	state, err := domain.Replay(domain.Events(history))
	if err != nil {
		logger.Error("Account history cannot be replayed", slog.String("error", err.Error()))
		return nil, err
	}

	evt, err := domain.Handle(state, cmd, d.handleOpts...)
	if err != nil {
		logger.Debug("Command rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	stored, err := d.events.Append(ctx, accountID, int64(len(history)), evt)
	if err != nil {
		logger.Error("Failed to append event", slog.String("error", err.Error()))
		return nil, err
	}

	// Still holding the account lock, so events of one account reach the
	// publisher in append order.
	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, stored); err != nil {
			logger.Error("Appended event was not published; projector catch-up will replay it",
				slog.String("error", err.Error()),
				slog.String("event_id", stored.EventID))
		}
	}

	logger.Info("Command applied",
		slog.String("event_type", string(stored.Type)),
		slog.Int64("version", stored.Version))

	return &domain.DispatchResult{
		AccountID: accountID,
		EventID:   stored.EventID,
		Version:   stored.Version,
	}, nil
}

// CreateAccount opens an account under a newly generated id.
func (d *CommandDispatcher) CreateAccount(ctx context.Context, initialBalance decimal.Decimal, currency string) (*domain.DispatchResult, error) {
	return d.Dispatch(ctx, domain.AddAccount{
		AccountID:      d.newAccountID(),
		InitialBalance: initialBalance,
		Currency:       currency,
	})
}

func (d *CommandDispatcher) CreditAccount(ctx context.Context, accountID string, amount decimal.Decimal, currency string) (*domain.DispatchResult, error) {
	return d.Dispatch(ctx, domain.CreditAccount{AccountID: accountID, Amount: amount, Currency: currency})
}

func (d *CommandDispatcher) DebitAccount(ctx context.Context, accountID string, amount decimal.Decimal, currency string) (*domain.DispatchResult, error) {
	return d.Dispatch(ctx, domain.DebitAccount{AccountID: accountID, Amount: amount, Currency: currency})
}

// LoadAccount rebuilds the current state of an account from its events.
func (d *CommandDispatcher) LoadAccount(ctx context.Context, accountID string) (*domain.AccountState, error) {
	history, err := d.History(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return domain.Replay(domain.Events(history))
}

// History returns the stored events of an account.
func (d *CommandDispatcher) History(ctx context.Context, accountID string) ([]domain.StoredEvent, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	history, err := d.events.ReadAll(ctx, accountID)
	if err != nil {
		d.LogError(ctx, err, "Failed to read account history", slog.String("account_id", accountID))
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return history, nil
}
