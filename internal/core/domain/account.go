package domain

import (
	"fmt"

	"github.com/SscSPs/account_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle flag of an account.
type AccountStatus string

const (
	// StatusCreated is assigned when the account is opened and never changes afterwards.
	StatusCreated AccountStatus = "CREATED"
)

// AccountState is the write-side view of an account, derived purely from its events.
type AccountState struct {
	ID       string          `json:"accountId"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	Status   AccountStatus   `json:"status"`
	// Version is the number of events folded into this state.
	Version int64 `json:"version"`
}

// Apply folds one event into state and returns the new state.
// The input is never modified.
func Apply(state AccountState, evt Event) AccountState {
	f := stateFolder{state: state}
	// stateFolder handles every variant and never fails.
	if err := evt.Dispatch(&f); err != nil {
		panic(fmt.Sprintf("fold %s into account %s: %v", evt.EventType(), evt.AggregateID(), err))
	}
	f.state.Version++
	return f.state
}

// Replay rebuilds the state of an account from its full history.
// An empty history yields a nil state.
func Replay(events []Event) (*AccountState, error) {
	if len(events) == 0 {
		return nil, nil
	}
	first, ok := events[0].(AccountCreated)
	if !ok {
		return nil, fmt.Errorf("%w: stream %s starts with %s", apperrors.ErrCorruptHistory, events[0].AggregateID(), events[0].EventType())
	}

	var state AccountState
	for i, evt := range events {
		if evt.AggregateID() != first.AccountID {
			return nil, fmt.Errorf("%w: event %d belongs to %s, not %s", apperrors.ErrCorruptHistory, i+1, evt.AggregateID(), first.AccountID)
		}
		if _, created := evt.(AccountCreated); created && i > 0 {
			return nil, fmt.Errorf("%w: stream %s created twice", apperrors.ErrCorruptHistory, first.AccountID)
		}
		state = Apply(state, evt)
	}
	return &state, nil
}

type stateFolder struct {
	state AccountState
}

func (f *stateFolder) OnAccountCreated(evt AccountCreated) error {
	f.state.ID = evt.AccountID
	f.state.Balance = evt.InitialBalance
	f.state.Currency = evt.Currency
	f.state.Status = evt.Status
	return nil
}

func (f *stateFolder) OnAccountCredited(evt AccountCredited) error {
	f.state.Balance = f.state.Balance.Add(evt.Amount)
	return nil
}

func (f *stateFolder) OnAccountDebited(evt AccountDebited) error {
	f.state.Balance = f.state.Balance.Sub(evt.Amount)
	return nil
}

var _ EventHandler = (*stateFolder)(nil)
