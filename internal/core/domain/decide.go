package domain

import (
	"fmt"

	"github.com/SscSPs/account_ledger/internal/apperrors"
)

type handleOptions struct {
	enforceCurrency bool
}

// HandleOption tunes command validation.
type HandleOption func(*handleOptions)

// WithCurrencyEnforcement rejects credits and debits whose currency differs from
// the account currency. Without it such commands are accepted as-is.
func WithCurrencyEnforcement() HandleOption {
	return func(o *handleOptions) {
		o.enforceCurrency = true
	}
}

// Handle validates cmd against the current state and returns the single event
// it produces. state is nil when the account has no history yet.
func Handle(state *AccountState, cmd Command, opts ...HandleOption) (Event, error) {
	var o handleOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch c := cmd.(type) {
	case AddAccount:
		return handleAddAccount(state, c)
	case CreditAccount:
		return handleCreditAccount(state, c, o)
	case DebitAccount:
		return handleDebitAccount(state, c, o)
	default:
		return nil, fmt.Errorf("%w: unsupported command %T", apperrors.ErrValidation, cmd)
	}
}

func handleAddAccount(state *AccountState, cmd AddAccount) (Event, error) {
	if state != nil {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, cmd.AccountID)
	}
	if cmd.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", apperrors.ErrValidation)
	}
	return AccountCreated{
		AccountID:      cmd.AccountID,
		InitialBalance: cmd.InitialBalance,
		Currency:       cmd.Currency,
		Status:         StatusCreated,
	}, nil
}

func handleCreditAccount(state *AccountState, cmd CreditAccount, o handleOptions) (Event, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, cmd.AccountID)
	}
	if cmd.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount to credit cannot be negative", apperrors.ErrValidation)
	}
	if err := checkCurrency(state, cmd.Currency, o); err != nil {
		return nil, err
	}
	return AccountCredited{
		AccountID: state.ID,
		Amount:    cmd.Amount,
		Currency:  cmd.Currency,
	}, nil
}

func handleDebitAccount(state *AccountState, cmd DebitAccount, o handleOptions) (Event, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, cmd.AccountID)
	}
	if cmd.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount to debit cannot be negative", apperrors.ErrValidation)
	}
	if err := checkCurrency(state, cmd.Currency, o); err != nil {
		return nil, err
	}
	if state.Balance.LessThan(cmd.Amount) {
		return nil, fmt.Errorf("%w: balance is %s, debit is %s", apperrors.ErrInsufficientBalance, state.Balance.String(), cmd.Amount.String())
	}
	return AccountDebited{
		AccountID: state.ID,
		Amount:    cmd.Amount,
		Currency:  cmd.Currency,
	}, nil
}

func checkCurrency(state *AccountState, currency string, o handleOptions) error {
	if !o.enforceCurrency || currency == state.Currency {
		return nil
	}
	return fmt.Errorf("%w: account %s is in %s, command is in %s", apperrors.ErrCurrencyMismatch, state.ID, state.Currency, currency)
}
