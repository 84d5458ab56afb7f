package domain

import (
	"github.com/shopspring/decimal"
)

// Command is a request to change an account. The set of implementations is closed.
type Command interface {
	// TargetAccountID names the account stream the command addresses.
	TargetAccountID() string
	isCommand()
}

// AddAccount opens a new account.
type AddAccount struct {
	AccountID      string `validate:"required"`
	InitialBalance decimal.Decimal
	Currency       string
}

// CreditAccount adds money to an existing account.
type CreditAccount struct {
	AccountID string `validate:"required"`
	Amount    decimal.Decimal
	Currency  string
}

// DebitAccount takes money from an existing account.
type DebitAccount struct {
	AccountID string `validate:"required"`
	Amount    decimal.Decimal
	Currency  string
}

func (c AddAccount) TargetAccountID() string { return c.AccountID }
func (AddAccount) isCommand() {}

func (c CreditAccount) TargetAccountID() string { return c.AccountID }
func (CreditAccount) isCommand() {}

func (c DebitAccount) TargetAccountID() string { return c.AccountID }
func (DebitAccount) isCommand() {}

// DispatchResult identifies the event a successful command appended.
type DispatchResult struct {
	AccountID string `json:"accountId"`
	EventID   string `json:"eventId"`
	Version   int64  `json:"version"`
}
