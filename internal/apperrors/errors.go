package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientBalance indicates a debit larger than the account's current balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrCurrencyMismatch indicates a command currency that differs from the account currency.
// Only raised when currency enforcement is switched on.
var ErrCurrencyMismatch = errors.New("command currency does not match account currency")

// ErrConcurrencyConflict indicates that an append lost a race against another writer of the same stream.
var ErrConcurrencyConflict = errors.New("concurrent modification of account stream")

// ErrProjectionIntegrity indicates the read side received an update for a record it never saw created.
var ErrProjectionIntegrity = errors.New("projection integrity violation")

// ErrCorruptHistory indicates an event stream that cannot be folded into a valid account.
var ErrCorruptHistory = errors.New("corrupt event history")

// ErrStore indicates that the event log or the analytics store could not be reached.
var ErrStore = errors.New("store unavailable")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStoreError wraps a persistence failure so that errors.Is(err, ErrStore) holds.
func NewStoreError(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, fmt.Errorf("%w: %w", ErrStore, err))
}
