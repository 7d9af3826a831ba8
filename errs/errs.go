// Package errs defines the error taxonomy shared by every tokenledger
// component. Specific errors wrap one of the kind sentinels so callers can
// classify failures with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrValidation        = errors.New("tokenledger: validation failed")
	ErrPermissionDenied  = errors.New("tokenledger: permission denied")
	ErrInvalidState      = errors.New("tokenledger: invalid state")
	ErrInsufficientFunds = errors.New("tokenledger: insufficient funds")
	ErrReceiverRejected  = errors.New("tokenledger: receiver rejected transfer")
	ErrNotFound          = errors.New("tokenledger: not found")
	ErrStoreFailed       = errors.New("tokenledger: store failed")
)

// Specific errors.
var (
	// Ledger errors
	ErrAlreadyMinted      = fmt.Errorf("%w: token already minted", ErrInvalidState)
	ErrPaused             = fmt.Errorf("%w: paused", ErrInvalidState)
	ErrNotBurnable        = fmt.Errorf("%w: the token is not burnable", ErrInvalidState)
	ErrNonexistentToken   = fmt.Errorf("%w: nonexistent token", ErrNotFound)
	ErrInsufficientSupply = fmt.Errorf("%w: burn amount exceeds supply", ErrInsufficientFunds)
	ErrOverflow           = fmt.Errorf("%w: amount overflow", ErrValidation)
	ErrUnderflow          = fmt.Errorf("%w: amount underflow", ErrInsufficientFunds)

	// Allowance errors
	ErrInsufficientAllowance = fmt.Errorf("%w: insufficient allowance", ErrInsufficientFunds)
	ErrInsufficientBalance   = fmt.Errorf("%w: insufficient balance", ErrInsufficientFunds)

	// Vesting errors
	ErrNoRemainingUnlocks = fmt.Errorf("%w: no remaining unlock time", ErrInvalidState)
	ErrScheduleNotFound   = fmt.Errorf("%w: vesting schedule", ErrNotFound)

	// Snapshot errors
	ErrFutureQuery = fmt.Errorf("%w: query time is in the future", ErrValidation)

	// Asset errors
	ErrAssetNotFound     = fmt.Errorf("%w: asset", ErrNotFound)
	ErrConverterNotFound = fmt.Errorf("%w: converter", ErrNotFound)

	// Store errors
	ErrStoreNotReady     = fmt.Errorf("%w: store not ready", ErrStoreFailed)
	ErrTransactionFailed = fmt.Errorf("%w: transaction failed", ErrStoreFailed)
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("tokenledger: validation failed for %s: %s", e.Field, e.Message)
}

// Is reports ValidationError as an ErrValidation.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Denied returns a permission error naming the missing capability.
func Denied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// State returns a state-machine error describing the illegal transition.
func State(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "tokenledger: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("tokenledger: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error {
	return e.Errors
}

// IsValidation returns true if err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsPermission returns true if err is a missing role, approval or ownership.
func IsPermission(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// IsState returns true if err is an illegal state-machine transition.
func IsState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsInsufficientFunds returns true if err is a balance, allowance or escrow shortfall.
func IsInsufficientFunds(err error) bool { return errors.Is(err, ErrInsufficientFunds) }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
