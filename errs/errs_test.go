package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/tokenledger/errs"
)

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"already minted is a state error", errs.ErrAlreadyMinted, errs.IsState},
		{"paused is a state error", errs.ErrPaused, errs.IsState},
		{"no remaining unlocks is a state error", errs.ErrNoRemainingUnlocks, errs.IsState},
		{"allowance is a funds error", errs.ErrInsufficientAllowance, errs.IsInsufficientFunds},
		{"future query is a validation error", errs.ErrFutureQuery, errs.IsValidation},
		{"validation struct", errs.Invalid("amount", "must be positive"), errs.IsValidation},
		{"denied", errs.Denied("missing role %s", "minter"), errs.IsPermission},
		{"wrapped not found", fmt.Errorf("load: %w", errs.ErrScheduleNotFound), errs.IsNotFound},
		{"retryable", errs.ErrStoreNotReady, errs.IsRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("classifier rejected %v", tt.err)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := errs.Invalid("beneficiary", "zero address")
	want := "tokenledger: validation failed for beneficiary: zero address"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	var ve errs.ValidationError
	if !errors.As(err, &ve) || ve.Field != "beneficiary" {
		t.Errorf("expected ValidationError for beneficiary, got %#v", err)
	}
}

func TestMultiError(t *testing.T) {
	var m errs.MultiError
	m.Add(nil)
	if m.HasErrors() {
		t.Fatal("nil error must not be collected")
	}

	m.Add(errs.ErrPaused)
	m.Add(errs.ErrInsufficientBalance)

	if m.First() != errs.ErrPaused {
		t.Errorf("First: got %v", m.First())
	}
	if m.Error() != "tokenledger: 2 errors occurred" {
		t.Errorf("Error: got %q", m.Error())
	}
	if !errors.Is(m, errs.ErrInsufficientFunds) {
		t.Error("expected MultiError to unwrap to its members")
	}
}
