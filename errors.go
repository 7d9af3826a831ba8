package tokenledger

import "github.com/xraph/tokenledger/errs"

// Sentinel errors re-exported from the errs package.
var (
	// Error kinds
	ErrValidation        = errs.ErrValidation
	ErrPermissionDenied  = errs.ErrPermissionDenied
	ErrInvalidState      = errs.ErrInvalidState
	ErrInsufficientFunds = errs.ErrInsufficientFunds
	ErrReceiverRejected  = errs.ErrReceiverRejected
	ErrNotFound          = errs.ErrNotFound
	ErrStoreFailed       = errs.ErrStoreFailed

	// Ledger errors
	ErrAlreadyMinted      = errs.ErrAlreadyMinted
	ErrPaused             = errs.ErrPaused
	ErrNotBurnable        = errs.ErrNotBurnable
	ErrNonexistentToken   = errs.ErrNonexistentToken
	ErrInsufficientSupply = errs.ErrInsufficientSupply
	ErrOverflow           = errs.ErrOverflow
	ErrUnderflow          = errs.ErrUnderflow

	// Allowance errors
	ErrInsufficientAllowance = errs.ErrInsufficientAllowance
	ErrInsufficientBalance   = errs.ErrInsufficientBalance

	// Vesting errors
	ErrNoRemainingUnlocks = errs.ErrNoRemainingUnlocks
	ErrScheduleNotFound   = errs.ErrScheduleNotFound

	// Snapshot errors
	ErrFutureQuery = errs.ErrFutureQuery

	// Asset errors
	ErrAssetNotFound     = errs.ErrAssetNotFound
	ErrConverterNotFound = errs.ErrConverterNotFound

	// Store errors
	ErrStoreNotReady     = errs.ErrStoreNotReady
	ErrTransactionFailed = errs.ErrTransactionFailed
)

// ValidationError represents a validation failure with details.
type ValidationError = errs.ValidationError

// MultiError represents multiple errors that occurred.
type MultiError = errs.MultiError

// Error classifiers.
var (
	IsValidation        = errs.IsValidation
	IsPermission        = errs.IsPermission
	IsState             = errs.IsState
	IsInsufficientFunds = errs.IsInsufficientFunds
	IsNotFound          = errs.IsNotFound
	IsRetryable         = errs.IsRetryable
)
