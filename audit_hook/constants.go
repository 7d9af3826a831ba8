package audithook

import "github.com/xraph/tokenledger/event"

// Action constants for audit events. Committed events use their event type
// as the action.
const (
	// Token actions
	ActionTransferSingle = event.TypeTransferSingle
	ActionTransferBatch  = event.TypeTransferBatch
	ActionApprovalForAll = event.TypeApprovalForAll
	ActionURI            = event.TypeURI

	// Access actions
	ActionRoleGranted  = event.TypeRoleGranted
	ActionRoleRevoked  = event.TypeRoleRevoked
	ActionMintApproval = event.TypeMintApproval
	ActionBurnApproval = event.TypeBurnApproval
	ActionOwnership    = event.TypeOwnership
	ActionPaused       = event.TypePaused
	ActionUnpaused     = event.TypeUnpaused

	// Payment asset actions
	ActionAssetTransfer = event.TypeAssetTransfer
	ActionAssetApproval = event.TypeAssetApproval
	ActionAssetMinter   = event.TypeAssetMinter

	// Vesting actions
	ActionVestingCreated  = event.TypeVestingCreated
	ActionVestingPrepared = event.TypeVestingPrepared
	ActionVestingStarted  = event.TypeVestingStarted
	ActionVestingClaimed  = event.TypeVestingClaimed
	ActionVestingRevoked  = event.TypeVestingRevoked
	ActionBeneficiary     = event.TypeBeneficiary
	ActionScheduleOwner   = event.TypeScheduleOwner

	// Converter actions
	ActionConverterMinted = event.TypeConverterMinted
	ActionVestingSwept    = event.TypeVestingSwept

	// Transaction actions
	ActionTxReverted = "tx.reverted"
)

// Resource constants for audit events.
const (
	ResourceToken       = "token"
	ResourceAccess      = "access"
	ResourceAsset       = "asset"
	ResourceVesting     = "vesting"
	ResourceConverter   = "converter"
	ResourceTransaction = "transaction"
)

// Category constants for audit events.
const (
	CategoryLedger     = "ledger"
	CategoryAccess     = "access"
	CategoryPayment    = "payment"
	CategoryVesting    = "vesting"
	CategoryConversion = "conversion"
	CategoryTx         = "transaction"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// categories maps a resource to its audit category.
var categories = map[string]string{
	ResourceToken:       CategoryLedger,
	ResourceAccess:      CategoryAccess,
	ResourceAsset:       CategoryPayment,
	ResourceVesting:     CategoryVesting,
	ResourceConverter:   CategoryConversion,
	ResourceTransaction: CategoryTx,
}

// warnings lists actions that take something away from an account.
var warnings = map[string]bool{
	ActionRoleRevoked:    true,
	ActionOwnership:      true,
	ActionPaused:         true,
	ActionVestingRevoked: true,
	ActionScheduleOwner:  true,
}
