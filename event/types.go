package event

import (
	"strconv"
	"strings"

	"github.com/xraph/tokenledger/types"
)

// Event types.
const (
	TypeTransferSingle  = "token.transfer_single"
	TypeTransferBatch   = "token.transfer_batch"
	TypeApprovalForAll  = "token.approval_for_all"
	TypeURI             = "token.uri"
	TypeRoleGranted     = "access.role_granted"
	TypeRoleRevoked     = "access.role_revoked"
	TypeMintApproval    = "access.mint_approval"
	TypeBurnApproval    = "access.burn_approval"
	TypeOwnership       = "access.ownership_transferred"
	TypePaused          = "access.paused"
	TypeUnpaused        = "access.unpaused"
	TypeAssetTransfer   = "asset.transfer"
	TypeAssetApproval   = "asset.approval"
	TypeAssetMinter     = "asset.minter"
	TypeVestingCreated  = "vesting.created"
	TypeVestingPrepared = "vesting.prepared"
	TypeVestingStarted  = "vesting.started"
	TypeVestingClaimed  = "vesting.claimed"
	TypeVestingRevoked  = "vesting.revoked"
	TypeBeneficiary     = "vesting.beneficiary_changed"
	TypeScheduleOwner   = "vesting.ownership_transferred"
	TypeConverterMinted = "converter.minted"
	TypeVestingSwept    = "converter.vesting_claimed"
)

// ──────────────────────────────────────────────────
// Token ledger
// ──────────────────────────────────────────────────

// TransferSingle records a single-id balance movement. A zero From is a
// mint; a zero To is a burn.
type TransferSingle struct {
	Operator types.Address
	From     types.Address
	To       types.Address
	ID       types.TokenID
	Amount   types.Amount
}

func (TransferSingle) EventType() string { return TypeTransferSingle }

func (e TransferSingle) Attributes() map[string]string {
	return map[string]string{
		"operator": e.Operator.Hex(),
		"from":     e.From.Hex(),
		"to":       e.To.Hex(),
		"id":       e.ID.String(),
		"amount":   e.Amount.String(),
	}
}

// TransferBatch records a multi-id balance movement.
type TransferBatch struct {
	Operator types.Address
	From     types.Address
	To       types.Address
	IDs      []types.TokenID
	Amounts  []types.Amount
}

func (TransferBatch) EventType() string { return TypeTransferBatch }

func (e TransferBatch) Attributes() map[string]string {
	return map[string]string{
		"operator": e.Operator.Hex(),
		"from":     e.From.Hex(),
		"to":       e.To.Hex(),
		"ids":      joinIDs(e.IDs),
		"amounts":  joinAmounts(e.Amounts),
	}
}

// ApprovalForAll records an operator approval change.
type ApprovalForAll struct {
	Owner    types.Address
	Operator types.Address
	Approved bool
}

func (ApprovalForAll) EventType() string { return TypeApprovalForAll }

func (e ApprovalForAll) Attributes() map[string]string {
	return map[string]string{
		"owner":    e.Owner.Hex(),
		"operator": e.Operator.Hex(),
		"approved": strconv.FormatBool(e.Approved),
	}
}

// URIChanged records a per-id metadata URI update.
type URIChanged struct {
	ID  types.TokenID
	URI string
}

func (URIChanged) EventType() string { return TypeURI }

func (e URIChanged) Attributes() map[string]string {
	return map[string]string{"id": e.ID.String(), "uri": e.URI}
}

// ──────────────────────────────────────────────────
// Access control
// ──────────────────────────────────────────────────

// RoleChanged records a role grant or revocation.
type RoleChanged struct {
	Role    types.Hash
	Account types.Address
	Sender  types.Address
	Granted bool
}

func (e RoleChanged) EventType() string {
	if e.Granted {
		return TypeRoleGranted
	}
	return TypeRoleRevoked
}

func (e RoleChanged) Attributes() map[string]string {
	return map[string]string{
		"role":    e.Role.Hex(),
		"account": e.Account.Hex(),
		"sender":  e.Sender.Hex(),
	}
}

// CapabilityChanged records a mint or burn approval change.
type CapabilityChanged struct {
	Kind     string // TypeMintApproval or TypeBurnApproval
	Account  types.Address
	Approved bool
}

func (e CapabilityChanged) EventType() string { return e.Kind }

func (e CapabilityChanged) Attributes() map[string]string {
	return map[string]string{
		"account":  e.Account.Hex(),
		"approved": strconv.FormatBool(e.Approved),
	}
}

// OwnershipTransferred records a change of controlling owner.
type OwnershipTransferred struct {
	Previous types.Address
	Owner    types.Address
}

func (OwnershipTransferred) EventType() string { return TypeOwnership }

func (e OwnershipTransferred) Attributes() map[string]string {
	return map[string]string{"previous": e.Previous.Hex(), "owner": e.Owner.Hex()}
}

// PauseChanged records a pause or unpause.
type PauseChanged struct {
	Account types.Address
	Paused  bool
}

func (e PauseChanged) EventType() string {
	if e.Paused {
		return TypePaused
	}
	return TypeUnpaused
}

func (e PauseChanged) Attributes() map[string]string {
	return map[string]string{"account": e.Account.Hex()}
}

// ──────────────────────────────────────────────────
// Fungible assets
// ──────────────────────────────────────────────────

// AssetTransfer records a fungible asset movement. A zero From is a mint.
type AssetTransfer struct {
	Asset  string
	From   types.Address
	To     types.Address
	Amount types.Amount
}

func (AssetTransfer) EventType() string { return TypeAssetTransfer }

func (e AssetTransfer) Attributes() map[string]string {
	return map[string]string{
		"asset":  e.Asset,
		"from":   e.From.Hex(),
		"to":     e.To.Hex(),
		"amount": e.Amount.String(),
	}
}

// AssetApproval records an allowance change.
type AssetApproval struct {
	Asset   string
	Owner   types.Address
	Spender types.Address
	Amount  types.Amount
}

func (AssetApproval) EventType() string { return TypeAssetApproval }

func (e AssetApproval) Attributes() map[string]string {
	return map[string]string{
		"asset":   e.Asset,
		"owner":   e.Owner.Hex(),
		"spender": e.Spender.Hex(),
		"amount":  e.Amount.String(),
	}
}

// AssetMinter records a minter being added or removed.
type AssetMinter struct {
	Asset   string
	Account types.Address
	Enabled bool
}

func (AssetMinter) EventType() string { return TypeAssetMinter }

func (e AssetMinter) Attributes() map[string]string {
	return map[string]string{
		"asset":   e.Asset,
		"account": e.Account.Hex(),
		"enabled": strconv.FormatBool(e.Enabled),
	}
}

// ──────────────────────────────────────────────────
// Vesting
// ──────────────────────────────────────────────────

// VestingCreated records a new empty schedule.
type VestingCreated struct {
	Index  uint64
	Owner  types.Address
	Escrow types.Address
}

func (VestingCreated) EventType() string { return TypeVestingCreated }

func (e VestingCreated) Attributes() map[string]string {
	return map[string]string{
		"index":  formatIndex(e.Index),
		"owner":  e.Owner.Hex(),
		"escrow": e.Escrow.Hex(),
	}
}

// VestingPrepared records a schedule binding its terms and escrowing funds.
type VestingPrepared struct {
	Index           uint64
	Beneficiary     types.Address
	Asset           string
	TotalAmount     types.Amount
	InitialUnlocked types.Amount
	UnlockPeriod    uint64
	Duration        uint64
}

func (VestingPrepared) EventType() string { return TypeVestingPrepared }

func (e VestingPrepared) Attributes() map[string]string {
	return map[string]string{
		"index":            formatIndex(e.Index),
		"beneficiary":      e.Beneficiary.Hex(),
		"asset":            e.Asset,
		"total_amount":     e.TotalAmount.String(),
		"initial_unlocked": e.InitialUnlocked.String(),
		"unlock_period":    strconv.FormatUint(e.UnlockPeriod, 10),
		"duration":         strconv.FormatUint(e.Duration, 10),
	}
}

// VestingStarted records activation.
type VestingStarted struct {
	Index     uint64
	StartTime int64
	EndTime   int64
}

func (VestingStarted) EventType() string { return TypeVestingStarted }

func (e VestingStarted) Attributes() map[string]string {
	return map[string]string{
		"index":      formatIndex(e.Index),
		"start_time": strconv.FormatInt(e.StartTime, 10),
		"end_time":   strconv.FormatInt(e.EndTime, 10),
	}
}

// VestingClaimed records a claim by the beneficiary.
type VestingClaimed struct {
	Index       uint64
	Beneficiary types.Address
	Amount      types.Amount
	Claimed     types.Amount
}

func (VestingClaimed) EventType() string { return TypeVestingClaimed }

func (e VestingClaimed) Attributes() map[string]string {
	return map[string]string{
		"index":       formatIndex(e.Index),
		"beneficiary": e.Beneficiary.Hex(),
		"amount":      e.Amount.String(),
		"claimed":     e.Claimed.String(),
	}
}

// VestingRevoked records a revocation. Amounts are in the asset's smallest unit.
type VestingRevoked struct {
	Index           uint64
	Owner           types.Address
	ReturnedToOwner types.Amount
}

func (VestingRevoked) EventType() string { return TypeVestingRevoked }

func (e VestingRevoked) Attributes() map[string]string {
	return map[string]string{
		"index":             formatIndex(e.Index),
		"owner":             e.Owner.Hex(),
		"returned_to_owner": e.ReturnedToOwner.String(),
	}
}

// BeneficiaryChanged records a beneficiary handing a schedule to another account.
type BeneficiaryChanged struct {
	Index    uint64
	Previous types.Address
	Current  types.Address
}

func (BeneficiaryChanged) EventType() string { return TypeBeneficiary }

func (e BeneficiaryChanged) Attributes() map[string]string {
	return map[string]string{
		"index":    formatIndex(e.Index),
		"previous": e.Previous.Hex(),
		"current":  e.Current.Hex(),
	}
}

// ScheduleOwnershipTransferred records a change of schedule authority.
type ScheduleOwnershipTransferred struct {
	Index    uint64
	Previous types.Address
	Owner    types.Address
}

func (ScheduleOwnershipTransferred) EventType() string { return TypeScheduleOwner }

func (e ScheduleOwnershipTransferred) Attributes() map[string]string {
	return map[string]string{
		"index":    formatIndex(e.Index),
		"previous": e.Previous.Hex(),
		"owner":    e.Owner.Hex(),
	}
}

// ──────────────────────────────────────────────────
// Converter
// ──────────────────────────────────────────────────

// ConverterMinted records a payment converted into credit.
type ConverterMinted struct {
	Converter      string
	To             types.Address
	Amount         types.Amount
	ShareRecipient types.Address
	ShareAmount    types.Amount
	Vesting        bool
	VestingIndex   uint64
	VestingEscrow  types.Address
}

func (ConverterMinted) EventType() string { return TypeConverterMinted }

func (e ConverterMinted) Attributes() map[string]string {
	attrs := map[string]string{
		"converter":       e.Converter,
		"to":              e.To.Hex(),
		"amount":          e.Amount.String(),
		"share_recipient": e.ShareRecipient.Hex(),
		"share_amount":    e.ShareAmount.String(),
		"vesting":         strconv.FormatBool(e.Vesting),
	}
	if e.Vesting {
		attrs["vesting_index"] = formatIndex(e.VestingIndex)
		attrs["vesting_escrow"] = e.VestingEscrow.Hex()
	}
	return attrs
}

// VestingSwept records the aggregate result of a batch claim.
type VestingSwept struct {
	Converter string
	Caller    types.Address
	Total     types.Amount
	Claimed   int
	Skipped   int
}

func (VestingSwept) EventType() string { return TypeVestingSwept }

func (e VestingSwept) Attributes() map[string]string {
	return map[string]string{
		"converter": e.Converter,
		"caller":    e.Caller.Hex(),
		"total":     e.Total.String(),
		"claimed":   strconv.Itoa(e.Claimed),
		"skipped":   strconv.Itoa(e.Skipped),
	}
}

func formatIndex(i uint64) string { return strconv.FormatUint(i, 10) }

func joinIDs(ids []types.TokenID) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

func joinAmounts(amounts []types.Amount) string {
	parts := make([]string, len(amounts))
	for i, v := range amounts {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
