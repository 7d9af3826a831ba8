package tokenledger

import (
	"context"

	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// ──────────────────────────────────────────────────
// Vesting lifecycle
// ──────────────────────────────────────────────────

// CreateSchedule appends an empty schedule controlled by owner.
func (e *Engine) CreateSchedule(ctx context.Context, owner types.Address) (*vesting.Schedule, error) {
	var s *vesting.Schedule
	err := e.exec(ctx, "vesting_create", func() error {
		var err error
		s, err = e.vesting.Create(owner)
		return err
	})
	return s, err
}

// PrepareSchedule binds terms and escrows the funds. The authority must
// have approved the schedule's escrow address on the asset.
func (e *Engine) PrepareSchedule(ctx context.Context, caller types.Address, index uint64, p vesting.PrepareParams) error {
	return e.exec(ctx, "vesting_prepare", func() error {
		return e.vesting.Prepare(caller, index, p)
	})
}

// StartSchedule activates a prepared schedule at start.
func (e *Engine) StartSchedule(ctx context.Context, caller types.Address, index uint64, start int64) error {
	return e.exec(ctx, "vesting_start", func() error {
		return e.vesting.SetStart(caller, index, start)
	})
}

// Claim pays amount whole units of the unlocked balance to the beneficiary.
func (e *Engine) Claim(ctx context.Context, caller types.Address, index uint64, amount types.Amount) error {
	return e.exec(ctx, "vesting_claim", func() error {
		return e.vesting.Claim(caller, index, amount)
	})
}

// Revoke ends a schedule. Vested but unclaimed funds go to the beneficiary;
// the rest of the escrow goes to recipient (the caller when zero).
// Revoking a revoked schedule succeeds without effect.
func (e *Engine) Revoke(ctx context.Context, caller types.Address, index uint64, recipient types.Address) error {
	return e.exec(ctx, "vesting_revoke", func() error {
		return e.vesting.Revoke(caller, index, recipient)
	})
}

// ChangeBeneficiary hands a schedule to a new beneficiary.
func (e *Engine) ChangeBeneficiary(ctx context.Context, caller types.Address, index uint64, beneficiary types.Address) error {
	return e.exec(ctx, "vesting_change_beneficiary", func() error {
		return e.vesting.ChangeBeneficiary(caller, index, beneficiary)
	})
}

// TransferScheduleOwnership hands a schedule's authority to newOwner.
func (e *Engine) TransferScheduleOwnership(ctx context.Context, caller types.Address, index uint64, newOwner types.Address) error {
	return e.exec(ctx, "vesting_transfer_ownership", func() error {
		return e.vesting.TransferOwnership(caller, index, newOwner)
	})
}

// ──────────────────────────────────────────────────
// Vesting views
// ──────────────────────────────────────────────────

// Schedule returns a copy of the schedule at index.
func (e *Engine) Schedule(index uint64) (*vesting.Schedule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vesting.Get(index)
}

// Schedules returns up to limit schedules starting at offset.
func (e *Engine) Schedules(offset, limit int) []*vesting.Schedule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vesting.List(offset, limit)
}

// EscrowAddress returns the escrow account of the schedule at index,
// including indexes not created yet.
func (e *Engine) EscrowAddress(index uint64) types.Address {
	return e.vesting.EscrowAddress(index)
}

// NextUnlockTime returns the time of the next unlock of an active schedule.
func (e *Engine) NextUnlockTime(index uint64) (int64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vesting.NextUnlockTime(index, e.now())
}

// ClaimableAmount returns the whole units the beneficiary may claim now.
func (e *Engine) ClaimableAmount(index uint64) (types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vesting.ClaimableAmount(index, e.now())
}

// UnlockedAmount returns the whole units unlocked so far.
func (e *Engine) UnlockedAmount(index uint64) (types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vesting.UnlockedAmount(index, e.now())
}

// LockedAmount returns the whole units still locked.
func (e *Engine) LockedAmount(index uint64) (types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vesting.LockedAmount(index, e.now())
}

// ListSchedules reads persisted schedules from the store.
func (e *Engine) ListSchedules(ctx context.Context, opts vesting.ListOpts) ([]*vesting.Schedule, error) {
	return e.store.ListSchedules(ctx, opts)
}
