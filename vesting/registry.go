// Package vesting implements linear vesting schedules as an index-addressed
// arena. Each schedule escrows its funds at an address derived from the
// registry address and the schedule index.
//
// Lifecycle: Created -> Prepared -> Active -> Revoked. Revoke is accepted
// from Prepared or Active; revoking a Revoked schedule is a no-op.
package vesting

import (
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/types"
)

// Registry owns every schedule of an engine.
type Registry struct {
	j      *journal.Journal
	addr   types.Address
	assets asset.Resolver

	schedules []*Schedule
}

// NewRegistry creates an empty registry. addr seeds escrow addresses.
func NewRegistry(j *journal.Journal, addr types.Address, assets asset.Resolver) *Registry {
	return &Registry{j: j, addr: addr, assets: assets}
}

// Address returns the registry address.
func (r *Registry) Address() types.Address { return r.addr }

// Len returns the number of schedules.
func (r *Registry) Len() int { return len(r.schedules) }

// EscrowAddress returns the escrow account of the schedule at index.
func (r *Registry) EscrowAddress(index uint64) types.Address {
	return crypto.CreateAddress(r.addr, index)
}

// Get returns a copy of the schedule at index.
func (r *Registry) Get(index uint64) (*Schedule, error) {
	s, err := r.get(index)
	if err != nil {
		return nil, err
	}
	return s.clone(), nil
}

// List returns copies of up to limit schedules starting at offset. A
// non-positive limit means all.
func (r *Registry) List(offset, limit int) []*Schedule {
	if offset < 0 || offset >= len(r.schedules) {
		return nil
	}
	end := len(r.schedules)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]*Schedule, 0, end-offset)
	for _, s := range r.schedules[offset:end] {
		out = append(out, s.clone())
	}
	return out
}

func (r *Registry) get(index uint64) (*Schedule, error) {
	if index >= uint64(len(r.schedules)) {
		return nil, fmt.Errorf("%w: index %d", errs.ErrScheduleNotFound, index)
	}
	return r.schedules[index], nil
}

// update replaces the schedule at s.Index with a modified copy.
func (r *Registry) update(s *Schedule, fn func(*Schedule)) {
	next := s.clone()
	fn(next)
	next.Touch(r.now())

	i := s.Index
	prev := r.schedules[i]
	r.schedules[i] = next
	r.j.Append(func() { r.schedules[i] = prev })
	r.j.Touch(journal.KindSchedule, i)
}

func (r *Registry) now() time.Time {
	return time.Unix(r.j.Now(), 0).UTC()
}

func (r *Registry) asset(key string) (asset.Asset, error) {
	a, ok := r.assets.Asset(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrAssetNotFound, key)
	}
	return a, nil
}

// toUnits converts whole units to the asset's smallest unit.
func toUnits(a asset.Asset, whole types.Amount) (types.Amount, error) {
	return whole.Mul(asset.Unit(a))
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Create appends an empty schedule controlled by owner.
func (r *Registry) Create(owner types.Address) (*Schedule, error) {
	if types.IsZero(owner) {
		return nil, errs.Invalid("owner", "must not be the zero address")
	}
	index := uint64(len(r.schedules))
	s := &Schedule{
		Entity: types.NewEntity(r.now()),
		ID:     id.NewScheduleID(),
		Index:  index,
		Escrow: r.EscrowAddress(index),
		Owner:  owner,
		Status: StatusCreated,
	}
	r.schedules = append(r.schedules, s)
	r.j.Append(func() { r.schedules = r.schedules[:index] })
	r.j.Touch(journal.KindSchedule, index)
	r.j.Emit(&event.VestingCreated{Index: index, Owner: owner, Escrow: s.Escrow})
	return s.clone(), nil
}

// Prepare binds the terms and pulls TotalAmount whole units from the
// authority into escrow. The escrow must hold an allowance from the
// authority.
func (r *Registry) Prepare(caller types.Address, index uint64, p PrepareParams) error {
	s, err := r.get(index)
	if err != nil {
		return err
	}
	if caller != s.Owner {
		return errs.Denied("caller %s is not the schedule owner", caller.Hex())
	}
	if s.Status != StatusCreated {
		return errs.State("prepare: schedule %d is %s", index, s.Status)
	}
	if err := validateTerms(p); err != nil {
		return err
	}
	a, err := r.asset(p.Asset)
	if err != nil {
		return err
	}
	authority := p.Authority
	if types.IsZero(authority) {
		authority = caller
	}
	escrowed, err := toUnits(a, p.TotalAmount)
	if err != nil {
		return err
	}
	if err := a.TransferFrom(s.Escrow, authority, s.Escrow, escrowed); err != nil {
		return fmt.Errorf("vesting: fund escrow %d: %w", index, err)
	}

	r.update(s, func(n *Schedule) {
		n.Beneficiary = p.Beneficiary
		n.Asset = p.Asset
		n.TotalAmount = p.TotalAmount
		n.InitialUnlocked = p.InitialUnlocked
		n.UnlockPeriod = p.UnlockPeriod
		n.Duration = p.Duration
		n.Status = StatusPrepared
	})
	r.j.Emit(&event.VestingPrepared{
		Index:           index,
		Beneficiary:     p.Beneficiary,
		Asset:           p.Asset,
		TotalAmount:     p.TotalAmount,
		InitialUnlocked: p.InitialUnlocked,
		UnlockPeriod:    p.UnlockPeriod,
		Duration:        p.Duration,
	})
	return nil
}

func validateTerms(p PrepareParams) error {
	if types.IsZero(p.Beneficiary) {
		return errs.Invalid("beneficiary", "must not be the zero address")
	}
	if p.UnlockPeriod == 0 {
		return errs.Invalid("unlock_period", "must be positive")
	}
	if p.Duration == 0 {
		return errs.Invalid("duration", "must be positive")
	}
	if p.UnlockPeriod > math.MaxInt64/p.Duration {
		return errs.Invalid("duration", "unlock period times duration overflows")
	}
	if p.TotalAmount.LessThan(types.NewAmount(p.Duration)) {
		return errs.Invalid("total_amount", "must be at least the duration (%d)", p.Duration)
	}
	if p.InitialUnlocked.GreaterThan(p.TotalAmount) {
		return errs.Invalid("initial_unlocked", "exceeds total amount")
	}
	return nil
}

// SetStart activates a prepared schedule.
func (r *Registry) SetStart(caller types.Address, index uint64, start int64) error {
	s, err := r.get(index)
	if err != nil {
		return err
	}
	if caller != s.Owner {
		return errs.Denied("caller %s is not the schedule owner", caller.Hex())
	}
	if s.Status != StatusPrepared {
		return errs.State("set start: schedule %d is %s", index, s.Status)
	}
	if start <= 0 {
		return errs.Invalid("start", "must be positive")
	}
	span := int64(s.UnlockPeriod * s.Duration)
	if start > math.MaxInt64-span {
		return errs.Invalid("start", "end time overflows")
	}

	r.update(s, func(n *Schedule) {
		n.StartTime = start
		n.Status = StatusActive
	})
	r.j.Emit(&event.VestingStarted{Index: index, StartTime: start, EndTime: start + span})
	return nil
}

// Claim pays amount whole units to the beneficiary.
func (r *Registry) Claim(caller types.Address, index uint64, amount types.Amount) error {
	s, err := r.get(index)
	if err != nil {
		return err
	}
	if s.Status != StatusActive {
		return errs.State("claim: schedule %d is %s", index, s.Status)
	}
	if caller != s.Beneficiary {
		return errs.Denied("caller %s is not the beneficiary", caller.Hex())
	}
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	claimable := s.ClaimableAt(r.j.Now())
	if amount.GreaterThan(claimable) {
		return fmt.Errorf("%w: claim %s exceeds claimable %s", errs.ErrInsufficientFunds, amount, claimable)
	}
	a, err := r.asset(s.Asset)
	if err != nil {
		return err
	}
	units, err := toUnits(a, amount)
	if err != nil {
		return err
	}
	if err := a.Transfer(s.Escrow, s.Beneficiary, units); err != nil {
		return fmt.Errorf("vesting: pay out %d: %w", index, err)
	}
	claimed, err := s.Claimed.Add(amount)
	if err != nil {
		return err
	}

	r.update(s, func(n *Schedule) { n.Claimed = claimed })
	r.j.Emit(&event.VestingClaimed{Index: index, Beneficiary: s.Beneficiary, Amount: amount, Claimed: claimed})
	return nil
}

// Revoke ends the schedule and returns everything left in escrow, including
// tokens sent there directly, to recipient (the caller when zero). Unclaimed
// funds are forfeited by the beneficiary.
func (r *Registry) Revoke(caller types.Address, index uint64, recipient types.Address) error {
	s, err := r.get(index)
	if err != nil {
		return err
	}
	if caller != s.Owner {
		return errs.Denied("caller %s is not the schedule owner", caller.Hex())
	}
	switch s.Status {
	case StatusRevoked:
		return nil
	case StatusPrepared, StatusActive:
	default:
		return errs.State("revoke: schedule %d is %s", index, s.Status)
	}
	if types.IsZero(recipient) {
		recipient = caller
	}
	a, err := r.asset(s.Asset)
	if err != nil {
		return err
	}

	returned := a.BalanceOf(s.Escrow)
	if !returned.IsZero() {
		if err := a.Transfer(s.Escrow, recipient, returned); err != nil {
			return fmt.Errorf("vesting: return escrow %d: %w", index, err)
		}
	}

	r.update(s, func(n *Schedule) { n.Status = StatusRevoked })
	r.j.Emit(&event.VestingRevoked{Index: index, Owner: recipient, ReturnedToOwner: returned})
	return nil
}

// ChangeBeneficiary hands the schedule to another account. Only the
// current beneficiary may call it, in any state but Revoked.
func (r *Registry) ChangeBeneficiary(caller types.Address, index uint64, beneficiary types.Address) error {
	s, err := r.get(index)
	if err != nil {
		return err
	}
	if s.Status == StatusRevoked {
		return errs.State("change beneficiary: schedule %d is revoked", index)
	}
	if caller != s.Beneficiary {
		return errs.Denied("caller %s is not the beneficiary", caller.Hex())
	}
	if types.IsZero(beneficiary) {
		return errs.Invalid("beneficiary", "must not be the zero address")
	}

	prev := s.Beneficiary
	r.update(s, func(n *Schedule) { n.Beneficiary = beneficiary })
	r.j.Emit(&event.BeneficiaryChanged{Index: index, Previous: prev, Current: beneficiary})
	return nil
}

// TransferOwnership hands schedule authority to newOwner.
func (r *Registry) TransferOwnership(caller types.Address, index uint64, newOwner types.Address) error {
	s, err := r.get(index)
	if err != nil {
		return err
	}
	if caller != s.Owner {
		return errs.Denied("caller %s is not the schedule owner", caller.Hex())
	}
	if types.IsZero(newOwner) {
		return errs.Invalid("owner", "new owner is the zero address")
	}

	r.update(s, func(n *Schedule) { n.Owner = newOwner })
	r.j.Emit(&event.ScheduleOwnershipTransferred{Index: index, Previous: caller, Owner: newOwner})
	return nil
}

// ──────────────────────────────────────────────────
// Views (Active only)
// ──────────────────────────────────────────────────

func (r *Registry) active(index uint64) (*Schedule, error) {
	s, err := r.get(index)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusActive {
		return nil, errs.State("schedule %d is %s", index, s.Status)
	}
	return s, nil
}

// NextUnlockTime returns the time of the next unlock after now.
func (r *Registry) NextUnlockTime(index uint64, now int64) (int64, error) {
	s, err := r.active(index)
	if err != nil {
		return 0, err
	}
	return s.NextUnlockAt(now)
}

// ClaimableAmount returns the amount claimable at now.
func (r *Registry) ClaimableAmount(index uint64, now int64) (types.Amount, error) {
	s, err := r.active(index)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return s.ClaimableAt(now), nil
}

// UnlockedAmount returns the amount unlocked at now.
func (r *Registry) UnlockedAmount(index uint64, now int64) (types.Amount, error) {
	s, err := r.active(index)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return s.UnlockedAt(now), nil
}

// LockedAmount returns the amount still locked at now.
func (r *Registry) LockedAmount(index uint64, now int64) (types.Amount, error) {
	s, err := r.active(index)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return s.LockedAt(now), nil
}
