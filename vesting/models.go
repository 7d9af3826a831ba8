package vesting

import (
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/types"
)

// Status is the lifecycle state of a schedule.
type Status string

const (
	// StatusCreated is an empty schedule awaiting terms.
	StatusCreated Status = "created"
	// StatusPrepared has terms and escrowed funds but no start time.
	StatusPrepared Status = "prepared"
	// StatusActive is unlocking over time.
	StatusActive Status = "active"
	// StatusRevoked is terminal.
	StatusRevoked Status = "revoked"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusPrepared, StatusActive, StatusRevoked:
		return true
	}
	return false
}

// Schedule is a linear, periodic release of an escrowed amount to a
// beneficiary. Amounts are whole units of the asset.
type Schedule struct {
	types.Entity

	ID              id.ScheduleID `json:"id"`
	Index           uint64        `json:"index"`
	Escrow          types.Address `json:"escrow"`
	Owner           types.Address `json:"owner"`
	Beneficiary     types.Address `json:"beneficiary"`
	Asset           string        `json:"asset"`
	TotalAmount     types.Amount  `json:"total_amount"`
	InitialUnlocked types.Amount  `json:"initial_unlocked"`
	Claimed         types.Amount  `json:"claimed_amount"`
	StartTime       int64         `json:"start_time"`
	UnlockPeriod    uint64        `json:"unlock_period"`
	Duration        uint64        `json:"duration"`
	Status          Status        `json:"status"`
}

// EndTime returns the time of the final unlock, or 0 before SetStart.
func (s *Schedule) EndTime() int64 {
	if s.StartTime == 0 {
		return 0
	}
	return s.StartTime + int64(s.UnlockPeriod*s.Duration)
}

// ElapsedPeriods returns whole periods since start, clamped to Duration.
func (s *Schedule) ElapsedPeriods(now int64) uint64 {
	if s.UnlockPeriod == 0 || now <= s.StartTime {
		return 0
	}
	n := uint64(now-s.StartTime) / s.UnlockPeriod
	if n > s.Duration {
		return s.Duration
	}
	return n
}

// unit returns the per-period amount and the remainder paid with the
// first period.
func (s *Schedule) unit() (types.Amount, types.Amount) {
	vesting, err := s.TotalAmount.Sub(s.InitialUnlocked)
	if err != nil || s.Duration == 0 {
		return types.ZeroAmount(), types.ZeroAmount()
	}
	d := types.NewAmount(s.Duration)
	return vesting.Div(d), vesting.Mod(d)
}

// UnlockedAt returns the total unlocked at now, claimed or not.
func (s *Schedule) UnlockedAt(now int64) types.Amount {
	elapsed := s.ElapsedPeriods(now)
	switch {
	case elapsed == 0:
		return s.InitialUnlocked
	case elapsed >= s.Duration:
		return s.TotalAmount
	}
	unit, rem := s.unit()
	// Bounded by TotalAmount, so the arithmetic cannot overflow.
	periodic, _ := unit.MulUint64(elapsed)
	out, _ := types.Sum(s.InitialUnlocked, periodic, rem)
	return out
}

// ClaimableAt returns what the beneficiary may claim at now.
func (s *Schedule) ClaimableAt(now int64) types.Amount {
	out, err := s.UnlockedAt(now).Sub(s.Claimed)
	if err != nil {
		return types.ZeroAmount()
	}
	return out
}

// LockedAt returns what is still locked at now.
func (s *Schedule) LockedAt(now int64) types.Amount {
	out, err := s.TotalAmount.Sub(s.UnlockedAt(now))
	if err != nil {
		return types.ZeroAmount()
	}
	return out
}

// NextUnlockAt returns the time of the next unlock after now.
func (s *Schedule) NextUnlockAt(now int64) (int64, error) {
	elapsed := s.ElapsedPeriods(now)
	if elapsed >= s.Duration {
		return 0, errs.ErrNoRemainingUnlocks
	}
	return s.StartTime + int64((elapsed+1)*s.UnlockPeriod), nil
}

// clone returns a detached copy.
func (s *Schedule) clone() *Schedule {
	c := *s
	return &c
}

// PrepareParams are the terms bound by Prepare.
type PrepareParams struct {
	// Authority funds the escrow. Zero means the caller.
	Authority       types.Address
	Beneficiary     types.Address
	Asset           string
	TotalAmount     types.Amount
	InitialUnlocked types.Amount
	UnlockPeriod    uint64
	Duration        uint64
}
