package vesting

import (
	"context"

	"github.com/xraph/tokenledger/types"
)

// ListOpts filters schedule queries.
type ListOpts struct {
	Owner       *types.Address
	Beneficiary *types.Address
	Status      Status
	Limit       int
	Offset      int
}

// Store reads persisted schedules. Writes go through the aggregate store's
// Apply.
type Store interface {
	// GetSchedule returns the schedule at index, or ErrScheduleNotFound.
	GetSchedule(ctx context.Context, index uint64) (*Schedule, error)

	// ListSchedules returns schedules ordered by index.
	ListSchedules(ctx context.Context, opts ListOpts) ([]*Schedule, error)
}
