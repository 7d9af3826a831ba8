// Package store defines the aggregate persistence interface shared by every
// tokenledger backend.
package store

import (
	"context"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/vesting"
)

// Batch is the write-set of one committed transaction.
type Batch struct {
	TxID      id.TxID
	Events    []*event.Event
	Balances  []*token.Balance
	Schedules []*vesting.Schedule

	// RemovedSchedules lists schedule indices to delete. Only compensating
	// batches, which restore read models after a failed write, carry them.
	RemovedSchedules []uint64
}

// IsEmpty reports whether the batch has nothing to write.
func (b *Batch) IsEmpty() bool {
	return len(b.Events) == 0 && len(b.Balances) == 0 && len(b.Schedules) == 0 && len(b.RemovedSchedules) == 0
}

// Store is the unified storage interface for all tokenledger records.
// Apply must be idempotent for a given batch. Backends write balances and
// schedules before events, so LastSequence only moves once the read models
// are in place and a retried batch converges.
type Store interface {
	event.Store
	token.Store
	vesting.Store

	// Apply deletes the batch's removed schedules, upserts its balances and
	// schedules, and inserts its events.
	Apply(ctx context.Context, b *Batch) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
