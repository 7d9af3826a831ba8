// Package memory provides an in-memory Store for tests and single-process
// deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

var _ store.Store = (*Store)(nil)

// Store keeps every record in maps guarded by a single lock.
type Store struct {
	mu sync.RWMutex

	// Event log, ascending by Seq
	events []*event.Event

	// Materialized balances keyed by "account:tokenid"
	balances map[string]*token.Balance

	// Schedules keyed by index
	schedules map[uint64]*vesting.Schedule

	closed bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		events:    make([]*event.Event, 0),
		balances:  make(map[string]*token.Balance),
		schedules: make(map[uint64]*vesting.Schedule),
	}
}

// Apply implements store.Store.
func (s *Store) Apply(_ context.Context, b *store.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errs.ErrStoreNotReady
	}

	last := s.lastSeq()
	for _, e := range b.Events {
		if e.Seq <= last {
			return fmt.Errorf("tokenledger/memory: apply: duplicate event sequence %d", e.Seq)
		}
		last = e.Seq
	}

	for _, e := range b.Events {
		cp := *e
		cp.Attributes = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			cp.Attributes[k] = v
		}
		cp.Payload = nil
		s.events = append(s.events, &cp)
	}
	for _, idx := range b.RemovedSchedules {
		delete(s.schedules, idx)
	}
	for _, bal := range b.Balances {
		cp := *bal
		s.balances[bal.Key().String()] = &cp
	}
	for _, sch := range b.Schedules {
		cp := *sch
		s.schedules[sch.Index] = &cp
	}
	return nil
}

func (s *Store) lastSeq() uint64 {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Seq
}

// ──────────────────────────────────────────────────
// Events
// ──────────────────────────────────────────────────

// ListEvents implements event.Store.
func (s *Store) ListEvents(_ context.Context, opts event.ListOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := sort.Search(len(s.events), func(i int) bool { return s.events[i].Seq > opts.AfterSeq })

	result := make([]*event.Event, 0)
	for _, e := range s.events[start:] {
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if !opts.TxID.IsNil() && e.TxID.String() != opts.TxID.String() {
			continue
		}
		cp := *e
		result = append(result, &cp)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

// LastSequence implements event.Store.
func (s *Store) LastSequence(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeq(), nil
}

// ──────────────────────────────────────────────────
// Balances
// ──────────────────────────────────────────────────

// GetBalance implements token.Store.
func (s *Store) GetBalance(_ context.Context, account types.Address, id types.TokenID) (*token.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := token.BalanceKey{Account: account, ID: id}.String()
	if b, ok := s.balances[key]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: balance %s", errs.ErrNotFound, key)
}

// ListBalances implements token.Store.
func (s *Store) ListBalances(_ context.Context, opts token.ListOpts) ([]*token.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*token.Balance, 0)
	for _, b := range s.balances {
		if b.Amount.IsZero() {
			continue
		}
		if opts.Account != nil && b.Account != *opts.Account {
			continue
		}
		if opts.TokenID != nil && !b.TokenID.Equal(*opts.TokenID) {
			continue
		}
		cp := *b
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key().String() < result[j].Key().String()
	})
	return page(result, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Schedules
// ──────────────────────────────────────────────────

// GetSchedule implements vesting.Store.
func (s *Store) GetSchedule(_ context.Context, index uint64) (*vesting.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sch, ok := s.schedules[index]; ok {
		cp := *sch
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: index %d", errs.ErrScheduleNotFound, index)
}

// ListSchedules implements vesting.Store.
func (s *Store) ListSchedules(_ context.Context, opts vesting.ListOpts) ([]*vesting.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*vesting.Schedule, 0)
	for _, sch := range s.schedules {
		if opts.Owner != nil && sch.Owner != *opts.Owner {
			continue
		}
		if opts.Beneficiary != nil && sch.Beneficiary != *opts.Beneficiary {
			continue
		}
		if opts.Status != "" && sch.Status != opts.Status {
			continue
		}
		cp := *sch
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return page(result, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Core
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errs.ErrStoreNotReady
	}
	return nil
}

// Close marks the store closed. Later writes fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
