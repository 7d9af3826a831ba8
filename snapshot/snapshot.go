// Package snapshot answers historical balance and ownership queries. It
// observes the token ledger and appends a checkpoint whenever a tracked
// value changes; queries binary-search the per-key history.
package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
)

// Granularity is the resolution, in seconds, that query times are rounded
// down to before searching.
type Granularity int64

// Supported granularities.
const (
	Exact Granularity = 1
	Day   Granularity = 86400
)

// ParseGranularity parses "exact" or "day". Empty means Exact.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return Exact, nil
	case "day":
		return Day, nil
	default:
		return 0, errs.Invalid("snapshot_granularity", "unknown granularity %q", s)
	}
}

// String returns the config name of g.
func (g Granularity) String() string {
	switch g {
	case Exact:
		return "exact"
	case Day:
		return "day"
	default:
		return fmt.Sprintf("%ds", int64(g))
	}
}

// Floor rounds ts down to a multiple of g.
func (g Granularity) Floor(ts int64) int64 {
	if g <= 1 {
		return ts
	}
	return ts - ts%int64(g)
}

// Checkpoint is a recorded value change.
type Checkpoint[V comparable] struct {
	Timestamp int64
	Value     V
}

type history[V comparable] []Checkpoint[V]

// at returns the last value recorded at or before ts.
func (h history[V]) at(ts int64) (V, bool) {
	i := sort.Search(len(h), func(i int) bool { return h[i].Timestamp > ts })
	if i == 0 {
		var zero V
		return zero, false
	}
	return h[i-1].Value, true
}

var _ token.Observer = (*Index)(nil)

// Index keeps checkpoint histories for balances and non-fungible owners.
type Index struct {
	j *journal.Journal
	g Granularity

	balances   map[token.BalanceKey]history[types.Amount]
	owners     map[types.TokenID]history[types.Address]
	timestamps []int64
}

// New creates an index. Attach it with Ledger.Observe.
func New(j *journal.Journal, g Granularity) *Index {
	if g <= 0 {
		g = Exact
	}
	return &Index{
		j:        j,
		g:        g,
		balances: make(map[token.BalanceKey]history[types.Amount]),
		owners:   make(map[types.TokenID]history[types.Address]),
	}
}

// Granularity returns the query resolution.
func (x *Index) Granularity() Granularity { return x.g }

// BalanceChanged implements token.Observer.
func (x *Index) BalanceChanged(account types.Address, id types.TokenID, balance types.Amount) {
	key := token.BalanceKey{Account: account, ID: id}
	if record(x.j, x.balances, key, x.j.Now(), balance) {
		x.mark(x.j.Now())
	}
}

// OwnerChanged implements token.Observer.
func (x *Index) OwnerChanged(id types.TokenID, owner types.Address) {
	if record(x.j, x.owners, id, x.j.Now(), owner) {
		x.mark(x.j.Now())
	}
}

// record writes value at ts into m[key] if it differs from the latest
// checkpoint. A second write at the same timestamp replaces the first, and
// is dropped entirely when it restores the previous value.
func record[K comparable, V comparable](j *journal.Journal, m map[K]history[V], key K, ts int64, value V) bool {
	prev, existed := m[key]
	n := len(prev)

	var before V
	if n > 0 {
		before = prev[n-1].Value
	}
	if before == value {
		return false
	}

	undo := func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	}

	if n > 0 && prev[n-1].Timestamp == ts {
		last := prev[n-1]
		var predecessor V
		if n > 1 {
			predecessor = prev[n-2].Value
		}
		if predecessor == value {
			m[key] = prev[:n-1]
		} else {
			prev[n-1].Value = value
		}
		j.Append(func() {
			prev[n-1] = last
			undo()
		})
		return true
	}

	m[key] = append(prev, Checkpoint[V]{Timestamp: ts, Value: value})
	j.Append(undo)
	return true
}

func (x *Index) mark(ts int64) {
	n := len(x.timestamps)
	if n > 0 && x.timestamps[n-1] == ts {
		return
	}
	x.timestamps = append(x.timestamps, ts)
	x.j.Append(func() { x.timestamps = x.timestamps[:n] })
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// BalanceOfAt returns the balance of account for id as of time t. now is
// the current processing time; t after now is rejected.
func (x *Index) BalanceOfAt(account types.Address, id types.TokenID, t, now int64) (types.Amount, error) {
	if t > now {
		return types.ZeroAmount(), fmt.Errorf("%w: %d > %d", errs.ErrFutureQuery, t, now)
	}
	v, _ := x.balances[token.BalanceKey{Account: account, ID: id}].at(x.g.Floor(t))
	return v, nil
}

// OwnerOfAt returns the holder of a non-fungible id as of time t.
func (x *Index) OwnerOfAt(id types.TokenID, t, now int64) (types.Address, error) {
	if t > now {
		return types.ZeroAddress, fmt.Errorf("%w: %d > %d", errs.ErrFutureQuery, t, now)
	}
	if !id.IsNonFungible() {
		return types.ZeroAddress, errs.Invalid("id", "%s is not non-fungible", id)
	}
	owner, _ := x.owners[id].at(x.g.Floor(t))
	if types.IsZero(owner) {
		return types.ZeroAddress, fmt.Errorf("%w: %s at %d", errs.ErrNonexistentToken, id, t)
	}
	return owner, nil
}

// SnapshotAt returns the latest mutation timestamp at or before t, after
// rounding t to the granularity. ok is false when nothing happened yet.
func (x *Index) SnapshotAt(t int64) (ts int64, ok bool) {
	q := x.g.Floor(t)
	i := sort.Search(len(x.timestamps), func(i int) bool { return x.timestamps[i] > q })
	if i == 0 {
		return 0, false
	}
	return x.timestamps[i-1], true
}

// Timestamps returns every mutation timestamp, ascending.
func (x *Index) Timestamps() []int64 {
	out := make([]int64, len(x.timestamps))
	copy(out, x.timestamps)
	return out
}

// BalanceHistory returns the checkpoints of account for id.
func (x *Index) BalanceHistory(account types.Address, id types.TokenID) []Checkpoint[types.Amount] {
	h := x.balances[token.BalanceKey{Account: account, ID: id}]
	out := make([]Checkpoint[types.Amount], len(h))
	copy(out, h)
	return out
}

// OwnerHistory returns the owner checkpoints of a non-fungible id.
func (x *Index) OwnerHistory(id types.TokenID) []Checkpoint[types.Address] {
	h := x.owners[id]
	out := make([]Checkpoint[types.Address], len(h))
	copy(out, h)
	return out
}
