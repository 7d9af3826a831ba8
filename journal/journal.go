// Package journal provides the per-transaction undo log shared by every
// ledger component. Each state change records an undo closure; aborting a
// transaction replays them in reverse so no partial effect survives.
// Events and touched keys are buffered alongside and released only on commit.
package journal

import (
	"github.com/xraph/tokenledger/event"
)

// Kinds of touched keys collected for persistence.
const (
	KindBalance  = "balance"
	KindSchedule = "schedule"
)

// Journal records the effects of the transaction in progress.
// It is not safe for concurrent use; the engine serializes transactions.
type Journal struct {
	now     int64
	undo    []func()
	events  []*event.Event
	touched map[string]*keySet
}

type keySet struct {
	order []any
	seen  map[any]struct{}
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{touched: make(map[string]*keySet)}
}

// Begin starts a transaction at timestamp now, discarding anything left over.
func (j *Journal) Begin(now int64) {
	j.reset()
	j.now = now
}

// Now returns the timestamp of the transaction in progress.
func (j *Journal) Now() int64 { return j.now }

// Append records an undo step.
func (j *Journal) Append(undo func()) {
	j.undo = append(j.undo, undo)
}

// Emit buffers an event for the transaction. Emit implements event.Emitter.
func (j *Journal) Emit(p event.Payload) {
	j.events = append(j.events, event.New(p, j.now))
}

// Touch marks key of the given kind as modified.
func (j *Journal) Touch(kind string, key any) {
	ks, ok := j.touched[kind]
	if !ok {
		ks = &keySet{seen: make(map[any]struct{})}
		j.touched[kind] = ks
	}
	if _, dup := ks.seen[key]; dup {
		return
	}
	ks.seen[key] = struct{}{}
	ks.order = append(ks.order, key)
}

// Touched returns the keys of kind modified so far, in first-touch order.
func (j *Journal) Touched(kind string) []any {
	ks, ok := j.touched[kind]
	if !ok {
		return nil
	}
	out := make([]any, len(ks.order))
	copy(out, ks.order)
	return out
}

// Events returns the events buffered so far.
func (j *Journal) Events() []*event.Event {
	return j.events
}

// Mark returns a savepoint for RevertTo.
func (j *Journal) Mark() Savepoint {
	return Savepoint{undo: len(j.undo), events: len(j.events)}
}

// Savepoint is a position in the journal.
type Savepoint struct {
	undo   int
	events int
}

// RevertTo undoes every step recorded after sp and drops events emitted
// after it. Touched keys are kept; persisting an unchanged value is harmless.
func (j *Journal) RevertTo(sp Savepoint) {
	for i := len(j.undo) - 1; i >= sp.undo; i-- {
		j.undo[i]()
	}
	j.undo = j.undo[:sp.undo]
	j.events = j.events[:sp.events]
}

// Revert undoes the whole transaction.
func (j *Journal) Revert() {
	j.RevertTo(Savepoint{})
	j.reset()
}

// Commit ends the transaction and returns its events.
func (j *Journal) Commit() []*event.Event {
	evts := j.events
	j.reset()
	return evts
}

func (j *Journal) reset() {
	j.undo = nil
	j.events = nil
	j.touched = make(map[string]*keySet)
}

// ──────────────────────────────────────────────────
// Journaled map helpers
// ──────────────────────────────────────────────────

// Set assigns m[k] = v and records the undo.
func Set[K comparable, V any](j *Journal, m map[K]V, k K, v V) {
	old, existed := m[k]
	m[k] = v
	j.Append(func() {
		if existed {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// Delete removes m[k] and records the undo.
func Delete[K comparable, V any](j *Journal, m map[K]V, k K) {
	old, existed := m[k]
	if !existed {
		return
	}
	delete(m, k)
	j.Append(func() { m[k] = old })
}

// Assign sets *p = v and records the undo.
func Assign[T any](j *Journal, p *T, v T) {
	old := *p
	*p = v
	j.Append(func() { *p = old })
}
