// Package event defines the structured audit log emitted by every committed
// mutation. Components emit typed payloads into the transaction journal; the
// engine stamps them with a sequence number and transaction id at commit.
package event

import (
	"context"
	"time"

	"github.com/xraph/tokenledger/id"
)

// Payload is a typed event body.
type Payload interface {
	EventType() string
	Attributes() map[string]string
}

// Emitter receives payloads as they are produced.
type Emitter interface {
	Emit(Payload)
}

// NoopEmitter discards every payload.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(Payload) {}

// Event is a committed, persisted event record.
type Event struct {
	ID         id.EventID        `json:"id"`
	Seq        uint64            `json:"seq"`
	TxID       id.TxID           `json:"tx_id"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  int64             `json:"timestamp"`
	CreatedAt  time.Time         `json:"created_at"`

	// Payload is the typed body. It is not persisted; events read back from
	// a store carry only Attributes.
	Payload Payload `json:"-"`
}

// New builds an uncommitted event from p at transaction time ts.
func New(p Payload, ts int64) *Event {
	return &Event{
		ID:         id.NewEventID(),
		Type:       p.EventType(),
		Attributes: p.Attributes(),
		Timestamp:  ts,
		Payload:    p,
	}
}

// ListOpts filters event queries. Zero values mean "no filter".
type ListOpts struct {
	Type     string
	TxID     id.TxID
	AfterSeq uint64
	Limit    int
}

// Store is the read side of the persisted event log. Writes go through the
// aggregate store's Apply.
type Store interface {
	// ListEvents returns events in ascending sequence order.
	ListEvents(ctx context.Context, opts ListOpts) ([]*Event, error)

	// LastSequence returns the highest persisted sequence number, or 0.
	LastSequence(ctx context.Context) (uint64, error)
}
