// Package natspub publishes committed tokenledger events to NATS.
//
// Each event is JSON-encoded and sent to "<prefix>.<event type>", for
// example "tokenledger.vesting.claimed". Publishing happens after commit;
// a failed publish is logged by the plugin registry and never affects the
// ledger.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/plugin"
)

// DefaultSubjectPrefix is prepended to every event type.
const DefaultSubjectPrefix = "tokenledger"

var (
	_ plugin.Plugin     = (*Publisher)(nil)
	_ plugin.OnEvent    = (*Publisher)(nil)
	_ plugin.OnShutdown = (*Publisher)(nil)
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// flusher is implemented by *nats.Conn.
type flusher interface {
	Flush() error
}

// Message is the wire form of a committed event.
type Message struct {
	ID         string            `json:"id"`
	Seq        uint64            `json:"seq"`
	TxID       string            `json:"tx_id"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Timestamp  int64             `json:"timestamp"`
}

// Publisher is a plugin that forwards events to NATS.
type Publisher struct {
	conn   Conn
	prefix string
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSubjectPrefix overrides DefaultSubjectPrefix.
func WithSubjectPrefix(prefix string) Option {
	return func(p *Publisher) { p.prefix = prefix }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// New creates a Publisher over conn.
func New(conn Conn, opts ...Option) *Publisher {
	p := &Publisher{
		conn:   conn,
		prefix: DefaultSubjectPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect dials a NATS server and returns a Publisher bound to it.
func Connect(url string, opts ...Option) (*Publisher, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("tokenledger"))
	if err != nil {
		return nil, nil, fmt.Errorf("natspub: connect %s: %w", url, err)
	}
	return New(nc, opts...), nc, nil
}

// Name implements plugin.Plugin.
func (p *Publisher) Name() string { return "nats-publisher" }

// Subject returns the subject an event type is published to.
func (p *Publisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// OnEvent implements plugin.OnEvent.
func (p *Publisher) OnEvent(_ context.Context, evt *event.Event) error {
	data, err := json.Marshal(Message{
		ID:         evt.ID.String(),
		Seq:        evt.Seq,
		TxID:       evt.TxID.String(),
		Type:       evt.Type,
		Attributes: evt.Attributes,
		Timestamp:  evt.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("natspub: encode event %d: %w", evt.Seq, err)
	}
	subject := p.Subject(evt.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("natspub: publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", "subject", subject, "seq", evt.Seq)
	return nil
}

// OnShutdown implements plugin.OnShutdown. Buffered messages are flushed
// when the connection supports it.
func (p *Publisher) OnShutdown(_ context.Context) error {
	if f, ok := p.conn.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("natspub: flush: %w", err)
		}
	}
	return nil
}
