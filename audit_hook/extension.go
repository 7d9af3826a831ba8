// Package audithook bridges tokenledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin       = (*Extension)(nil)
	_ plugin.OnEvent      = (*Extension)(nil)
	_ plugin.OnTxReverted = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges committed events and failed transactions to an audit
// trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Hooks
// ──────────────────────────────────────────────────

// OnEvent implements plugin.OnEvent. Every committed event becomes one
// audit record whose action is the event type.
func (e *Extension) OnEvent(ctx context.Context, evt *event.Event) error {
	resource := resourceOf(evt.Type)
	severity := SeverityInfo
	if warnings[evt.Type] {
		severity = SeverityWarning
	}

	kv := make([]any, 0, 2*len(evt.Attributes)+6)
	for k, v := range evt.Attributes {
		kv = append(kv, k, v)
	}
	kv = append(kv, "seq", evt.Seq, "tx_id", evt.TxID.String(), "timestamp", evt.Timestamp)

	return e.record(ctx, evt.Type, severity, OutcomeSuccess,
		resource, resourceID(evt.Attributes), categories[resource], nil,
		kv...,
	)
}

// OnTxReverted implements plugin.OnTxReverted. Store failures are
// critical; everything else is a rejected request.
func (e *Extension) OnTxReverted(ctx context.Context, op string, cause error) error {
	severity := SeverityWarning
	if errors.Is(cause, errs.ErrStoreFailed) {
		severity = SeverityCritical
	}
	return e.record(ctx, ActionTxReverted, severity, OutcomeFailure,
		ResourceTransaction, op, CategoryTx, cause,
		"op", op,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// resourceOf returns the resource prefix of an event type
// ("vesting.claimed" -> "vesting").
func resourceOf(typ string) string {
	if i := strings.IndexByte(typ, '.'); i > 0 {
		return typ[:i]
	}
	return typ
}

// resourceID picks the most specific identifier in attrs.
func resourceID(attrs map[string]string) string {
	for _, k := range []string{"id", "index", "converter", "asset", "role", "account"} {
		if v, ok := attrs[k]; ok {
			return v
		}
	}
	return ""
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
