// Package observability provides a metrics extension for tokenledger that
// records transaction and domain event counts via a MetricFactory.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnTxCommitted      = (*MetricsExtension)(nil)
	_ plugin.OnTxReverted       = (*MetricsExtension)(nil)
	_ plugin.OnTokenMinted      = (*MetricsExtension)(nil)
	_ plugin.OnTokenBurned      = (*MetricsExtension)(nil)
	_ plugin.OnTokenTransferred = (*MetricsExtension)(nil)
	_ plugin.OnRoleChanged      = (*MetricsExtension)(nil)
	_ plugin.OnVestingStarted   = (*MetricsExtension)(nil)
	_ plugin.OnVestingClaimed   = (*MetricsExtension)(nil)
	_ plugin.OnVestingRevoked   = (*MetricsExtension)(nil)
	_ plugin.OnConversion       = (*MetricsExtension)(nil)
	_ plugin.OnVestingSwept     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records engine-wide metrics.
// Register it as a tokenledger plugin to track ledger activity.
type MetricsExtension struct {
	factory MetricFactory

	// Transaction metrics
	TxCommitted Counter
	TxReverted  Counter
	TxLatency   Histogram
	TxEvents    Histogram
	Events      Counter

	// Token metrics
	TokenMinted      Counter
	TokenBurned      Counter
	TokenTransferred Counter

	// Access metrics
	RoleGranted Counter
	RoleRevoked Counter

	// Vesting metrics
	VestingStarted Counter
	VestingClaimed Counter
	VestingRevoked Counter

	// Converter metrics
	Conversions        Counter
	VestedConversions  Counter
	VestingSweeps      Counter
	VestingSweptClaims Counter
	VestingSweptSkips  Counter

	// Error metrics
	StoreErrors    Counter
	RejectedErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions or NewPrometheusFactory standalone.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		TxCommitted: factory.Counter("tokenledger.tx.committed"),
		TxReverted:  factory.Counter("tokenledger.tx.reverted"),
		TxLatency:   factory.Histogram("tokenledger.tx.latency_ms"),
		TxEvents:    factory.Histogram("tokenledger.tx.events"),
		Events:      factory.Counter("tokenledger.events"),

		TokenMinted:      factory.Counter("tokenledger.token.minted"),
		TokenBurned:      factory.Counter("tokenledger.token.burned"),
		TokenTransferred: factory.Counter("tokenledger.token.transferred"),

		RoleGranted: factory.Counter("tokenledger.access.role.granted"),
		RoleRevoked: factory.Counter("tokenledger.access.role.revoked"),

		VestingStarted: factory.Counter("tokenledger.vesting.started"),
		VestingClaimed: factory.Counter("tokenledger.vesting.claimed"),
		VestingRevoked: factory.Counter("tokenledger.vesting.revoked"),

		Conversions:        factory.Counter("tokenledger.converter.conversions"),
		VestedConversions:  factory.Counter("tokenledger.converter.conversions.vested"),
		VestingSweeps:      factory.Counter("tokenledger.converter.sweeps"),
		VestingSweptClaims: factory.Counter("tokenledger.converter.sweeps.claimed"),
		VestingSweptSkips:  factory.Counter("tokenledger.converter.sweeps.skipped"),

		StoreErrors:    factory.Counter("tokenledger.store.errors"),
		RejectedErrors: factory.Counter("tokenledger.tx.rejected"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTxCommitted implements plugin.OnTxCommitted.
func (m *MetricsExtension) OnTxCommitted(_ context.Context, _ id.TxID, _ string, events []*event.Event, elapsed time.Duration) error {
	m.TxCommitted.Inc()
	m.TxLatency.Observe(float64(elapsed.Milliseconds()))
	m.TxEvents.Observe(float64(len(events)))
	m.Events.Add(float64(len(events)))
	return nil
}

// OnTxReverted implements plugin.OnTxReverted.
func (m *MetricsExtension) OnTxReverted(_ context.Context, _ string, cause error) error {
	m.TxReverted.Inc()
	if errors.Is(cause, errs.ErrStoreFailed) {
		m.StoreErrors.Inc()
	} else {
		m.RejectedErrors.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Token hooks
// ──────────────────────────────────────────────────

// OnTokenMinted implements plugin.OnTokenMinted.
func (m *MetricsExtension) OnTokenMinted(_ context.Context, _ *event.TransferSingle) error {
	m.TokenMinted.Inc()
	return nil
}

// OnTokenBurned implements plugin.OnTokenBurned.
func (m *MetricsExtension) OnTokenBurned(_ context.Context, _ *event.TransferSingle) error {
	m.TokenBurned.Inc()
	return nil
}

// OnTokenTransferred implements plugin.OnTokenTransferred.
func (m *MetricsExtension) OnTokenTransferred(_ context.Context, _ *event.TransferSingle) error {
	m.TokenTransferred.Inc()
	return nil
}

// OnRoleChanged implements plugin.OnRoleChanged.
func (m *MetricsExtension) OnRoleChanged(_ context.Context, r *event.RoleChanged) error {
	if r.Granted {
		m.RoleGranted.Inc()
	} else {
		m.RoleRevoked.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Vesting hooks
// ──────────────────────────────────────────────────

// OnVestingStarted implements plugin.OnVestingStarted.
func (m *MetricsExtension) OnVestingStarted(_ context.Context, _ *event.VestingStarted) error {
	m.VestingStarted.Inc()
	return nil
}

// OnVestingClaimed implements plugin.OnVestingClaimed.
func (m *MetricsExtension) OnVestingClaimed(_ context.Context, _ *event.VestingClaimed) error {
	m.VestingClaimed.Inc()
	return nil
}

// OnVestingRevoked implements plugin.OnVestingRevoked.
func (m *MetricsExtension) OnVestingRevoked(_ context.Context, _ *event.VestingRevoked) error {
	m.VestingRevoked.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Converter hooks
// ──────────────────────────────────────────────────

// OnConversion implements plugin.OnConversion.
func (m *MetricsExtension) OnConversion(_ context.Context, c *event.ConverterMinted) error {
	m.Conversions.Inc()
	if c.Vesting {
		m.VestedConversions.Inc()
	}
	return nil
}

// OnVestingSwept implements plugin.OnVestingSwept.
func (m *MetricsExtension) OnVestingSwept(_ context.Context, s *event.VestingSwept) error {
	m.VestingSweeps.Inc()
	m.VestingSweptClaims.Add(float64(s.Claimed))
	m.VestingSweptSkips.Add(float64(s.Skipped))
	return nil
}
