package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/types"
)

// DefaultTimeout bounds every hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onTxCommitted      []OnTxCommitted
	onTxReverted       []OnTxReverted
	onEvent            []OnEvent
	onTokenMinted      []OnTokenMinted
	onTokenBurned      []OnTokenBurned
	onTokenTransferred []OnTokenTransferred
	onRoleChanged      []OnRoleChanged
	onVestingStarted   []OnVestingStarted
	onVestingClaimed   []OnVestingClaimed
	onVestingRevoked   []OnVestingRevoked
	onConversion       []OnConversion
	onVestingSwept     []OnVestingSwept
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	r.timeout = d
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTxCommitted); ok {
		r.onTxCommitted = append(r.onTxCommitted, v)
	}
	if v, ok := p.(OnTxReverted); ok {
		r.onTxReverted = append(r.onTxReverted, v)
	}
	if v, ok := p.(OnEvent); ok {
		r.onEvent = append(r.onEvent, v)
	}
	if v, ok := p.(OnTokenMinted); ok {
		r.onTokenMinted = append(r.onTokenMinted, v)
	}
	if v, ok := p.(OnTokenBurned); ok {
		r.onTokenBurned = append(r.onTokenBurned, v)
	}
	if v, ok := p.(OnTokenTransferred); ok {
		r.onTokenTransferred = append(r.onTokenTransferred, v)
	}
	if v, ok := p.(OnRoleChanged); ok {
		r.onRoleChanged = append(r.onRoleChanged, v)
	}
	if v, ok := p.(OnVestingStarted); ok {
		r.onVestingStarted = append(r.onVestingStarted, v)
	}
	if v, ok := p.(OnVestingClaimed); ok {
		r.onVestingClaimed = append(r.onVestingClaimed, v)
	}
	if v, ok := p.(OnVestingRevoked); ok {
		r.onVestingRevoked = append(r.onVestingRevoked, v)
	}
	if v, ok := p.(OnConversion); ok {
		r.onConversion = append(r.onConversion, v)
	}
	if v, ok := p.(OnVestingSwept); ok {
		r.onVestingSwept = append(r.onVestingSwept, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnTxCommitted", reflect.TypeOf((*OnTxCommitted)(nil)).Elem()},
	{"OnTxReverted", reflect.TypeOf((*OnTxReverted)(nil)).Elem()},
	{"OnEvent", reflect.TypeOf((*OnEvent)(nil)).Elem()},
	{"OnTokenMinted", reflect.TypeOf((*OnTokenMinted)(nil)).Elem()},
	{"OnTokenBurned", reflect.TypeOf((*OnTokenBurned)(nil)).Elem()},
	{"OnTokenTransferred", reflect.TypeOf((*OnTokenTransferred)(nil)).Elem()},
	{"OnRoleChanged", reflect.TypeOf((*OnRoleChanged)(nil)).Elem()},
	{"OnVestingStarted", reflect.TypeOf((*OnVestingStarted)(nil)).Elem()},
	{"OnVestingClaimed", reflect.TypeOf((*OnVestingClaimed)(nil)).Elem()},
	{"OnVestingRevoked", reflect.TypeOf((*OnVestingRevoked)(nil)).Elem()},
	{"OnConversion", reflect.TypeOf((*OnConversion)(nil)).Elem()},
	{"OnVestingSwept", reflect.TypeOf((*OnVestingSwept)(nil)).Elem()},
}

// implementedInterfaces returns the hook names p implements.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	dispatch(r, ctx, "OnInit", plugins, func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	dispatch(r, ctx, "OnShutdown", plugins, func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitTxReverted notifies plugins of a failed transaction.
func (r *Registry) EmitTxReverted(ctx context.Context, op string, cause error) {
	r.mu.RLock()
	plugins := r.onTxReverted
	r.mu.RUnlock()

	dispatch(r, ctx, "OnTxReverted", plugins, func(p OnTxReverted) error {
		return p.OnTxReverted(ctx, op, cause)
	})
}

// EmitCommitted delivers a committed transaction: OnEvent and the typed
// hook for each event in order, then OnTxCommitted.
func (r *Registry) EmitCommitted(ctx context.Context, txID id.TxID, op string, events []*event.Event, elapsed time.Duration) {
	for _, evt := range events {
		r.emitEvent(ctx, evt)
	}

	r.mu.RLock()
	plugins := r.onTxCommitted
	r.mu.RUnlock()

	dispatch(r, ctx, "OnTxCommitted", plugins, func(p OnTxCommitted) error {
		return p.OnTxCommitted(ctx, txID, op, events, elapsed)
	})
}

func (r *Registry) emitEvent(ctx context.Context, evt *event.Event) {
	r.mu.RLock()
	all := r.onEvent
	r.mu.RUnlock()

	dispatch(r, ctx, "OnEvent", all, func(p OnEvent) error {
		return p.OnEvent(ctx, evt)
	})

	switch pl := evt.Payload.(type) {
	case *event.TransferSingle:
		r.emitTransfer(ctx, pl)
	case *event.TransferBatch:
		for i := range pl.IDs {
			r.emitTransfer(ctx, &event.TransferSingle{
				Operator: pl.Operator,
				From:     pl.From,
				To:       pl.To,
				ID:       pl.IDs[i],
				Amount:   pl.Amounts[i],
			})
		}
	case *event.RoleChanged:
		r.mu.RLock()
		plugins := r.onRoleChanged
		r.mu.RUnlock()
		dispatch(r, ctx, "OnRoleChanged", plugins, func(p OnRoleChanged) error {
			return p.OnRoleChanged(ctx, pl)
		})
	case *event.VestingStarted:
		r.mu.RLock()
		plugins := r.onVestingStarted
		r.mu.RUnlock()
		dispatch(r, ctx, "OnVestingStarted", plugins, func(p OnVestingStarted) error {
			return p.OnVestingStarted(ctx, pl)
		})
	case *event.VestingClaimed:
		r.mu.RLock()
		plugins := r.onVestingClaimed
		r.mu.RUnlock()
		dispatch(r, ctx, "OnVestingClaimed", plugins, func(p OnVestingClaimed) error {
			return p.OnVestingClaimed(ctx, pl)
		})
	case *event.VestingRevoked:
		r.mu.RLock()
		plugins := r.onVestingRevoked
		r.mu.RUnlock()
		dispatch(r, ctx, "OnVestingRevoked", plugins, func(p OnVestingRevoked) error {
			return p.OnVestingRevoked(ctx, pl)
		})
	case *event.ConverterMinted:
		r.mu.RLock()
		plugins := r.onConversion
		r.mu.RUnlock()
		dispatch(r, ctx, "OnConversion", plugins, func(p OnConversion) error {
			return p.OnConversion(ctx, pl)
		})
	case *event.VestingSwept:
		r.mu.RLock()
		plugins := r.onVestingSwept
		r.mu.RUnlock()
		dispatch(r, ctx, "OnVestingSwept", plugins, func(p OnVestingSwept) error {
			return p.OnVestingSwept(ctx, pl)
		})
	}
}

func (r *Registry) emitTransfer(ctx context.Context, t *event.TransferSingle) {
	r.mu.RLock()
	minted, burned, moved := r.onTokenMinted, r.onTokenBurned, r.onTokenTransferred
	r.mu.RUnlock()

	switch {
	case types.IsZero(t.From):
		dispatch(r, ctx, "OnTokenMinted", minted, func(p OnTokenMinted) error {
			return p.OnTokenMinted(ctx, t)
		})
	case types.IsZero(t.To):
		dispatch(r, ctx, "OnTokenBurned", burned, func(p OnTokenBurned) error {
			return p.OnTokenBurned(ctx, t)
		})
	default:
		dispatch(r, ctx, "OnTokenTransferred", moved, func(p OnTokenTransferred) error {
			return p.OnTokenTransferred(ctx, t)
		})
	}
}

// dispatch calls fn for each plugin, logging failures.
func dispatch[P Plugin](r *Registry, ctx context.Context, hook string, plugins []P, fn func(P) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return fn(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the transaction pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(r.timeout):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
