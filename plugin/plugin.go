// Package plugin provides an extensible plugin system for tokenledger.
// Plugins hook into committed transactions and engine lifecycle events.
// Hooks run after the transaction is durable; their errors are logged and
// never roll anything back.
package plugin

import (
	"context"
	"time"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Transaction hooks
// ──────────────────────────────────────────────────

// OnTxCommitted is called once per committed transaction.
type OnTxCommitted interface {
	Plugin
	OnTxCommitted(ctx context.Context, txID id.TxID, op string, events []*event.Event, elapsed time.Duration) error
}

// OnTxReverted is called when a transaction fails and its effects are
// discarded.
type OnTxReverted interface {
	Plugin
	OnTxReverted(ctx context.Context, op string, cause error) error
}

// OnEvent is called for every committed event, in sequence order.
type OnEvent interface {
	Plugin
	OnEvent(ctx context.Context, evt *event.Event) error
}

// ──────────────────────────────────────────────────
// Token hooks
// ──────────────────────────────────────────────────

// OnTokenMinted is called for each minted id (zero From).
type OnTokenMinted interface {
	Plugin
	OnTokenMinted(ctx context.Context, t *event.TransferSingle) error
}

// OnTokenBurned is called for each burned id (zero To).
type OnTokenBurned interface {
	Plugin
	OnTokenBurned(ctx context.Context, t *event.TransferSingle) error
}

// OnTokenTransferred is called for each id moved between two accounts.
type OnTokenTransferred interface {
	Plugin
	OnTokenTransferred(ctx context.Context, t *event.TransferSingle) error
}

// OnRoleChanged is called when a role is granted or revoked.
type OnRoleChanged interface {
	Plugin
	OnRoleChanged(ctx context.Context, r *event.RoleChanged) error
}

// ──────────────────────────────────────────────────
// Vesting hooks
// ──────────────────────────────────────────────────

// OnVestingStarted is called when a schedule becomes active.
type OnVestingStarted interface {
	Plugin
	OnVestingStarted(ctx context.Context, v *event.VestingStarted) error
}

// OnVestingClaimed is called when a beneficiary claims.
type OnVestingClaimed interface {
	Plugin
	OnVestingClaimed(ctx context.Context, v *event.VestingClaimed) error
}

// OnVestingRevoked is called when a schedule is revoked.
type OnVestingRevoked interface {
	Plugin
	OnVestingRevoked(ctx context.Context, v *event.VestingRevoked) error
}

// ──────────────────────────────────────────────────
// Converter hooks
// ──────────────────────────────────────────────────

// OnConversion is called when a converter mints credit.
type OnConversion interface {
	Plugin
	OnConversion(ctx context.Context, c *event.ConverterMinted) error
}

// OnVestingSwept is called after a converter batch claim.
type OnVestingSwept interface {
	Plugin
	OnVestingSwept(ctx context.Context, s *event.VestingSwept) error
}
