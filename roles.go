package tokenledger

import (
	"context"

	"github.com/xraph/tokenledger/access"
	"github.com/xraph/tokenledger/types"
)

// ──────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────

// GrantRole gives role to account. Requires the admin role; granting a
// held role succeeds without an event.
func (e *Engine) GrantRole(ctx context.Context, caller types.Address, role access.Role, account types.Address) error {
	return e.exec(ctx, "grant_role", func() error {
		return e.access.GrantRole(caller, role, account)
	})
}

// RevokeRole removes role from account. Requires the admin role.
func (e *Engine) RevokeRole(ctx context.Context, caller types.Address, role access.Role, account types.Address) error {
	return e.exec(ctx, "revoke_role", func() error {
		return e.access.RevokeRole(caller, role, account)
	})
}

// RenounceRole drops role from the caller.
func (e *Engine) RenounceRole(ctx context.Context, caller types.Address, role access.Role) error {
	return e.exec(ctx, "renounce_role", func() error {
		return e.access.RenounceRole(caller, role)
	})
}

// HasRole reports whether account holds role.
func (e *Engine) HasRole(role access.Role, account types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.HasRole(role, account)
}

// ──────────────────────────────────────────────────
// Approvals and ownership
// ──────────────────────────────────────────────────

// SetMintApproval grants or withdraws the mint capability. Owner only.
func (e *Engine) SetMintApproval(ctx context.Context, caller, account types.Address, approved bool) error {
	return e.exec(ctx, "set_mint_approval", func() error {
		return e.access.SetMintApproval(caller, account, approved)
	})
}

// SetBurnApproval grants or withdraws the burn capability. Owner only.
func (e *Engine) SetBurnApproval(ctx context.Context, caller, account types.Address, approved bool) error {
	return e.exec(ctx, "set_burn_approval", func() error {
		return e.access.SetBurnApproval(caller, account, approved)
	})
}

// IsMintApproved reports the mint capability of account.
func (e *Engine) IsMintApproved(account types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.IsMintApproved(account)
}

// IsBurnApproved reports the burn capability of account.
func (e *Engine) IsBurnApproved(account types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.IsBurnApproved(account)
}

// TransferOwnership hands control to newOwner. Owner only.
func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner types.Address) error {
	return e.exec(ctx, "transfer_ownership", func() error {
		return e.access.TransferOwnership(caller, newOwner)
	})
}

// ──────────────────────────────────────────────────
// Pause
// ──────────────────────────────────────────────────

// Pause halts mint, burn and transfer. Requires PauserRole.
func (e *Engine) Pause(ctx context.Context, caller types.Address) error {
	return e.exec(ctx, "pause", func() error {
		return e.access.Pause(caller)
	})
}

// Unpause resumes mint, burn and transfer. Requires PauserRole.
func (e *Engine) Unpause(ctx context.Context, caller types.Address) error {
	return e.exec(ctx, "unpause", func() error {
		return e.access.Unpause(caller)
	})
}

// Paused reports whether the ledger is paused.
func (e *Engine) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.Paused()
}

// Burnable reports whether burning is enabled.
func (e *Engine) Burnable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.access.Burnable()
}
