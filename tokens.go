package tokenledger

import (
	"context"

	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
)

// ──────────────────────────────────────────────────
// Token ledger mutations
// ──────────────────────────────────────────────────

// Mint creates amount of id for "to". The operator needs mint permission.
func (e *Engine) Mint(ctx context.Context, operator, to types.Address, id types.TokenID, amount types.Amount, data []byte) error {
	return e.exec(ctx, "mint", func() error {
		return e.ledger.Mint(operator, to, id, amount, data)
	})
}

// MintBatch mints several ids at once. Any failing element fails the call.
func (e *Engine) MintBatch(ctx context.Context, operator, to types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error {
	return e.exec(ctx, "mint_batch", func() error {
		return e.ledger.MintBatch(operator, to, ids, amounts, data)
	})
}

// Burn destroys amount of id held by "from".
func (e *Engine) Burn(ctx context.Context, operator, from types.Address, id types.TokenID, amount types.Amount) error {
	return e.exec(ctx, "burn", func() error {
		return e.ledger.Burn(operator, from, id, amount)
	})
}

// BurnBatch burns several ids at once.
func (e *Engine) BurnBatch(ctx context.Context, operator, from types.Address, ids []types.TokenID, amounts []types.Amount) error {
	return e.exec(ctx, "burn_batch", func() error {
		return e.ledger.BurnBatch(operator, from, ids, amounts)
	})
}

// Transfer moves amount of id from "from" to "to". The operator is "from"
// or an approved operator of "from".
func (e *Engine) Transfer(ctx context.Context, operator, from, to types.Address, id types.TokenID, amount types.Amount, data []byte) error {
	return e.exec(ctx, "transfer", func() error {
		return e.ledger.Transfer(operator, from, to, id, amount, data)
	})
}

// TransferBatch moves several ids at once.
func (e *Engine) TransferBatch(ctx context.Context, operator, from, to types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error {
	return e.exec(ctx, "transfer_batch", func() error {
		return e.ledger.TransferBatch(operator, from, to, ids, amounts, data)
	})
}

// SetApprovalForAll lets operator move all of owner's tokens.
func (e *Engine) SetApprovalForAll(ctx context.Context, owner, operator types.Address, approved bool) error {
	return e.exec(ctx, "set_approval_for_all", func() error {
		return e.ledger.SetApprovalForAll(owner, operator, approved)
	})
}

// SetURI sets the metadata URI of id. Requires URISetterRole.
func (e *Engine) SetURI(ctx context.Context, caller types.Address, id types.TokenID, uri string) error {
	return e.exec(ctx, "set_uri", func() error {
		return e.ledger.SetURI(caller, id, uri)
	})
}

// RegisterReceiver installs a receiver hook for addr. Transfers to addr
// fail when the receiver returns an error.
func (e *Engine) RegisterReceiver(addr types.Address, r token.Receiver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.RegisterReceiver(addr, r)
}

// ──────────────────────────────────────────────────
// Token ledger views
// ──────────────────────────────────────────────────

// BalanceOf returns the live balance of account for id.
func (e *Engine) BalanceOf(account types.Address, id types.TokenID) types.Amount {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.BalanceOf(account, id)
}

// BalanceOfBatch returns balances for paired accounts and ids.
func (e *Engine) BalanceOfBatch(accounts []types.Address, ids []types.TokenID) ([]types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.BalanceOfBatch(accounts, ids)
}

// TotalSupply returns the supply of id.
func (e *Engine) TotalSupply(id types.TokenID) types.Amount {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.TotalSupply(id)
}

// Exists reports whether id has a non-zero supply.
func (e *Engine) Exists(id types.TokenID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Exists(id)
}

// OwnerOf returns the holder of a non-fungible id.
func (e *Engine) OwnerOf(id types.TokenID) (types.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OwnerOf(id)
}

// IsApprovedForAll reports whether operator may move all of owner's tokens.
func (e *Engine) IsApprovedForAll(owner, operator types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.IsApprovedForAll(owner, operator)
}

// URI returns the metadata URI of id.
func (e *Engine) URI(id types.TokenID) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.URI(id)
}

// ──────────────────────────────────────────────────
// Historical views
// ──────────────────────────────────────────────────

// BalanceOfAt returns the balance of account for id at time t.
func (e *Engine) BalanceOfAt(account types.Address, id types.TokenID, t int64) (types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshots.BalanceOfAt(account, id, t, e.now())
}

// OwnerOfAt returns the holder of a non-fungible id at time t.
func (e *Engine) OwnerOfAt(id types.TokenID, t int64) (types.Address, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshots.OwnerOfAt(id, t, e.now())
}

// SnapshotAt returns the latest mutation timestamp at or before t.
func (e *Engine) SnapshotAt(t int64) (int64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshots.SnapshotAt(t)
}

// ──────────────────────────────────────────────────
// Persisted read models
// ──────────────────────────────────────────────────

// ListBalances reads materialized balances from the store.
func (e *Engine) ListBalances(ctx context.Context, opts token.ListOpts) ([]*token.Balance, error) {
	return e.store.ListBalances(ctx, opts)
}
