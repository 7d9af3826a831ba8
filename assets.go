package tokenledger

import (
	"context"
	"fmt"

	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
)

// ──────────────────────────────────────────────────
// Asset registration
// ──────────────────────────────────────────────────

// IssueToken creates and registers an allowance-based fungible token
// owned by owner, typically a payment asset.
func (e *Engine) IssueToken(ctx context.Context, owner types.Address, key string, decimals uint8) (*asset.Token, error) {
	var t *asset.Token
	err := e.exec(ctx, "asset_issue", func() error {
		if types.IsZero(owner) {
			return errs.Invalid("owner", "must not be the zero address")
		}
		t = asset.NewToken(e.j, key, decimals, owner)
		return e.addAsset(t)
	})
	return t, err
}

// RegisterCredit exposes the fungible ledger id as an asset, so it can be
// escrowed by vesting schedules. An empty key defaults to "ledger:<id>".
func (e *Engine) RegisterCredit(ctx context.Context, id types.TokenID, decimals uint8, key string) (*token.Asset, error) {
	var a *token.Asset
	err := e.exec(ctx, "asset_register_credit", func() error {
		var err error
		a, err = token.NewAsset(e.ledger, id, decimals, key)
		if err != nil {
			return err
		}
		return e.addAsset(a)
	})
	return a, err
}

// RegisterAsset registers an externally implemented asset.
func (e *Engine) RegisterAsset(ctx context.Context, a asset.Asset) error {
	return e.exec(ctx, "asset_register", func() error {
		return e.addAsset(a)
	})
}

func (e *Engine) addAsset(a asset.Asset) error {
	if a.Key() == "" {
		return errs.Invalid("key", "must not be empty")
	}
	if _, ok := e.assets[a.Key()]; ok {
		return errs.State("asset %q already registered", a.Key())
	}
	journal.Set(e.j, e.assets, a.Key(), a)
	return nil
}

// Asset returns the registered asset under key.
func (e *Engine) Asset(key string) (asset.Asset, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lookupAsset(key)
}

func (e *Engine) lookupAsset(key string) (asset.Asset, error) {
	a, ok := e.assets.Asset(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrAssetNotFound, key)
	}
	return a, nil
}

func (e *Engine) lookupToken(key string) (*asset.Token, error) {
	a, err := e.lookupAsset(key)
	if err != nil {
		return nil, err
	}
	t, ok := a.(*asset.Token)
	if !ok {
		return nil, errs.Invalid("asset", "%q is not an issued token", key)
	}
	return t, nil
}

// ──────────────────────────────────────────────────
// Asset operations
// ──────────────────────────────────────────────────

// MintAsset mints an issued token. Caller must be one of its minters.
func (e *Engine) MintAsset(ctx context.Context, key string, caller, to types.Address, amount types.Amount) error {
	return e.exec(ctx, "asset_mint", func() error {
		t, err := e.lookupToken(key)
		if err != nil {
			return err
		}
		return t.Mint(caller, to, amount)
	})
}

// AddAssetMinter adds a minter to an issued token. Token owner only.
func (e *Engine) AddAssetMinter(ctx context.Context, key string, caller, account types.Address) error {
	return e.exec(ctx, "asset_add_minter", func() error {
		t, err := e.lookupToken(key)
		if err != nil {
			return err
		}
		return t.AddMinter(caller, account)
	})
}

// RemoveAssetMinter removes a minter from an issued token.
func (e *Engine) RemoveAssetMinter(ctx context.Context, key string, caller, account types.Address) error {
	return e.exec(ctx, "asset_remove_minter", func() error {
		t, err := e.lookupToken(key)
		if err != nil {
			return err
		}
		return t.RemoveMinter(caller, account)
	})
}

// ApproveAsset lets spender move amount of owner's balance.
func (e *Engine) ApproveAsset(ctx context.Context, key string, owner, spender types.Address, amount types.Amount) error {
	return e.exec(ctx, "asset_approve", func() error {
		a, err := e.lookupAsset(key)
		if err != nil {
			return err
		}
		return a.Approve(owner, spender, amount)
	})
}

// TransferAsset moves amount of an asset.
func (e *Engine) TransferAsset(ctx context.Context, key string, from, to types.Address, amount types.Amount) error {
	return e.exec(ctx, "asset_transfer", func() error {
		a, err := e.lookupAsset(key)
		if err != nil {
			return err
		}
		return a.Transfer(from, to, amount)
	})
}

// TransferAssetFrom moves amount on behalf of spender.
func (e *Engine) TransferAssetFrom(ctx context.Context, key string, spender, from, to types.Address, amount types.Amount) error {
	return e.exec(ctx, "asset_transfer_from", func() error {
		a, err := e.lookupAsset(key)
		if err != nil {
			return err
		}
		return a.TransferFrom(spender, from, to, amount)
	})
}

// TransferAndCall moves an issued token and notifies the recipient, which
// may reject it. Converters accept payments this way.
func (e *Engine) TransferAndCall(ctx context.Context, key string, from, to types.Address, amount types.Amount, data []byte) error {
	return e.exec(ctx, "asset_transfer_and_call", func() error {
		t, err := e.lookupToken(key)
		if err != nil {
			return err
		}
		return t.TransferAndCall(from, to, amount, data)
	})
}

// AssetBalanceOf returns the balance of account in an asset.
func (e *Engine) AssetBalanceOf(key string, account types.Address) (types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, err := e.lookupAsset(key)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return a.BalanceOf(account), nil
}

// AssetAllowance returns what spender may still move of owner's balance.
func (e *Engine) AssetAllowance(key string, owner, spender types.Address) (types.Amount, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, err := e.lookupAsset(key)
	if err != nil {
		return types.ZeroAmount(), err
	}
	return a.Allowance(owner, spender), nil
}
