package token

import (
	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/types"
)

var _ asset.Asset = (*Asset)(nil)

// Asset exposes one fungible id of a Ledger as an asset.Asset. Allowances
// map onto operator approval: any non-zero allowance approves the spender
// for all of the owner's tokens.
type Asset struct {
	l        *Ledger
	id       types.TokenID
	decimals uint8
	key      string
}

// NewAsset wraps fungible id of l.
func NewAsset(l *Ledger, id types.TokenID, decimals uint8, key string) (*Asset, error) {
	if id.IsNonFungible() {
		return nil, errs.Invalid("id", "%s is not fungible", id)
	}
	if key == "" {
		key = "ledger:" + id.String()
	}
	return &Asset{l: l, id: id, decimals: decimals, key: key}, nil
}

// Key implements asset.Asset.
func (a *Asset) Key() string { return a.key }

// Decimals implements asset.Asset.
func (a *Asset) Decimals() uint8 { return a.decimals }

// TokenID returns the wrapped id.
func (a *Asset) TokenID() types.TokenID { return a.id }

// BalanceOf implements asset.Asset.
func (a *Asset) BalanceOf(account types.Address) types.Amount {
	return a.l.BalanceOf(account, a.id)
}

// Transfer implements asset.Asset.
func (a *Asset) Transfer(from, to types.Address, amount types.Amount) error {
	return a.l.Transfer(from, from, to, a.id, amount, nil)
}

// TransferFrom implements asset.Asset.
func (a *Asset) TransferFrom(spender, from, to types.Address, amount types.Amount) error {
	return a.l.Transfer(spender, from, to, a.id, amount, nil)
}

// Approve implements asset.Asset.
func (a *Asset) Approve(owner, spender types.Address, amount types.Amount) error {
	return a.l.SetApprovalForAll(owner, spender, !amount.IsZero())
}

// Allowance implements asset.Asset. An approved operator has an unbounded
// allowance, reported as the owner's full balance.
func (a *Asset) Allowance(owner, spender types.Address) types.Amount {
	if owner == spender || a.l.IsApprovedForAll(owner, spender) {
		return a.BalanceOf(owner)
	}
	return types.ZeroAmount()
}
