// Package asset defines the fungible-asset surface used by vesting escrow
// and payment conversion, and provides Token, an allowance-based fungible
// token suitable as a payment asset.
package asset

import (
	"github.com/xraph/tokenledger/types"
)

// Asset is a fungible balance source. Amounts are in the smallest unit.
type Asset interface {
	// Key identifies the asset within an engine.
	Key() string

	// Decimals is the number of fractional digits of one whole unit.
	Decimals() uint8

	BalanceOf(account types.Address) types.Amount

	// Transfer moves amount from "from", acting as itself.
	Transfer(from, to types.Address, amount types.Amount) error

	// TransferFrom moves amount from "from" on behalf of spender, consuming
	// the allowance spender holds from "from".
	TransferFrom(spender, from, to types.Address, amount types.Amount) error

	// Approve lets spender move up to amount of owner's balance.
	Approve(owner, spender types.Address, amount types.Amount) error

	Allowance(owner, spender types.Address) types.Amount
}

// Recipient is notified when it receives a TransferAndCall.
type Recipient interface {
	OnTransferReceived(operator, from types.Address, amount types.Amount, data []byte) error
}

// Resolver looks up assets by key.
type Resolver interface {
	Asset(key string) (Asset, bool)
}

// Registry is a map-backed Resolver.
type Registry map[string]Asset

// Asset implements Resolver.
func (r Registry) Asset(key string) (Asset, bool) {
	a, ok := r[key]
	return a, ok
}

// Add registers a under its key.
func (r Registry) Add(a Asset) { r[a.Key()] = a }

// Unit returns one whole unit of a in its smallest denomination.
func Unit(a Asset) types.Amount {
	return types.Pow10(a.Decimals())
}
