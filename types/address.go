package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account: a holder, an operator, an escrow or a
// component acting on its own behalf.
type Address = common.Address

// ZeroAddress is the empty address. Mutations reject it as a target.
var ZeroAddress Address

// HexToAddress converts a hex string to an Address without validation.
func HexToAddress(s string) Address { return common.HexToAddress(s) }

// ParseAddress parses a 0x-prefixed 20-byte hex address.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("address: invalid hex address %q", s)
	}
	return common.HexToAddress(s), nil
}

// IsZero reports whether a is the zero address.
func IsZero(a Address) bool { return a == ZeroAddress }

// Hash is a 32-byte identifier, used for role ids.
type Hash = common.Hash
