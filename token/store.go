package token

import (
	"context"

	"github.com/xraph/tokenledger/types"
)

// ListOpts filters balance queries. Nil pointers mean "any".
type ListOpts struct {
	Account *types.Address
	TokenID *types.TokenID
	Limit   int
	Offset  int
}

// Store reads materialized balances. Writes go through the aggregate
// store's Apply.
type Store interface {
	// GetBalance returns the balance for key, or a not-found error.
	GetBalance(ctx context.Context, account types.Address, id types.TokenID) (*Balance, error)

	// ListBalances returns non-zero balances matching opts.
	ListBalances(ctx context.Context, opts ListOpts) ([]*Balance, error)
}
