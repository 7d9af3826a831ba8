package token

import (
	"time"

	"github.com/xraph/tokenledger/types"
)

// BalanceKey addresses one balance entry.
type BalanceKey struct {
	Account types.Address
	ID      types.TokenID
}

// String returns the persisted key "account:tokenid".
func (k BalanceKey) String() string {
	return k.Account.Hex() + ":" + k.ID.String()
}

// Balance is the materialized balance of an account for one token id.
type Balance struct {
	Account   types.Address `json:"account"`
	TokenID   types.TokenID `json:"token_id"`
	Amount    types.Amount  `json:"amount"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Key returns the balance's key.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{Account: b.Account, ID: b.TokenID}
}

// Receiver is notified after tokens have been credited to its address.
// Returning an error rejects the transfer and aborts the transaction.
type Receiver interface {
	OnReceived(operator, from types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(operator, from types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error

// OnReceived implements Receiver.
func (f ReceiverFunc) OnReceived(operator, from types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error {
	return f(operator, from, ids, amounts, data)
}

// Observer is told about every balance and NFT owner change, synchronously
// and inside the transaction.
type Observer interface {
	BalanceChanged(account types.Address, id types.TokenID, balance types.Amount)
	OwnerChanged(id types.TokenID, owner types.Address)
}
