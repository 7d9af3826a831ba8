package asset

import (
	"fmt"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/types"
)

var _ Asset = (*Token)(nil)

// Token is an allowance-based fungible token with a minter set.
type Token struct {
	j        *journal.Journal
	key      string
	decimals uint8
	owner    types.Address

	minters    map[types.Address]bool
	balances   map[types.Address]types.Amount
	allowances map[types.Address]map[types.Address]types.Amount
	supply     types.Amount
	recipients map[types.Address]Recipient
}

// NewToken creates an empty token. owner manages the minter set and is a
// minter itself.
func NewToken(j *journal.Journal, key string, decimals uint8, owner types.Address) *Token {
	return &Token{
		j:          j,
		key:        key,
		decimals:   decimals,
		owner:      owner,
		minters:    map[types.Address]bool{owner: true},
		balances:   make(map[types.Address]types.Amount),
		allowances: make(map[types.Address]map[types.Address]types.Amount),
		recipients: make(map[types.Address]Recipient),
	}
}

// Key implements Asset.
func (t *Token) Key() string { return t.key }

// Decimals implements Asset.
func (t *Token) Decimals() uint8 { return t.decimals }

// Owner returns the account managing minters.
func (t *Token) Owner() types.Address { return t.owner }

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() types.Amount { return t.supply }

// BalanceOf implements Asset.
func (t *Token) BalanceOf(account types.Address) types.Amount {
	return t.balances[account]
}

// Allowance implements Asset.
func (t *Token) Allowance(owner, spender types.Address) types.Amount {
	return t.allowances[owner][spender]
}

// RegisterRecipient installs the TransferAndCall hook for addr.
func (t *Token) RegisterRecipient(addr types.Address, r Recipient) {
	t.recipients[addr] = r
}

// ──────────────────────────────────────────────────
// Minters
// ──────────────────────────────────────────────────

// IsMinter reports whether account may mint.
func (t *Token) IsMinter(account types.Address) bool { return t.minters[account] }

// AddMinter adds account to the minter set. Owner only.
func (t *Token) AddMinter(caller, account types.Address) error {
	return t.setMinter(caller, account, true)
}

// RemoveMinter removes account from the minter set. Owner only.
func (t *Token) RemoveMinter(caller, account types.Address) error {
	return t.setMinter(caller, account, false)
}

func (t *Token) setMinter(caller, account types.Address, enabled bool) error {
	if caller != t.owner {
		return errs.Denied("caller %s is not the %s owner", caller.Hex(), t.key)
	}
	if types.IsZero(account) {
		return errs.Invalid("account", "must not be the zero address")
	}
	if t.minters[account] == enabled {
		return nil
	}
	if enabled {
		journal.Set(t.j, t.minters, account, true)
	} else {
		journal.Delete(t.j, t.minters, account)
	}
	t.j.Emit(&event.AssetMinter{Asset: t.key, Account: account, Enabled: enabled})
	return nil
}

// Mint creates amount for "to". Caller must be a minter.
func (t *Token) Mint(caller, to types.Address, amount types.Amount) error {
	if !t.minters[caller] {
		return errs.Denied("caller %s is not a minter", caller.Hex())
	}
	if types.IsZero(to) {
		return errs.Invalid("to", "mint to the zero address")
	}
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	supply, err := t.supply.Add(amount)
	if err != nil {
		return err
	}
	bal, err := t.balances[to].Add(amount)
	if err != nil {
		return err
	}
	journal.Assign(t.j, &t.supply, supply)
	journal.Set(t.j, t.balances, to, bal)
	t.j.Emit(&event.AssetTransfer{Asset: t.key, To: to, Amount: amount})
	return nil
}

// ──────────────────────────────────────────────────
// Transfers
// ──────────────────────────────────────────────────

// Approve implements Asset. It replaces any previous allowance.
func (t *Token) Approve(owner, spender types.Address, amount types.Amount) error {
	if types.IsZero(spender) {
		return errs.Invalid("spender", "must not be the zero address")
	}
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[types.Address]types.Amount)
		t.allowances[owner] = m
	}
	if amount.IsZero() {
		journal.Delete(t.j, m, spender)
	} else {
		journal.Set(t.j, m, spender, amount)
	}
	t.j.Emit(&event.AssetApproval{Asset: t.key, Owner: owner, Spender: spender, Amount: amount})
	return nil
}

// Transfer implements Asset.
func (t *Token) Transfer(from, to types.Address, amount types.Amount) error {
	return t.move(from, to, amount)
}

// TransferFrom implements Asset.
func (t *Token) TransferFrom(spender, from, to types.Address, amount types.Amount) error {
	if spender != from {
		allowed := t.Allowance(from, spender)
		if allowed.LessThan(amount) {
			return fmt.Errorf("%w: %s allows %s only %s of %s", errs.ErrInsufficientAllowance, from.Hex(), spender.Hex(), allowed, t.key)
		}
		rest, err := allowed.Sub(amount)
		if err != nil {
			return err
		}
		if rest.IsZero() {
			journal.Delete(t.j, t.allowances[from], spender)
		} else {
			journal.Set(t.j, t.allowances[from], spender, rest)
		}
	}
	return t.move(from, to, amount)
}

// TransferAndCall transfers and then notifies "to" if it registered a
// Recipient. A recipient error rejects the transfer.
func (t *Token) TransferAndCall(from, to types.Address, amount types.Amount, data []byte) error {
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	r, ok := t.recipients[to]
	if !ok {
		return nil
	}
	if err := r.OnTransferReceived(from, from, amount, data); err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrReceiverRejected, to.Hex(), err)
	}
	return nil
}

func (t *Token) move(from, to types.Address, amount types.Amount) error {
	if types.IsZero(to) {
		return errs.Invalid("to", "transfer to the zero address")
	}
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	cur := t.balances[from]
	if cur.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", errs.ErrInsufficientBalance, from.Hex(), cur, t.key, amount)
	}
	rest, err := cur.Sub(amount)
	if err != nil {
		return err
	}
	if rest.IsZero() {
		journal.Delete(t.j, t.balances, from)
	} else {
		journal.Set(t.j, t.balances, from, rest)
	}
	bal, err := t.balances[to].Add(amount)
	if err != nil {
		return err
	}
	journal.Set(t.j, t.balances, to, bal)
	t.j.Emit(&event.AssetTransfer{Asset: t.key, From: from, To: to, Amount: amount})
	return nil
}
