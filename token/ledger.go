// Package token implements the dual-mode balance ledger. A single 256-bit
// id space holds fungible and non-fungible tokens; the high bit of the id
// selects the mode. Non-fungible ids have a total supply of 0 or 1.
//
// Effects are applied before any receiver is notified, so a receiver that
// calls back into the ledger observes consistent balances.
package token

import (
	"fmt"
	"strings"

	"github.com/xraph/tokenledger/access"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/types"
)

// Ledger holds balances, supplies, operator approvals and metadata URIs.
type Ledger struct {
	j  *journal.Journal
	ac *access.Controller

	balances  map[types.TokenID]map[types.Address]types.Amount
	supply    map[types.TokenID]types.Amount
	owners    map[types.TokenID]types.Address
	operators map[types.Address]map[types.Address]bool
	uris      map[types.TokenID]string
	baseURI   string

	receivers map[types.Address]Receiver
	observers []Observer
}

// NewLedger creates an empty ledger gated by ac. baseURI may contain the
// "{id}" placeholder.
func NewLedger(j *journal.Journal, ac *access.Controller, baseURI string) *Ledger {
	return &Ledger{
		j:         j,
		ac:        ac,
		balances:  make(map[types.TokenID]map[types.Address]types.Amount),
		supply:    make(map[types.TokenID]types.Amount),
		owners:    make(map[types.TokenID]types.Address),
		operators: make(map[types.Address]map[types.Address]bool),
		uris:      make(map[types.TokenID]string),
		baseURI:   baseURI,
		receivers: make(map[types.Address]Receiver),
	}
}

// RegisterReceiver installs the receiver hook for addr.
func (l *Ledger) RegisterReceiver(addr types.Address, r Receiver) {
	l.receivers[addr] = r
}

// Observe adds an observer.
func (l *Ledger) Observe(o Observer) {
	l.observers = append(l.observers, o)
}

// ──────────────────────────────────────────────────
// Mint
// ──────────────────────────────────────────────────

// Mint creates amount of id for "to". The operator needs mint permission.
func (l *Ledger) Mint(operator, to types.Address, id types.TokenID, amount types.Amount, data []byte) error {
	if err := l.checkMint(operator, to); err != nil {
		return err
	}
	if err := l.mint(to, id, amount); err != nil {
		return err
	}
	l.j.Emit(&event.TransferSingle{Operator: operator, To: to, ID: id, Amount: amount})
	return l.notify(operator, types.ZeroAddress, to, []types.TokenID{id}, []types.Amount{amount}, data)
}

// MintBatch mints several ids at once. Any failing element fails the batch.
func (l *Ledger) MintBatch(operator, to types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error {
	if err := l.checkMint(operator, to); err != nil {
		return err
	}
	if err := checkBatch(ids, amounts); err != nil {
		return err
	}
	for i := range ids {
		if err := l.mint(to, ids[i], amounts[i]); err != nil {
			return fmt.Errorf("batch element %d: %w", i, err)
		}
	}
	l.j.Emit(&event.TransferBatch{Operator: operator, To: to, IDs: ids, Amounts: amounts})
	return l.notify(operator, types.ZeroAddress, to, ids, amounts, data)
}

func (l *Ledger) checkMint(operator, to types.Address) error {
	if err := l.ac.RequireNotPaused(); err != nil {
		return err
	}
	if !l.ac.CanMint(operator) {
		return errs.Denied("account %s may not mint", operator.Hex())
	}
	if types.IsZero(to) {
		return errs.Invalid("to", "mint to the zero address")
	}
	return nil
}

func (l *Ledger) mint(to types.Address, id types.TokenID, amount types.Amount) error {
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	supply := l.supply[id]
	if id.IsNonFungible() {
		if !amount.Equal(types.NewAmount(1)) {
			return errs.Invalid("amount", "non-fungible id %s must be minted with amount 1", id)
		}
		if !supply.IsZero() {
			return fmt.Errorf("%w: id %s", errs.ErrAlreadyMinted, id)
		}
	}
	newSupply, err := supply.Add(amount)
	if err != nil {
		return err
	}
	if err := l.credit(to, id, amount); err != nil {
		return err
	}
	journal.Set(l.j, l.supply, id, newSupply)
	if id.IsNonFungible() {
		l.setOwner(id, to)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Burn
// ──────────────────────────────────────────────────

// Burn destroys amount of id held by "from". The operator must be "from",
// an approved operator of "from", or hold burn permission.
func (l *Ledger) Burn(operator, from types.Address, id types.TokenID, amount types.Amount) error {
	if err := l.checkBurn(operator, from); err != nil {
		return err
	}
	if err := l.burn(from, id, amount); err != nil {
		return err
	}
	l.j.Emit(&event.TransferSingle{Operator: operator, From: from, ID: id, Amount: amount})
	return nil
}

// BurnBatch burns several ids at once.
func (l *Ledger) BurnBatch(operator, from types.Address, ids []types.TokenID, amounts []types.Amount) error {
	if err := l.checkBurn(operator, from); err != nil {
		return err
	}
	if err := checkBatch(ids, amounts); err != nil {
		return err
	}
	for i := range ids {
		if err := l.burn(from, ids[i], amounts[i]); err != nil {
			return fmt.Errorf("batch element %d: %w", i, err)
		}
	}
	l.j.Emit(&event.TransferBatch{Operator: operator, From: from, IDs: ids, Amounts: amounts})
	return nil
}

func (l *Ledger) checkBurn(operator, from types.Address) error {
	if err := l.ac.RequireBurnable(); err != nil {
		return err
	}
	if err := l.ac.RequireNotPaused(); err != nil {
		return err
	}
	if types.IsZero(from) {
		return errs.Invalid("from", "burn from the zero address")
	}
	if operator != from && !l.IsApprovedForAll(from, operator) && !l.ac.CanBurn(operator) {
		return errs.Denied("account %s may not burn for %s", operator.Hex(), from.Hex())
	}
	return nil
}

func (l *Ledger) burn(from types.Address, id types.TokenID, amount types.Amount) error {
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	if err := l.debit(from, id, amount); err != nil {
		return err
	}
	newSupply, err := l.supply[id].Sub(amount)
	if err != nil {
		return errs.ErrInsufficientSupply
	}
	if newSupply.IsZero() {
		journal.Delete(l.j, l.supply, id)
	} else {
		journal.Set(l.j, l.supply, id, newSupply)
	}
	if id.IsNonFungible() {
		l.setOwner(id, types.ZeroAddress)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────

// Transfer moves amount of id. The operator must be "from" or an approved
// operator of "from".
func (l *Ledger) Transfer(operator, from, to types.Address, id types.TokenID, amount types.Amount, data []byte) error {
	if err := l.checkTransfer(operator, from, to); err != nil {
		return err
	}
	if err := l.move(from, to, id, amount); err != nil {
		return err
	}
	l.j.Emit(&event.TransferSingle{Operator: operator, From: from, To: to, ID: id, Amount: amount})
	return l.notify(operator, from, to, []types.TokenID{id}, []types.Amount{amount}, data)
}

// TransferBatch moves several ids at once.
func (l *Ledger) TransferBatch(operator, from, to types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error {
	if err := l.checkTransfer(operator, from, to); err != nil {
		return err
	}
	if err := checkBatch(ids, amounts); err != nil {
		return err
	}
	for i := range ids {
		if err := l.move(from, to, ids[i], amounts[i]); err != nil {
			return fmt.Errorf("batch element %d: %w", i, err)
		}
	}
	l.j.Emit(&event.TransferBatch{Operator: operator, From: from, To: to, IDs: ids, Amounts: amounts})
	return l.notify(operator, from, to, ids, amounts, data)
}

func (l *Ledger) checkTransfer(operator, from, to types.Address) error {
	if err := l.ac.RequireNotPaused(); err != nil {
		return err
	}
	if types.IsZero(to) {
		return errs.Invalid("to", "transfer to the zero address")
	}
	if types.IsZero(from) {
		return errs.Invalid("from", "transfer from the zero address")
	}
	if operator != from && !l.IsApprovedForAll(from, operator) {
		return errs.Denied("caller %s is not owner nor approved", operator.Hex())
	}
	return nil
}

func (l *Ledger) move(from, to types.Address, id types.TokenID, amount types.Amount) error {
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	if err := l.debit(from, id, amount); err != nil {
		return err
	}
	if err := l.credit(to, id, amount); err != nil {
		return err
	}
	if id.IsNonFungible() {
		l.setOwner(id, to)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Operators
// ──────────────────────────────────────────────────

// SetApprovalForAll lets operator move all of owner's tokens.
func (l *Ledger) SetApprovalForAll(owner, operator types.Address, approved bool) error {
	if owner == operator {
		return errs.Invalid("operator", "setting approval status for self")
	}
	if types.IsZero(operator) {
		return errs.Invalid("operator", "must not be the zero address")
	}
	if l.IsApprovedForAll(owner, operator) == approved {
		return nil
	}
	m, ok := l.operators[owner]
	if !ok {
		m = make(map[types.Address]bool)
		l.operators[owner] = m
	}
	if approved {
		journal.Set(l.j, m, operator, true)
	} else {
		journal.Delete(l.j, m, operator)
	}
	l.j.Emit(&event.ApprovalForAll{Owner: owner, Operator: operator, Approved: approved})
	return nil
}

// IsApprovedForAll reports whether operator may act for owner.
func (l *Ledger) IsApprovedForAll(owner, operator types.Address) bool {
	return l.operators[owner][operator]
}

// ──────────────────────────────────────────────────
// Metadata
// ──────────────────────────────────────────────────

// SetURI sets the metadata URI for id. Requires URISetterRole.
func (l *Ledger) SetURI(caller types.Address, id types.TokenID, uri string) error {
	if !l.ac.HasRole(access.URISetterRole, caller) {
		return errs.Denied("account %s is missing uri setter role", caller.Hex())
	}
	if uri == "" {
		journal.Delete(l.j, l.uris, id)
	} else {
		journal.Set(l.j, l.uris, id, uri)
	}
	l.j.Emit(&event.URIChanged{ID: id, URI: uri})
	return nil
}

// URI returns the metadata URI for id: its own URI if set, otherwise the
// base URI with "{id}" replaced by the 64-digit hex id.
func (l *Ledger) URI(id types.TokenID) string {
	if u, ok := l.uris[id]; ok {
		return u
	}
	return strings.ReplaceAll(l.baseURI, "{id}", id.Hex())
}

// ──────────────────────────────────────────────────
// Views
// ──────────────────────────────────────────────────

// BalanceOf returns the balance of account for id.
func (l *Ledger) BalanceOf(account types.Address, id types.TokenID) types.Amount {
	return l.balances[id][account]
}

// BalanceOfBatch returns balances pairwise for accounts and ids.
func (l *Ledger) BalanceOfBatch(accounts []types.Address, ids []types.TokenID) ([]types.Amount, error) {
	if len(accounts) != len(ids) {
		return nil, errs.Invalid("ids", "accounts and ids length mismatch (%d != %d)", len(accounts), len(ids))
	}
	out := make([]types.Amount, len(ids))
	for i := range ids {
		out[i] = l.BalanceOf(accounts[i], ids[i])
	}
	return out, nil
}

// TotalSupply returns the outstanding supply of id.
func (l *Ledger) TotalSupply(id types.TokenID) types.Amount {
	return l.supply[id]
}

// Exists reports whether id has any supply.
func (l *Ledger) Exists(id types.TokenID) bool {
	return !l.supply[id].IsZero()
}

// Holders returns every account with a non-zero balance of id.
func (l *Ledger) Holders(id types.TokenID) []types.Address {
	out := make([]types.Address, 0, len(l.balances[id]))
	for a := range l.balances[id] {
		out = append(out, a)
	}
	return out
}

// OwnerOf returns the holder of a non-fungible id.
func (l *Ledger) OwnerOf(id types.TokenID) (types.Address, error) {
	if !id.IsNonFungible() {
		return types.ZeroAddress, errs.Invalid("id", "%s is not non-fungible", id)
	}
	owner, ok := l.owners[id]
	if !ok {
		return types.ZeroAddress, fmt.Errorf("%w: %s", errs.ErrNonexistentToken, id)
	}
	return owner, nil
}

// ──────────────────────────────────────────────────
// Internal
// ──────────────────────────────────────────────────

func (l *Ledger) credit(to types.Address, id types.TokenID, amount types.Amount) error {
	bal, err := l.BalanceOf(to, id).Add(amount)
	if err != nil {
		return err
	}
	l.setBalance(to, id, bal)
	return nil
}

func (l *Ledger) debit(from types.Address, id types.TokenID, amount types.Amount) error {
	cur := l.BalanceOf(from, id)
	if cur.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", errs.ErrInsufficientBalance, from.Hex(), cur, id, amount)
	}
	bal, err := cur.Sub(amount)
	if err != nil {
		return err
	}
	l.setBalance(from, id, bal)
	return nil
}

func (l *Ledger) setBalance(account types.Address, id types.TokenID, bal types.Amount) {
	m, ok := l.balances[id]
	if !ok {
		m = make(map[types.Address]types.Amount)
		l.balances[id] = m
	}
	if bal.IsZero() {
		journal.Delete(l.j, m, account)
	} else {
		journal.Set(l.j, m, account, bal)
	}
	l.j.Touch(journal.KindBalance, BalanceKey{Account: account, ID: id})
	for _, o := range l.observers {
		o.BalanceChanged(account, id, bal)
	}
}

func (l *Ledger) setOwner(id types.TokenID, owner types.Address) {
	if types.IsZero(owner) {
		journal.Delete(l.j, l.owners, id)
	} else {
		journal.Set(l.j, l.owners, id, owner)
	}
	for _, o := range l.observers {
		o.OwnerChanged(id, owner)
	}
}

func (l *Ledger) notify(operator, from, to types.Address, ids []types.TokenID, amounts []types.Amount, data []byte) error {
	r, ok := l.receivers[to]
	if !ok {
		return nil
	}
	if err := r.OnReceived(operator, from, ids, amounts, data); err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrReceiverRejected, to.Hex(), err)
	}
	return nil
}

func checkBatch(ids []types.TokenID, amounts []types.Amount) error {
	if len(ids) != len(amounts) {
		return errs.Invalid("amounts", "ids and amounts length mismatch (%d != %d)", len(ids), len(amounts))
	}
	if len(ids) == 0 {
		return errs.Invalid("ids", "must not be empty")
	}
	return nil
}
