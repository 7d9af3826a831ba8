// Package converter exchanges a payment asset for ledger credit. Each
// conversion splits off a fee share, which is either minted straight to the
// share recipient or locked in a fresh vesting schedule held by the
// converter. ClaimVesting sweeps the schedules in batches and pays the
// share recipient.
package converter

import (
	"fmt"

	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// Transfer-and-call payloads.
const (
	PayloadDirect  byte = 0x00
	PayloadVesting byte = 0x01
)

// Conversion is the outcome of one conversion.
type Conversion struct {
	ID           id.ConversionID `json:"id"`
	Payer        types.Address   `json:"payer"`
	Amount       types.Amount    `json:"amount"`
	Minted       types.Amount    `json:"minted"`
	Share        types.Amount    `json:"share"`
	Vested       bool            `json:"vested"`
	VestingIndex uint64          `json:"vesting_index,omitempty"`
}

// Sweep is the outcome of a batch claim.
type Sweep struct {
	Total   types.Amount `json:"total"`
	Claimed int          `json:"claimed"`
	Skipped int          `json:"skipped"`
}

var _ asset.Recipient = (*Converter)(nil)

// Converter mints credit against payments.
type Converter struct {
	id  id.ConverterID
	cfg Config

	j        *journal.Journal
	ledger   *token.Ledger
	credit   *token.Asset
	payment  asset.Asset
	registry *vesting.Registry

	vestings []uint64
}

// New creates a converter. credit must wrap cfg.Credit and be resolvable
// by registry under its key. The converter's address needs mint permission
// on the ledger.
func New(j *journal.Journal, cfg Config, ledger *token.Ledger, credit *token.Asset, payment asset.Asset, registry *vesting.Registry) (*Converter, error) {
	if types.IsZero(cfg.Address) {
		cfg.Address = DeriveAddress(cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !credit.TokenID().Equal(cfg.Credit) {
		return nil, errs.Invalid("credit", "asset wraps %s, config names %s", credit.TokenID(), cfg.Credit)
	}
	if payment == nil || payment.Key() != cfg.PaymentAsset {
		return nil, errs.Invalid("payment_asset", "asset %q not provided", cfg.PaymentAsset)
	}
	return &Converter{
		id:       id.NewConverterID(),
		cfg:      cfg,
		j:        j,
		ledger:   ledger,
		credit:   credit,
		payment:  payment,
		registry: registry,
	}, nil
}

// ID returns the converter id.
func (c *Converter) ID() id.ConverterID { return c.id }

// Name returns the configured name.
func (c *Converter) Name() string { return c.cfg.Name }

// Address returns the converter's account.
func (c *Converter) Address() types.Address { return c.cfg.Address }

// Config returns the effective configuration.
func (c *Converter) Config() Config { return c.cfg }

// ──────────────────────────────────────────────────
// Conversion
// ──────────────────────────────────────────────────

// Convert takes amount of the payment asset from payer (which must have
// approved the converter), sends it to the treasury and mints credit.
func (c *Converter) Convert(payer types.Address, amount types.Amount, withVesting bool) (*Conversion, error) {
	if amount.IsZero() {
		return nil, errs.Invalid("amount", "must be positive")
	}
	if err := c.payment.TransferFrom(c.cfg.Address, payer, c.cfg.Treasury, amount); err != nil {
		return nil, fmt.Errorf("converter %s: collect payment: %w", c.cfg.Name, err)
	}
	return c.mint(payer, amount, withVesting)
}

// OnTransferReceived implements asset.Recipient. The payload is a single
// byte: PayloadDirect or PayloadVesting.
func (c *Converter) OnTransferReceived(_, from types.Address, amount types.Amount, data []byte) error {
	if len(data) == 0 {
		return errs.Invalid("data", "transfer data is empty")
	}
	if len(data) != 1 || data[0] > PayloadVesting {
		return errs.Invalid("data", "unrecognized transfer data %x", data)
	}
	if amount.IsZero() {
		return errs.Invalid("amount", "must be positive")
	}
	if err := c.payment.Transfer(c.cfg.Address, c.cfg.Treasury, amount); err != nil {
		return fmt.Errorf("converter %s: forward payment: %w", c.cfg.Name, err)
	}
	_, err := c.mint(from, amount, data[0] == PayloadVesting)
	return err
}

// ShareOf returns the fee share of amount.
func (c *Converter) ShareOf(amount types.Amount) (types.Amount, error) {
	return amount.MulDiv(types.NewAmount(c.cfg.SharePerMillion), types.NewAmount(Million))
}

func (c *Converter) mint(to types.Address, amount types.Amount, withVesting bool) (*Conversion, error) {
	share, err := c.ShareOf(amount)
	if err != nil {
		return nil, err
	}
	minted, err := amount.Sub(share)
	if err != nil {
		return nil, err
	}
	if !minted.IsZero() {
		if err := c.ledger.Mint(c.cfg.Address, to, c.cfg.Credit, minted, nil); err != nil {
			return nil, err
		}
	}

	conv := &Conversion{
		ID:     id.NewConversionID(),
		Payer:  to,
		Amount: amount,
		Minted: minted,
		Share:  share,
	}
	evt := &event.ConverterMinted{
		Converter:      c.cfg.Name,
		To:             to,
		Amount:         amount,
		ShareRecipient: c.cfg.ShareRecipient,
		ShareAmount:    share,
	}

	switch {
	case share.IsZero():
	case withVesting:
		s, err := c.vest(share)
		if err != nil {
			return nil, err
		}
		conv.Vested, conv.VestingIndex = true, s.Index
		evt.Vesting, evt.VestingIndex, evt.VestingEscrow = true, s.Index, s.Escrow
	default:
		if err := c.ledger.Mint(c.cfg.Address, c.cfg.ShareRecipient, c.cfg.Credit, share, nil); err != nil {
			return nil, err
		}
	}

	c.j.Emit(evt)
	return conv, nil
}

// vest locks share in a new schedule started now, with the converter as
// beneficiary.
func (c *Converter) vest(share types.Amount) (*vesting.Schedule, error) {
	unit := asset.Unit(c.credit)
	if !share.Mod(unit).IsZero() {
		return nil, errs.Invalid("share", "sub-decimal vesting not supported: %s is not a whole number of tokens", share)
	}

	self := c.cfg.Address
	if err := c.ledger.Mint(self, self, c.cfg.Credit, share, nil); err != nil {
		return nil, err
	}
	s, err := c.registry.Create(self)
	if err != nil {
		return nil, err
	}
	if err := c.credit.Approve(self, s.Escrow, share); err != nil {
		return nil, err
	}
	err = c.registry.Prepare(self, s.Index, vesting.PrepareParams{
		Beneficiary:  self,
		Asset:        c.credit.Key(),
		TotalAmount:  share.Div(unit),
		UnlockPeriod: c.cfg.UnlockPeriod,
		Duration:     c.cfg.Duration,
	})
	if err != nil {
		return nil, err
	}
	if err := c.credit.Approve(self, s.Escrow, types.ZeroAmount()); err != nil {
		return nil, err
	}
	if err := c.registry.SetStart(self, s.Index, c.j.Now()); err != nil {
		return nil, err
	}
	if vo := c.cfg.VestingOwner; !types.IsZero(vo) && vo != self {
		if err := c.registry.TransferOwnership(self, s.Index, vo); err != nil {
			return nil, err
		}
	}

	n := len(c.vestings)
	c.vestings = append(c.vestings, s.Index)
	c.j.Append(func() { c.vestings = c.vestings[:n] })
	return s, nil
}

// ──────────────────────────────────────────────────
// Batch claim
// ──────────────────────────────────────────────────

// ClaimVesting claims everything claimable from the converter's schedules
// in [start, start+count) and pays the total to the caller, who must be the
// share recipient. Schedules that are not active or have nothing to claim
// are skipped; indices past the end are ignored.
func (c *Converter) ClaimVesting(caller types.Address, start, count uint64) (*Sweep, error) {
	if caller != c.cfg.ShareRecipient {
		return nil, errs.Denied("caller %s is not the share recipient", caller.Hex())
	}

	now := c.j.Now()
	total := types.ZeroAmount()
	sweep := &Sweep{}
	for _, idx := range c.window(start, count) {
		s, err := c.registry.Get(idx)
		if err != nil {
			return nil, err
		}
		if s.Status != vesting.StatusActive || s.Beneficiary != c.cfg.Address {
			sweep.Skipped++
			continue
		}
		claimable := s.ClaimableAt(now)
		if claimable.IsZero() {
			sweep.Skipped++
			continue
		}
		if err := c.registry.Claim(c.cfg.Address, idx, claimable); err != nil {
			return nil, fmt.Errorf("converter %s: claim schedule %d: %w", c.cfg.Name, idx, err)
		}
		if total, err = total.Add(claimable); err != nil {
			return nil, err
		}
		sweep.Claimed++
	}

	units, err := total.Mul(asset.Unit(c.credit))
	if err != nil {
		return nil, err
	}
	if !units.IsZero() {
		if err := c.credit.Transfer(c.cfg.Address, caller, units); err != nil {
			return nil, err
		}
	}
	sweep.Total = units

	c.j.Emit(&event.VestingSwept{
		Converter: c.cfg.Name,
		Caller:    caller,
		Total:     units,
		Claimed:   sweep.Claimed,
		Skipped:   sweep.Skipped,
	})
	return sweep, nil
}

func (c *Converter) window(start, count uint64) []uint64 {
	n := uint64(len(c.vestings))
	if start >= n {
		return nil
	}
	end := n
	if count < n-start {
		end = start + count
	}
	return c.vestings[start:end]
}

// ──────────────────────────────────────────────────
// Views
// ──────────────────────────────────────────────────

// VestingCount returns the number of share schedules created.
func (c *Converter) VestingCount() int { return len(c.vestings) }

// Vestings returns up to count share schedules starting at start.
func (c *Converter) Vestings(start, count uint64) ([]*vesting.Schedule, error) {
	idxs := c.window(start, count)
	out := make([]*vesting.Schedule, 0, len(idxs))
	for _, idx := range idxs {
		s, err := c.registry.Get(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
