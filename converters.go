package tokenledger

import (
	"context"
	"fmt"

	"github.com/xraph/tokenledger/access"
	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/converter"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

// ──────────────────────────────────────────────────
// Converter registration
// ──────────────────────────────────────────────────

// AddConverter installs a converter. The caller must be able to grant
// MinterRole, which the converter's address receives. The credit id is
// registered as an asset when it is not one already, and the converter
// accepts TransferAndCall payments of an issued payment token. A zero
// VestingOwner defaults to the engine owner.
func (e *Engine) AddConverter(ctx context.Context, caller types.Address, cfg converter.Config) (*converter.Converter, error) {
	var (
		c       *converter.Converter
		payment asset.Asset
	)
	err := e.exec(ctx, "converter_add", func() error {
		if _, ok := e.converters[cfg.Name]; ok {
			return errs.State("converter %q already registered", cfg.Name)
		}
		if types.IsZero(cfg.VestingOwner) {
			cfg.VestingOwner = e.access.Owner()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		var err error
		payment, err = e.lookupAsset(cfg.PaymentAsset)
		if err != nil {
			return err
		}
		credit, err := e.creditAsset(cfg.Credit, cfg.Decimals)
		if err != nil {
			return err
		}
		c, err = converter.New(e.j, cfg, e.ledger, credit, payment, e.vesting)
		if err != nil {
			return err
		}
		if err := e.access.GrantRole(caller, access.MinterRole, c.Address()); err != nil {
			return err
		}
		journal.Set(e.j, e.converters, cfg.Name, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Hooks are not journaled, so they are installed only once committed.
	if t, ok := payment.(*asset.Token); ok {
		e.mu.Lock()
		t.RegisterRecipient(c.Address(), c)
		e.mu.Unlock()
	}

	e.logger.Info("converter added",
		"name", cfg.Name,
		"address", c.Address().Hex(),
		"credit", cfg.Credit.String(),
		"payment_asset", cfg.PaymentAsset,
	)
	return c, nil
}

// creditAsset returns the registered asset for the ledger id, registering
// one when missing.
func (e *Engine) creditAsset(id types.TokenID, decimals uint8) (*token.Asset, error) {
	for _, a := range e.assets {
		ta, ok := a.(*token.Asset)
		if !ok || !ta.TokenID().Equal(id) {
			continue
		}
		if ta.Decimals() != decimals {
			return nil, errs.Invalid("decimals", "credit %s is registered with %d decimals", id, ta.Decimals())
		}
		return ta, nil
	}
	ta, err := token.NewAsset(e.ledger, id, decimals, "")
	if err != nil {
		return nil, err
	}
	if err := e.addAsset(ta); err != nil {
		return nil, err
	}
	return ta, nil
}

// Converter returns the converter named name.
func (e *Engine) Converter(name string) (*converter.Converter, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lookupConverter(name)
}

func (e *Engine) lookupConverter(name string) (*converter.Converter, error) {
	c, ok := e.converters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrConverterNotFound, name)
	}
	return c, nil
}

// ──────────────────────────────────────────────────
// Conversion
// ──────────────────────────────────────────────────

// Convert takes amount of the converter's payment asset from payer (which
// must have approved the converter address) and mints credit.
func (e *Engine) Convert(ctx context.Context, name string, payer types.Address, amount types.Amount, withVesting bool) (*converter.Conversion, error) {
	var conv *converter.Conversion
	err := e.exec(ctx, "convert", func() error {
		c, err := e.lookupConverter(name)
		if err != nil {
			return err
		}
		conv, err = c.Convert(payer, amount, withVesting)
		return err
	})
	return conv, err
}

// ClaimVesting sweeps the converter's share schedules in
// [start, start+count) and pays the total to caller, the share recipient.
func (e *Engine) ClaimVesting(ctx context.Context, name string, caller types.Address, start, count uint64) (*converter.Sweep, error) {
	var sweep *converter.Sweep
	err := e.exec(ctx, "claim_vesting", func() error {
		c, err := e.lookupConverter(name)
		if err != nil {
			return err
		}
		sweep, err = c.ClaimVesting(caller, start, count)
		return err
	})
	return sweep, err
}

// ConverterVestings returns up to count share schedules of a converter.
func (e *Engine) ConverterVestings(name string, start, count uint64) ([]*vesting.Schedule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, err := e.lookupConverter(name)
	if err != nil {
		return nil, err
	}
	return c.Vestings(start, count)
}
