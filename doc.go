// Package tokenledger provides an embeddable multi-asset token ledger with
// historical queries, linear vesting and payment-to-credit conversion.
//
// Tokenledger is designed as a library, not a service. Import it directly
// into your Go application. It provides:
//
//   - A dual-mode ledger: one 256-bit id space where the high bit marks
//     non-fungible ids (supply 0 or 1, ever)
//   - Flat role and capability based access control with pause
//   - Point-in-time balance and owner queries backed by checkpoint history
//   - Vesting schedules with escrow, revocation and beneficiary transfer
//   - Converters that exchange a payment asset for credit and split off a
//     fee share, optionally time-locked
//   - A durable event log and balance/schedule read models in PostgreSQL,
//     SQLite, MongoDB or memory
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/tokenledger"
//	    "github.com/xraph/tokenledger/store/memory"
//	)
//
//	owner := tokenledger.HexToAddress("0x...")
//	e := tokenledger.New(memory.New(), tokenledger.WithOwner(owner))
//	if err := e.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Stop(ctx)
//
// # Transactions
//
// Every mutating call is one transaction. It either applies completely,
// emitting its events and persisting the changed records, or fails with no
// effect at all:
//
//	nft := tokenledger.NonFungibleID(1)
//	err := e.Mint(ctx, owner, alice, nft, tokenledger.NewAmount(1), nil)
//	err = e.Mint(ctx, owner, alice, nft, tokenledger.NewAmount(1), nil)
//	// errors.Is(err, tokenledger.ErrAlreadyMinted)
//
// Time comes from the engine clock (see WithClock) and never decreases
// between transactions, so checkpoint history stays ordered.
//
// # Vesting
//
// A schedule is created, prepared with terms (which escrows the funds),
// then started. Amounts are whole units of the asset:
//
//	s, _ := e.CreateSchedule(ctx, owner)
//	_ = e.ApproveAsset(ctx, "usd", owner, s.Escrow, total)
//	_ = e.PrepareSchedule(ctx, owner, s.Index, vesting.PrepareParams{...})
//	_ = e.StartSchedule(ctx, owner, s.Index, start)
//
// # Errors
//
// Every error wraps one kind: ErrValidation, ErrPermissionDenied,
// ErrInvalidState, ErrInsufficientFunds, ErrReceiverRejected, ErrNotFound
// or ErrStoreFailed. Use errors.Is or the Is* helpers.
//
// # TypeID
//
// Events, transactions and schedules use TypeID identifiers:
//
//	evt_01h2xcejqtf2nbrexx3vqjhp41   // Event ID
//	tx_01h2xcejqtf2nbrexx3vqjhp41    // Transaction ID
//	vest_01h455vb4pex5vsknk084sn02q  // Vesting schedule ID
package tokenledger
