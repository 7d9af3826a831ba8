package tokenledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/converter"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/store/memory"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

const month = uint64(30 * 24 * 3600)

var (
	t0 = time.Unix(1_700_000_000, 0)

	owner    = types.HexToAddress("0x1000000000000000000000000000000000000001")
	alice    = types.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob      = types.HexToAddress("0x0000000000000000000000000000000000000b0b")
	treasury = types.HexToAddress("0x000000000000000000000000000000000000dEaD")
	share    = types.HexToAddress("0x3000000000000000000000000000000000000003")
)

func amt(v uint64) types.Amount { return types.NewAmount(v) }

func ether(t *testing.T, v uint64) types.Amount {
	t.Helper()
	out, err := amt(v).Mul(types.Pow10(18))
	require.NoError(t, err)
	return out
}

type harness struct {
	engine *tokenledger.Engine
	store  *memory.Store
	clock  clockwork.FakeClock
}

func newHarness(t *testing.T, opts ...tokenledger.Option) *harness {
	t.Helper()
	s := memory.New()
	clock := clockwork.NewFakeClockAt(t0)
	opts = append([]tokenledger.Option{
		tokenledger.WithOwner(owner),
		tokenledger.WithClock(clock),
	}, opts...)
	e := tokenledger.New(s, opts...)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })
	return &harness{engine: e, store: s, clock: clock}
}

func (h *harness) events(t *testing.T, typ string) []*event.Event {
	t.Helper()
	evts, err := h.engine.ListEvents(context.Background(), event.ListOpts{Type: typ})
	require.NoError(t, err)
	return evts
}

func TestMintModes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	nft := types.NonFungibleID(1)
	require.NoError(t, e.Mint(ctx, owner, alice, nft, amt(1), nil))
	err := e.Mint(ctx, owner, bob, nft, amt(1), nil)
	assert.ErrorIs(t, err, tokenledger.ErrAlreadyMinted)
	assert.True(t, tokenledger.IsState(err))

	ft := types.FungibleID(7)
	require.NoError(t, e.Mint(ctx, owner, alice, ft, amt(2), nil))
	require.NoError(t, e.Mint(ctx, owner, alice, ft, amt(1), nil))
	assert.True(t, e.TotalSupply(ft).Equal(amt(3)))

	owned, err := e.OwnerOf(nft)
	require.NoError(t, err)
	assert.Equal(t, alice, owned)

	// Only successful mutations reach the log.
	assert.Len(t, h.events(t, event.TypeTransferSingle), 3)

	persisted, err := h.store.GetBalance(ctx, alice, ft)
	require.NoError(t, err)
	assert.True(t, persisted.Amount.Equal(amt(3)))
}

func TestEventSequenceAndTx(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	ids := []types.TokenID{types.FungibleID(1), types.FungibleID(2)}
	require.NoError(t, e.MintBatch(ctx, owner, alice, ids, []types.Amount{amt(5), amt(6)}, nil))
	require.NoError(t, e.GrantRole(ctx, owner, tokenledger.MinterRole, bob))

	all, err := e.ListEvents(ctx, event.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(1), all[0].Seq)
	assert.Equal(t, uint64(2), all[1].Seq)
	assert.Equal(t, id.PrefixTransaction, all[0].TxID.Prefix())
	assert.NotEqual(t, all[0].TxID.String(), all[1].TxID.String())
	assert.Equal(t, t0.Unix(), all[0].Timestamp)
}

func TestReceiverRejectionLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	ids := []types.TokenID{types.FungibleID(1), types.FungibleID(2)}
	require.NoError(t, e.MintBatch(ctx, owner, alice, ids, []types.Amount{amt(5), amt(5)}, nil))
	e.RegisterReceiver(bob, token.ReceiverFunc(func(_, _ types.Address, _ []types.TokenID, _ []types.Amount, _ []byte) error {
		return errors.New("not accepting")
	}))

	before := len(h.events(t, ""))
	err := e.TransferBatch(ctx, alice, alice, bob, ids, []types.Amount{amt(1), amt(1)}, nil)
	assert.ErrorIs(t, err, tokenledger.ErrReceiverRejected)

	assert.True(t, e.BalanceOf(alice, ids[0]).Equal(amt(5)))
	assert.True(t, e.BalanceOf(bob, ids[1]).IsZero())
	assert.Len(t, h.events(t, ""), before)
}

func TestHistoricalQueries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine
	id1 := types.FungibleID(1)
	nft := types.NonFungibleID(9)

	require.NoError(t, e.Mint(ctx, owner, alice, id1, amt(10), nil))
	require.NoError(t, e.Mint(ctx, owner, alice, nft, amt(1), nil))
	h.clock.Advance(100 * time.Second)
	require.NoError(t, e.Transfer(ctx, alice, alice, bob, id1, amt(4), nil))
	require.NoError(t, e.Transfer(ctx, alice, alice, bob, nft, amt(1), nil))

	start := t0.Unix()
	bal, err := e.BalanceOfAt(alice, id1, start+50)
	require.NoError(t, err)
	assert.True(t, bal.Equal(amt(10)))

	bal, err = e.BalanceOfAt(alice, id1, start+100)
	require.NoError(t, err)
	assert.True(t, bal.Equal(amt(6)))

	bal, err = e.BalanceOfAt(bob, id1, start-1)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	holder, err := e.OwnerOfAt(nft, start+99)
	require.NoError(t, err)
	assert.Equal(t, alice, holder)

	_, err = e.OwnerOfAt(nft, start-1)
	assert.ErrorIs(t, err, tokenledger.ErrNonexistentToken)

	_, err = e.BalanceOfAt(alice, id1, start+101)
	assert.ErrorIs(t, err, tokenledger.ErrFutureQuery)

	ts, ok := e.SnapshotAt(start + 99)
	require.True(t, ok)
	assert.Equal(t, start, ts)
}

func TestPauseBlocksTransfers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine
	id1 := types.FungibleID(1)

	require.NoError(t, e.Mint(ctx, owner, alice, id1, amt(10), nil))
	require.NoError(t, e.Pause(ctx, owner))
	assert.True(t, e.Paused())

	err := e.Transfer(ctx, alice, alice, bob, id1, amt(1), nil)
	assert.ErrorIs(t, err, tokenledger.ErrPaused)

	assert.True(t, tokenledger.IsPermission(e.Unpause(ctx, alice)))
	require.NoError(t, e.Unpause(ctx, owner))
	require.NoError(t, e.Transfer(ctx, alice, alice, bob, id1, amt(1), nil))
}

func TestNonBurnableEngine(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tokenledger.WithBurnable(false))
	e := h.engine
	id1 := types.FungibleID(1)

	assert.False(t, e.Burnable())
	require.NoError(t, e.Mint(ctx, owner, alice, id1, amt(10), nil))

	assert.ErrorIs(t, e.Burn(ctx, alice, alice, id1, amt(1)), tokenledger.ErrNotBurnable)
	assert.ErrorIs(t, e.BurnBatch(ctx, owner, alice, []types.TokenID{id1}, []types.Amount{amt(1)}), tokenledger.ErrNotBurnable)
	err := e.SetBurnApproval(ctx, owner, bob, true)
	assert.ErrorIs(t, err, tokenledger.ErrNotBurnable)
	assert.True(t, tokenledger.IsState(err))
	assert.False(t, e.IsBurnApproved(bob))
	assert.True(t, e.TotalSupply(id1).Equal(amt(10)))
}

func TestVestingLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	_, err := e.IssueToken(ctx, owner, "gem", 0)
	require.NoError(t, err)
	require.NoError(t, e.MintAsset(ctx, "gem", owner, owner, amt(300_000)))

	s, err := e.CreateSchedule(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, e.EscrowAddress(s.Index), s.Escrow)

	require.NoError(t, e.ApproveAsset(ctx, "gem", owner, s.Escrow, amt(300_000)))
	require.NoError(t, e.PrepareSchedule(ctx, owner, s.Index, vesting.PrepareParams{
		Authority:    owner,
		Beneficiary:  alice,
		Asset:        "gem",
		TotalAmount:  amt(300_000),
		UnlockPeriod: month,
		Duration:     36,
	}))

	_, err = e.ClaimableAmount(s.Index)
	assert.True(t, tokenledger.IsState(err), "views need an active schedule")

	require.NoError(t, e.StartSchedule(ctx, owner, s.Index, t0.Unix()))
	h.clock.Advance(time.Duration(month) * time.Second)

	claimable, err := e.ClaimableAmount(s.Index)
	require.NoError(t, err)
	assert.True(t, claimable.Equal(amt(8345)))

	unlocked, err := e.UnlockedAmount(s.Index)
	require.NoError(t, err)
	locked, err := e.LockedAmount(s.Index)
	require.NoError(t, err)
	sum, err := unlocked.Add(locked)
	require.NoError(t, err)
	assert.True(t, sum.Equal(amt(300_000)))

	next, err := e.NextUnlockTime(s.Index)
	require.NoError(t, err)
	assert.Equal(t, t0.Unix()+2*int64(month), next)

	require.NoError(t, e.Claim(ctx, alice, s.Index, amt(8000)))
	bal, err := e.AssetBalanceOf("gem", alice)
	require.NoError(t, err)
	assert.True(t, bal.Equal(amt(8000)))

	// Stray tokens sent straight to escrow are swept by revoke.
	require.NoError(t, e.MintAsset(ctx, "gem", owner, s.Escrow, amt(5)))
	require.NoError(t, e.Revoke(ctx, owner, s.Index, treasury))

	escrow, err := e.AssetBalanceOf("gem", s.Escrow)
	require.NoError(t, err)
	assert.True(t, escrow.IsZero())
	bal, err = e.AssetBalanceOf("gem", alice)
	require.NoError(t, err)
	assert.True(t, bal.Equal(amt(8000)), "unclaimed funds are forfeited")
	returned, err := e.AssetBalanceOf("gem", treasury)
	require.NoError(t, err)
	assert.True(t, returned.Equal(amt(300_000-8000+5)))

	// Revoking again is a silent no-op.
	before := len(h.events(t, event.TypeVestingRevoked))
	require.NoError(t, e.Revoke(ctx, owner, s.Index, treasury))
	assert.Len(t, h.events(t, event.TypeVestingRevoked), before)

	persisted, err := h.store.GetSchedule(ctx, s.Index)
	require.NoError(t, err)
	assert.Equal(t, vesting.StatusRevoked, persisted.Status)
}

func TestPrepareFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	_, err := e.IssueToken(ctx, owner, "gem", 0)
	require.NoError(t, err)
	require.NoError(t, e.MintAsset(ctx, "gem", owner, owner, amt(10)))
	s, err := e.CreateSchedule(ctx, owner)
	require.NoError(t, err)

	// No allowance for the escrow.
	err = e.PrepareSchedule(ctx, owner, s.Index, vesting.PrepareParams{
		Authority: owner, Beneficiary: alice, Asset: "gem",
		TotalAmount: amt(10), UnlockPeriod: month, Duration: 10,
	})
	assert.True(t, tokenledger.IsInsufficientFunds(err))

	got, err := e.Schedule(s.Index)
	require.NoError(t, err)
	assert.Equal(t, vesting.StatusCreated, got.Status)
	bal, err := e.AssetBalanceOf("gem", owner)
	require.NoError(t, err)
	assert.True(t, bal.Equal(amt(10)))
}

func setupConverter(t *testing.T, h *harness) *converter.Converter {
	t.Helper()
	ctx := context.Background()
	e := h.engine

	_, err := e.IssueToken(ctx, owner, "usd", 18)
	require.NoError(t, err)
	c, err := e.AddConverter(ctx, owner, converter.Config{
		Name:            "main",
		Credit:          types.FungibleID(1),
		Decimals:        18,
		PaymentAsset:    "usd",
		Treasury:        treasury,
		ShareRecipient:  share,
		SharePerMillion: 50_000,
		UnlockPeriod:    month,
		Duration:        36,
	})
	require.NoError(t, err)
	assert.True(t, e.HasRole(tokenledger.MinterRole, c.Address()))
	assert.Equal(t, owner, c.Config().VestingOwner)

	require.NoError(t, e.MintAsset(ctx, "usd", owner, alice, ether(t, 20_000)))
	require.NoError(t, e.ApproveAsset(ctx, "usd", alice, c.Address(), ether(t, 20_000)))
	return c
}

func TestConvert(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine
	setupConverter(t, h)
	credit := types.FungibleID(1)

	conv, err := e.Convert(ctx, "main", alice, ether(t, 10_000), false)
	require.NoError(t, err)
	assert.True(t, conv.Share.Equal(ether(t, 500)))
	assert.True(t, e.BalanceOf(alice, credit).Equal(ether(t, 9_500)))
	assert.True(t, e.BalanceOf(share, credit).Equal(ether(t, 500)))

	sink, err := e.AssetBalanceOf("usd", treasury)
	require.NoError(t, err)
	assert.True(t, sink.Equal(ether(t, 10_000)))

	_, err = e.Convert(ctx, "missing", alice, ether(t, 1), false)
	assert.ErrorIs(t, err, tokenledger.ErrConverterNotFound)

	list, err := e.ListBalances(ctx, token.ListOpts{TokenID: &credit})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestConvertWithVestingWholeShare(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine
	c := setupConverter(t, h)
	credit := types.FungibleID(1)

	conv, err := e.Convert(ctx, "main", alice, ether(t, 10_000), true)
	require.NoError(t, err)
	require.True(t, conv.Vested)
	assert.True(t, e.BalanceOf(alice, credit).Equal(ether(t, 9_500)))
	assert.True(t, e.BalanceOf(c.Address(), credit).IsZero())

	s, err := e.Schedule(conv.VestingIndex)
	require.NoError(t, err)
	assert.True(t, e.BalanceOf(s.Escrow, credit).Equal(ether(t, 500)))

	_, err = e.Convert(ctx, "main", alice, ether(t, 10), true)
	assert.True(t, tokenledger.IsValidation(err))
}

func TestConvertByTransferAndCall(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine
	c := setupConverter(t, h)

	require.NoError(t, e.TransferAndCall(ctx, "usd", alice, c.Address(), ether(t, 1_000), []byte{converter.PayloadDirect}))
	assert.True(t, e.BalanceOf(alice, types.FungibleID(1)).Equal(ether(t, 950)))

	err := e.TransferAndCall(ctx, "usd", alice, c.Address(), ether(t, 1_000), nil)
	assert.ErrorIs(t, err, tokenledger.ErrReceiverRejected)
	bal, err := e.AssetBalanceOf("usd", alice)
	require.NoError(t, err)
	assert.True(t, bal.Equal(ether(t, 19_000)), "rejected payment is rolled back")
}

func TestFailedAddConverterInstallsNoHook(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	_, err := e.IssueToken(ctx, owner, "usd", 18)
	require.NoError(t, err)
	require.NoError(t, e.MintAsset(ctx, "usd", owner, alice, ether(t, 1_000)))

	// alice cannot grant MinterRole, so the registration rolls back.
	_, err = e.AddConverter(ctx, alice, converter.Config{
		Name:            "main",
		Credit:          types.FungibleID(1),
		Decimals:        18,
		PaymentAsset:    "usd",
		Treasury:        treasury,
		ShareRecipient:  share,
		SharePerMillion: 50_000,
		UnlockPeriod:    month,
		Duration:        36,
	})
	require.Error(t, err)

	addr := converter.DeriveAddress("main")
	require.NoError(t, e.TransferAndCall(ctx, "usd", alice, addr, ether(t, 1_000), []byte{converter.PayloadDirect}))
	bal, err := e.AssetBalanceOf("usd", addr)
	require.NoError(t, err)
	assert.True(t, bal.Equal(ether(t, 1_000)), "a plain transfer, no conversion")
	assert.True(t, e.BalanceOf(alice, types.FungibleID(1)).IsZero())
}

func TestClaimVestingSkipsRevoked(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine
	c := setupConverter(t, h)

	for i := 0; i < 4; i++ {
		_, err := e.Convert(ctx, "main", alice, ether(t, 720), true)
		require.NoError(t, err)
	}
	vs, err := e.ConverterVestings("main", 0, 10)
	require.NoError(t, err)
	require.Len(t, vs, 4)

	h.clock.Advance(time.Duration(month) * time.Second)
	require.NoError(t, e.Revoke(ctx, owner, vs[1].Index, owner))

	sweep, err := e.ClaimVesting(ctx, "main", share, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, sweep.Claimed)
	assert.True(t, sweep.Total.Equal(ether(t, 3)))
	assert.True(t, e.BalanceOf(share, types.FungibleID(1)).Equal(ether(t, 3)))
	assert.True(t, e.BalanceOf(owner, types.FungibleID(1)).Equal(ether(t, 36)))
	assert.True(t, e.BalanceOf(c.Address(), types.FungibleID(1)).IsZero())

	swept := h.events(t, event.TypeVestingSwept)
	require.Len(t, swept, 1)
	assert.Equal(t, ether(t, 3).String(), swept[0].Attributes["total"])
}

// flakyStore fails Apply a fixed number of times.
type flakyStore struct {
	*memory.Store
	mu       sync.Mutex
	failures int
	err      error
}

func (s *flakyStore) Apply(ctx context.Context, b *store.Batch) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return s.err
	}
	s.mu.Unlock()
	return s.Store.Apply(ctx, b)
}

func TestPersistRetriesRetryableErrors(t *testing.T) {
	ctx := context.Background()
	s := &flakyStore{Store: memory.New(), failures: 2, err: errs.ErrStoreNotReady}
	e := tokenledger.New(s, tokenledger.WithOwner(owner), tokenledger.WithPersistRetry(3, time.Second))
	require.NoError(t, e.Start(ctx))

	require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), amt(1), nil))
	last, err := s.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), last)
}

func TestPersistFailureRevertsTransaction(t *testing.T) {
	ctx := context.Background()
	s := &flakyStore{Store: memory.New(), failures: 1, err: errors.New("disk on fire")}
	e := tokenledger.New(s, tokenledger.WithOwner(owner))
	require.NoError(t, e.Start(ctx))

	err := e.Mint(ctx, owner, alice, types.FungibleID(1), amt(1), nil)
	assert.ErrorIs(t, err, tokenledger.ErrStoreFailed)
	assert.True(t, e.TotalSupply(types.FungibleID(1)).IsZero())

	// The sequence is not consumed by the failed transaction.
	require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), amt(1), nil))
	evts, err := e.ListEvents(ctx, event.ListOpts{})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, uint64(1), evts[0].Seq)
}

// tornStore lands a batch's read models but fails before its events.
type tornStore struct {
	*memory.Store
	mu       sync.Mutex
	failures int
}

func (s *tornStore) Apply(ctx context.Context, b *store.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures == 0 {
		return s.Store.Apply(ctx, b)
	}
	s.failures--
	partial := &store.Batch{TxID: b.TxID, Balances: b.Balances, Schedules: b.Schedules}
	if err := s.Store.Apply(ctx, partial); err != nil {
		return err
	}
	return errors.New("connection reset while writing events")
}

func TestPersistFailureRestoresReadModels(t *testing.T) {
	ctx := context.Background()

	t.Run("balances", func(t *testing.T) {
		s := &tornStore{Store: memory.New()}
		e := tokenledger.New(s, tokenledger.WithOwner(owner))
		require.NoError(t, e.Start(ctx))
		require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), amt(5), nil))

		s.failures = 1
		err := e.Mint(ctx, owner, alice, types.FungibleID(1), amt(7), nil)
		assert.ErrorIs(t, err, tokenledger.ErrStoreFailed)

		bal, err := s.GetBalance(ctx, alice, types.FungibleID(1))
		require.NoError(t, err)
		assert.True(t, bal.Amount.Equal(amt(5)), "got %s", bal.Amount)
		assert.True(t, e.BalanceOf(alice, types.FungibleID(1)).Equal(amt(5)))

		last, err := s.LastSequence(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), last)
	})

	t.Run("created schedule is removed", func(t *testing.T) {
		s := &tornStore{Store: memory.New(), failures: 1}
		e := tokenledger.New(s, tokenledger.WithOwner(owner))
		require.NoError(t, e.Start(ctx))

		_, err := e.CreateSchedule(ctx, owner)
		assert.ErrorIs(t, err, tokenledger.ErrStoreFailed)

		_, err = s.GetSchedule(ctx, 0)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		list, err := s.ListSchedules(ctx, vesting.ListOpts{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

type txRecorder struct {
	mu        sync.Mutex
	committed []string
	reverted  []string
}

func (r *txRecorder) Name() string { return "tx-recorder" }

func (r *txRecorder) OnTxCommitted(_ context.Context, _ id.TxID, op string, _ []*event.Event, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, op)
	return nil
}

func (r *txRecorder) OnTxReverted(_ context.Context, op string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reverted = append(r.reverted, op)
	return nil
}

func TestPluginsSeeCommitsAndReverts(t *testing.T) {
	ctx := context.Background()
	rec := &txRecorder{}
	h := newHarness(t, tokenledger.WithPlugin(rec))
	e := h.engine

	require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), amt(1), nil))
	assert.Error(t, e.Burn(ctx, bob, alice, types.FungibleID(1), amt(1)))

	assert.Equal(t, []string{"mint"}, rec.committed)
	assert.Equal(t, []string{"burn"}, rec.reverted)
}

func TestResumeSequenceOnStart(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Apply(ctx, &store.Batch{Events: []*event.Event{{ID: id.NewEventID(), Seq: 41, Type: "seed"}}}))

	e := tokenledger.New(s, tokenledger.WithOwner(owner))
	require.NoError(t, e.Start(ctx))
	require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), amt(1), nil))

	last, err := s.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), last)
}
