package vesting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger/asset"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

const (
	period = int64(2628000)
	start  = int64(33197904000)
)

var (
	owner        = types.HexToAddress("0x1000000000000000000000000000000000000001")
	beneficiary1 = types.HexToAddress("0x2000000000000000000000000000000000000002")
	beneficiary2 = types.HexToAddress("0x3000000000000000000000000000000000000003")
	registryAddr = types.HexToAddress("0x9000000000000000000000000000000000000009")
)

func amt(v uint64) types.Amount { return types.NewAmount(v) }

// tokens returns v whole tokens at 18 decimals.
func tokens(t *testing.T, v uint64) types.Amount {
	t.Helper()
	out, err := amt(v).Mul(types.Pow10(18))
	require.NoError(t, err)
	return out
}

type fixture struct {
	j   *journal.Journal
	tok *asset.Token
	reg *vesting.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	j := journal.New()
	j.Begin(start - 1000)
	tok := asset.NewToken(j, "game", 18, owner)
	require.NoError(t, tok.Mint(owner, owner, tokens(t, 1_000_000_000)))
	assets := asset.Registry{}
	assets.Add(tok)
	return &fixture{j: j, tok: tok, reg: vesting.NewRegistry(j, registryAddr, assets)}
}

func (f *fixture) at(ts int64) { f.j.Begin(ts) }

// prepared creates and prepares a schedule for total whole tokens.
func (f *fixture) prepared(t *testing.T, total, duration uint64) uint64 {
	t.Helper()
	s, err := f.reg.Create(owner)
	require.NoError(t, err)
	require.NoError(t, f.tok.Approve(owner, s.Escrow, tokens(t, total)))
	require.NoError(t, f.reg.Prepare(owner, s.Index, vesting.PrepareParams{
		Beneficiary:  beneficiary1,
		Asset:        "game",
		TotalAmount:  amt(total),
		UnlockPeriod: uint64(period),
		Duration:     duration,
	}))
	return s.Index
}

func (f *fixture) active(t *testing.T, total, duration uint64) uint64 {
	t.Helper()
	idx := f.prepared(t, total, duration)
	require.NoError(t, f.reg.SetStart(owner, idx, start))
	return idx
}

func TestPrepare(t *testing.T) {
	f := newFixture(t)
	idx := f.prepared(t, 300_000, 36)

	s, err := f.reg.Get(idx)
	require.NoError(t, err)
	assert.Equal(t, vesting.StatusPrepared, s.Status)
	assert.Equal(t, f.reg.EscrowAddress(idx), s.Escrow)
	assert.True(t, f.tok.BalanceOf(owner).Equal(tokens(t, 1_000_000_000-300_000)))
	assert.True(t, f.tok.BalanceOf(s.Escrow).Equal(tokens(t, 300_000)))
}

func TestPrepareValidation(t *testing.T) {
	base := vesting.PrepareParams{
		Beneficiary:  beneficiary1,
		Asset:        "game",
		TotalAmount:  amt(300_000),
		UnlockPeriod: uint64(period),
		Duration:     36,
	}

	tests := []struct {
		name   string
		mutate func(*vesting.PrepareParams)
		check  func(error) bool
	}{
		{"zero beneficiary", func(p *vesting.PrepareParams) { p.Beneficiary = types.ZeroAddress }, errs.IsValidation},
		{"zero period", func(p *vesting.PrepareParams) { p.UnlockPeriod = 0 }, errs.IsValidation},
		{"zero duration", func(p *vesting.PrepareParams) { p.Duration = 0 }, errs.IsValidation},
		{"total below duration", func(p *vesting.PrepareParams) { p.TotalAmount = amt(59); p.Duration = 60 }, errs.IsValidation},
		{"zero amount", func(p *vesting.PrepareParams) { p.TotalAmount = amt(0) }, errs.IsValidation},
		{"initial above total", func(p *vesting.PrepareParams) { p.InitialUnlocked = amt(300_001) }, errs.IsValidation},
		{"unknown asset", func(p *vesting.PrepareParams) { p.Asset = "nope" }, errs.IsNotFound},
		{"insufficient allowance", func(p *vesting.PrepareParams) { p.TotalAmount = amt(300_001) }, errs.IsInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s, err := f.reg.Create(owner)
			require.NoError(t, err)
			require.NoError(t, f.tok.Approve(owner, s.Escrow, tokens(t, 300_000)))

			p := base
			tt.mutate(&p)
			err = f.reg.Prepare(owner, s.Index, p)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}

	t.Run("not owner", func(t *testing.T) {
		f := newFixture(t)
		s, err := f.reg.Create(owner)
		require.NoError(t, err)
		assert.True(t, errs.IsPermission(f.reg.Prepare(beneficiary1, s.Index, base)))
	})

	t.Run("twice", func(t *testing.T) {
		f := newFixture(t)
		idx := f.prepared(t, 300_000, 36)
		assert.True(t, errs.IsState(f.reg.Prepare(owner, idx, base)))
	})
}

func TestSetStart(t *testing.T) {
	f := newFixture(t)
	idx := f.prepared(t, 300_000, 36)

	assert.True(t, errs.IsValidation(f.reg.SetStart(owner, idx, 0)))
	assert.True(t, errs.IsPermission(f.reg.SetStart(beneficiary1, idx, start)))

	require.NoError(t, f.reg.SetStart(owner, idx, start))
	s, err := f.reg.Get(idx)
	require.NoError(t, err)
	assert.Equal(t, start+36*period, s.EndTime())

	assert.True(t, errs.IsState(f.reg.SetStart(owner, idx, start)))
}

func TestUnlockSchedule(t *testing.T) {
	tests := []struct {
		name      string
		total     uint64
		duration  uint64
		elapsed   int64
		claimable uint64
	}{
		{"one period minus 10s", 300_000, 36, period - 10, 0},
		{"one period", 300_000, 36, period, 8333 + 12},
		{"one period plus 1s", 300_000, 36, period + 1, 8333 + 12},
		{"two periods", 300_000, 36, 2 * period, 8333*2 + 12},
		{"36 periods minus 10s", 300_000, 36, 36*period - 10, 300_000 - 8333},
		{"36 periods", 300_000, 36, 36 * period, 300_000},
		{"37 periods", 300_000, 36, 37 * period, 300_000},
		{"1000 over 36", 1000, 36, period, 27 + 28},
		{"36 over 36", 36, 36, period, 1},
		{"1M over 60", 1_000_000, 60, period, 16666 + 40},
		{"1M over 60, done", 1_000_000, 60, 60 * period, 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			idx := f.active(t, tt.total, tt.duration)

			now := start + tt.elapsed
			got, err := f.reg.ClaimableAmount(idx, now)
			require.NoError(t, err)
			assert.True(t, got.Equal(amt(tt.claimable)), "claimable %s, want %d", got, tt.claimable)

			unlocked, err := f.reg.UnlockedAmount(idx, now)
			require.NoError(t, err)
			locked, err := f.reg.LockedAmount(idx, now)
			require.NoError(t, err)
			sum, err := unlocked.Add(locked)
			require.NoError(t, err)
			assert.True(t, sum.Equal(amt(tt.total)))

			if tt.claimable > 0 {
				f.at(now)
				require.NoError(t, f.reg.Claim(beneficiary1, idx, amt(tt.claimable)))
				assert.True(t, f.tok.BalanceOf(beneficiary1).Equal(tokens(t, tt.claimable)))
			}
		})
	}
}

func TestInitialUnlocked(t *testing.T) {
	f := newFixture(t)
	s, err := f.reg.Create(owner)
	require.NoError(t, err)
	require.NoError(t, f.tok.Approve(owner, s.Escrow, tokens(t, 1000)))
	require.NoError(t, f.reg.Prepare(owner, s.Index, vesting.PrepareParams{
		Beneficiary:     beneficiary1,
		Asset:           "game",
		TotalAmount:     amt(1000),
		InitialUnlocked: amt(100),
		UnlockPeriod:    uint64(period),
		Duration:        10,
	}))
	require.NoError(t, f.reg.SetStart(owner, s.Index, start))

	got, err := f.reg.ClaimableAmount(s.Index, start)
	require.NoError(t, err)
	assert.True(t, got.Equal(amt(100)))

	got, err = f.reg.ClaimableAmount(s.Index, start+period)
	require.NoError(t, err)
	assert.True(t, got.Equal(amt(190)))
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	idx := f.prepared(t, 300_000, 36)

	_, err := f.reg.NextUnlockTime(idx, start)
	assert.True(t, errs.IsState(err))
	_, err = f.reg.ClaimableAmount(idx, start)
	assert.True(t, errs.IsState(err))

	require.NoError(t, f.reg.SetStart(owner, idx, start))

	tests := []struct {
		name string
		now  int64
		next int64
	}{
		{"right before start", start - 10, start + period},
		{"exact start", start, start + period},
		{"after one period", start + period, start + 2*period},
		{"right before last unlock", start + 36*period - 10, start + 36*period},
	}
	for _, tt := range tests {
		next, err := f.reg.NextUnlockTime(idx, tt.now)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.next, next, tt.name)
	}

	_, err = f.reg.NextUnlockTime(idx, start+36*period)
	assert.ErrorIs(t, err, errs.ErrNoRemainingUnlocks)

	_, err = f.reg.NextUnlockTime(99, start)
	assert.ErrorIs(t, err, errs.ErrScheduleNotFound)
}

func TestClaimFailures(t *testing.T) {
	f := newFixture(t)
	idx := f.prepared(t, 300_000, 36)

	f.at(start + period)
	assert.True(t, errs.IsState(f.reg.Claim(beneficiary1, idx, amt(1))))

	require.NoError(t, f.reg.SetStart(owner, idx, start))
	assert.True(t, errs.IsPermission(f.reg.Claim(beneficiary2, idx, amt(10))))
	assert.True(t, errs.IsValidation(f.reg.Claim(beneficiary1, idx, amt(0))))
	assert.True(t, errs.IsInsufficientFunds(f.reg.Claim(beneficiary1, idx, amt(8346))))

	require.NoError(t, f.reg.Claim(beneficiary1, idx, amt(5000)))
	got, err := f.reg.ClaimableAmount(idx, start+period)
	require.NoError(t, err)
	assert.True(t, got.Equal(amt(3333+12)))
}

func TestRevoke(t *testing.T) {
	t.Run("prepared returns everything", func(t *testing.T) {
		f := newFixture(t)
		idx := f.prepared(t, 300_000, 36)
		require.NoError(t, f.reg.Revoke(owner, idx, types.ZeroAddress))

		s, _ := f.reg.Get(idx)
		assert.Equal(t, vesting.StatusRevoked, s.Status)
		assert.True(t, f.tok.BalanceOf(owner).Equal(tokens(t, 1_000_000_000)))
		assert.True(t, f.tok.BalanceOf(s.Escrow).IsZero())
	})

	t.Run("active after claiming some", func(t *testing.T) {
		f := newFixture(t)
		idx := f.active(t, 300_000, 36)

		f.at(start + 12*period)
		require.NoError(t, f.reg.Claim(beneficiary1, idx, amt(100_000)))
		require.NoError(t, f.reg.Revoke(owner, idx, owner))

		// The 8 unlocked but unclaimed units are forfeited to the owner.
		assert.True(t, f.tok.BalanceOf(beneficiary1).Equal(tokens(t, 100_000)))
		assert.True(t, f.tok.BalanceOf(owner).Equal(tokens(t, 999_900_000)))
		s, _ := f.reg.Get(idx)
		assert.True(t, f.tok.BalanceOf(s.Escrow).IsZero())
		assert.True(t, s.Claimed.Equal(amt(100_000)))
	})

	t.Run("ended with nothing claimed returns everything", func(t *testing.T) {
		f := newFixture(t)
		idx := f.active(t, 300_000, 36)

		f.at(start + 40*period)
		require.NoError(t, f.reg.Revoke(owner, idx, owner))

		assert.True(t, f.tok.BalanceOf(owner).Equal(tokens(t, 1_000_000_000)))
		assert.True(t, f.tok.BalanceOf(beneficiary1).IsZero())
		evts := f.j.Events()
		last := evts[len(evts)-1]
		assert.Equal(t, event.TypeVestingRevoked, last.Type)
		assert.Equal(t, tokens(t, 300_000).String(), last.Attributes["returned_to_owner"])
	})

	t.Run("stray tokens are swept to the owner", func(t *testing.T) {
		f := newFixture(t)
		idx := f.active(t, 300_000, 36)
		s, _ := f.reg.Get(idx)
		require.NoError(t, f.tok.Transfer(owner, s.Escrow, tokens(t, 100_000)))

		f.at(start + 36*period)
		require.NoError(t, f.reg.Claim(beneficiary1, idx, amt(300_000)))
		require.NoError(t, f.reg.Revoke(owner, idx, owner))

		assert.True(t, f.tok.BalanceOf(owner).Equal(tokens(t, 999_700_000)))
		assert.True(t, f.tok.BalanceOf(beneficiary1).Equal(tokens(t, 300_000)))
		assert.True(t, f.tok.BalanceOf(s.Escrow).IsZero())
	})

	t.Run("twice is a silent no-op", func(t *testing.T) {
		f := newFixture(t)
		idx := f.prepared(t, 300_000, 36)
		require.NoError(t, f.reg.Revoke(owner, idx, owner))
		n := len(f.j.Events())
		require.NoError(t, f.reg.Revoke(owner, idx, owner))
		assert.Len(t, f.j.Events(), n)
		assert.Equal(t, event.TypeVestingRevoked, f.j.Events()[n-1].Type)
	})

	t.Run("created is rejected", func(t *testing.T) {
		f := newFixture(t)
		s, err := f.reg.Create(owner)
		require.NoError(t, err)
		assert.True(t, errs.IsState(f.reg.Revoke(owner, s.Index, owner)))
	})

	t.Run("setStart after revoke", func(t *testing.T) {
		f := newFixture(t)
		idx := f.prepared(t, 300_000, 36)
		require.NoError(t, f.reg.Revoke(owner, idx, owner))
		assert.True(t, errs.IsState(f.reg.SetStart(owner, idx, start)))
		assert.True(t, errs.IsPermission(f.reg.Revoke(beneficiary1, idx, beneficiary1)))
	})
}

func TestChangeBeneficiary(t *testing.T) {
	f := newFixture(t)
	idx := f.prepared(t, 300_000, 36)

	assert.True(t, errs.IsPermission(f.reg.ChangeBeneficiary(beneficiary2, idx, beneficiary2)))
	require.NoError(t, f.reg.ChangeBeneficiary(beneficiary1, idx, beneficiary1))
	require.NoError(t, f.reg.SetStart(owner, idx, start))

	f.at(start + period)
	require.NoError(t, f.reg.Claim(beneficiary1, idx, amt(1000)))
	require.NoError(t, f.reg.ChangeBeneficiary(beneficiary1, idx, beneficiary2))
	assert.True(t, errs.IsPermission(f.reg.Claim(beneficiary1, idx, amt(1))))
	require.NoError(t, f.reg.Claim(beneficiary2, idx, amt(7345)))

	require.NoError(t, f.reg.Revoke(owner, idx, owner))
	assert.True(t, errs.IsState(f.reg.ChangeBeneficiary(beneficiary2, idx, beneficiary1)))
}

func TestTransferScheduleOwnership(t *testing.T) {
	f := newFixture(t)
	s, err := f.reg.Create(owner)
	require.NoError(t, err)

	require.NoError(t, f.reg.TransferOwnership(owner, s.Index, beneficiary2))
	assert.True(t, errs.IsPermission(f.reg.TransferOwnership(owner, s.Index, owner)))

	got, err := f.reg.Get(s.Index)
	require.NoError(t, err)
	assert.Equal(t, beneficiary2, got.Owner)
}

func TestRevertDropsSchedule(t *testing.T) {
	f := newFixture(t)
	f.at(start)
	_, err := f.reg.Create(owner)
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(0)}, f.j.Touched(journal.KindSchedule))
	f.j.Revert()
	assert.Equal(t, 0, f.reg.Len())
}
