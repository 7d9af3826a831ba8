package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

func TestScheduleModelKeepsFullPrecision(t *testing.T) {
	total := types.MustParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	s := &vesting.Schedule{
		Entity:       types.NewEntity(time.Unix(1_700_000_000, 0)),
		ID:           id.NewScheduleID(),
		Index:        4,
		Escrow:       types.HexToAddress("0x01"),
		Owner:        types.HexToAddress("0x02"),
		Beneficiary:  types.HexToAddress("0x03"),
		Asset:        "usd",
		TotalAmount:  total,
		Claimed:      types.NewAmount(7),
		StartTime:    1_700_000_000,
		UnlockPeriod: 2_592_000,
		Duration:     36,
		Status:       vesting.StatusActive,
	}

	m := toScheduleModel(s)
	assert.Equal(t, total.String(), m.TotalAmount)
	assert.Equal(t, int64(4), m.Idx)

	back, err := fromScheduleModel(m)
	require.NoError(t, err)
	assert.True(t, back.TotalAmount.Equal(total))
	assert.True(t, back.InitialUnlocked.IsZero())
	assert.Equal(t, s.Beneficiary, back.Beneficiary)
	assert.Equal(t, s.ID.String(), back.ID.String())
	assert.Equal(t, vesting.StatusActive, back.Status)
}

func TestBalanceModelKey(t *testing.T) {
	b := &token.Balance{
		Account: types.HexToAddress("0x0000000000000000000000000000000000000b0b"),
		TokenID: types.NonFungibleID(1),
		Amount:  types.NewAmount(1),
	}
	m := toBalanceModel(b)
	assert.Equal(t, b.Key().String(), m.ID)

	back, err := fromBalanceModel(m)
	require.NoError(t, err)
	assert.True(t, back.TokenID.IsNonFungible())
	assert.Equal(t, b.Account, back.Account)

	m.Amount = "-1"
	_, err = fromBalanceModel(m)
	assert.Error(t, err)
}

func TestMigrationsRegistered(t *testing.T) {
	assert.NotNil(t, Migrations)
}
