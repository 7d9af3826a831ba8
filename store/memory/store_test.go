package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/store"
	"github.com/xraph/tokenledger/store/memory"
	"github.com/xraph/tokenledger/token"
	"github.com/xraph/tokenledger/types"
	"github.com/xraph/tokenledger/vesting"
)

var (
	alice = types.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = types.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func evt(seq uint64, tx id.TxID, typ string) *event.Event {
	return &event.Event{ID: id.NewEventID(), Seq: seq, TxID: tx, Type: typ, Attributes: map[string]string{"seq": typ}}
}

func TestApplyAndListEvents(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	tx1, tx2 := id.NewTxID(), id.NewTxID()
	require.NoError(t, s.Apply(ctx, &store.Batch{TxID: tx1, Events: []*event.Event{
		evt(1, tx1, event.TypeTransferSingle),
		evt(2, tx1, event.TypeRoleGranted),
	}}))
	require.NoError(t, s.Apply(ctx, &store.Batch{TxID: tx2, Events: []*event.Event{
		evt(3, tx2, event.TypeTransferSingle),
	}}))

	last, err := s.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), last)

	all, err := s.ListEvents(ctx, event.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(1), all[0].Seq)

	transfers, err := s.ListEvents(ctx, event.ListOpts{Type: event.TypeTransferSingle})
	require.NoError(t, err)
	assert.Len(t, transfers, 2)

	after, err := s.ListEvents(ctx, event.ListOpts{AfterSeq: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, uint64(2), after[0].Seq)

	byTx, err := s.ListEvents(ctx, event.ListOpts{TxID: tx2})
	require.NoError(t, err)
	require.Len(t, byTx, 1)
	assert.Equal(t, uint64(3), byTx[0].Seq)

	err = s.Apply(ctx, &store.Batch{Events: []*event.Event{evt(3, tx2, event.TypeURI)}})
	assert.Error(t, err)
}

func TestBalancesUpsert(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	id1 := types.FungibleID(1)
	now := time.Now().UTC()

	require.NoError(t, s.Apply(ctx, &store.Batch{Balances: []*token.Balance{
		{Account: alice, TokenID: id1, Amount: types.NewAmount(10), UpdatedAt: now},
		{Account: bob, TokenID: id1, Amount: types.NewAmount(5), UpdatedAt: now},
	}}))
	require.NoError(t, s.Apply(ctx, &store.Batch{Balances: []*token.Balance{
		{Account: bob, TokenID: id1, Amount: types.ZeroAmount(), UpdatedAt: now},
	}}))

	b, err := s.GetBalance(ctx, alice, id1)
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(types.NewAmount(10)))

	list, err := s.ListBalances(ctx, token.ListOpts{TokenID: &id1})
	require.NoError(t, err)
	require.Len(t, list, 1, "zero balances are not listed")
	assert.Equal(t, alice, list[0].Account)

	_, err = s.GetBalance(ctx, alice, types.FungibleID(2))
	assert.True(t, errs.IsNotFound(err))
}

func TestSchedules(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.Apply(ctx, &store.Batch{Schedules: []*vesting.Schedule{
		{Index: 0, Owner: alice, Beneficiary: bob, Status: vesting.StatusActive},
		{Index: 1, Owner: alice, Beneficiary: alice, Status: vesting.StatusCreated},
	}}))
	require.NoError(t, s.Apply(ctx, &store.Batch{Schedules: []*vesting.Schedule{
		{Index: 1, Owner: alice, Beneficiary: alice, Status: vesting.StatusRevoked},
	}}))

	sch, err := s.GetSchedule(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, vesting.StatusRevoked, sch.Status)

	active, err := s.ListSchedules(ctx, vesting.ListOpts{Status: vesting.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint64(0), active[0].Index)

	mine, err := s.ListSchedules(ctx, vesting.ListOpts{Owner: &alice})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = s.GetSchedule(ctx, 9)
	assert.ErrorIs(t, err, errs.ErrScheduleNotFound)
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(ctx), errs.ErrStoreNotReady)
	assert.True(t, errs.IsRetryable(s.Apply(ctx, &store.Batch{})))
}
