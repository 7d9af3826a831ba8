package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/id"
	"github.com/xraph/tokenledger/types"
)

func TestEventModelEncodesAttributes(t *testing.T) {
	e := event.New(&event.TransferSingle{
		Operator: types.HexToAddress("0x01"),
		To:       types.HexToAddress("0x02"),
		ID:       types.FungibleID(7),
		Amount:   types.NewAmount(3),
	}, 1_700_000_000)
	e.Seq = 12
	e.TxID = id.NewTxID()

	m := toEventModel(e)
	assert.Contains(t, m.Attributes, `"amount":"3"`)

	back, err := fromEventModel(m)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), back.Seq)
	assert.Equal(t, e.TxID.String(), back.TxID.String())
	assert.Equal(t, e.Attributes, back.Attributes)
	assert.Nil(t, back.Payload)
}

func TestEventModelRejectsBadAttributes(t *testing.T) {
	m := toEventModel(event.New(&event.PauseChanged{Paused: true}, 1))
	m.TxID = id.NewTxID().String()
	m.Attributes = "{"
	_, err := fromEventModel(m)
	assert.Error(t, err)
}
