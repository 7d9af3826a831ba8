package natspub_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/publisher/natspub"
	"github.com/xraph/tokenledger/store/memory"
	"github.com/xraph/tokenledger/types"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu      sync.Mutex
	msgs    []published
	err     error
	flushed bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, published{subject: subject, data: data})
	return nil
}

func (c *fakeConn) Flush() error {
	c.flushed = true
	return nil
}

var (
	owner = types.HexToAddress("0x1000000000000000000000000000000000000001")
	alice = types.HexToAddress("0x00000000000000000000000000000000000a11ce")
)

func TestPublishCommittedEvents(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{}
	pub := natspub.New(conn, natspub.WithSubjectPrefix("ledger.test"))

	e := tokenledger.New(memory.New(), tokenledger.WithOwner(owner), tokenledger.WithPlugin(pub))
	require.NoError(t, e.Start(ctx))

	require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), types.NewAmount(5), nil))
	require.NoError(t, e.GrantRole(ctx, owner, tokenledger.MinterRole, alice))
	require.NoError(t, e.Stop(ctx))

	require.Len(t, conn.msgs, 2)
	assert.Equal(t, "ledger.test."+event.TypeTransferSingle, conn.msgs[0].subject)
	assert.Equal(t, "ledger.test."+event.TypeRoleGranted, conn.msgs[1].subject)
	assert.True(t, conn.flushed)

	var msg natspub.Message
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &msg))
	assert.Equal(t, uint64(1), msg.Seq)
	assert.Equal(t, event.TypeTransferSingle, msg.Type)
	assert.Equal(t, "5", msg.Attributes["amount"])
	assert.NotEmpty(t, msg.TxID)
}

func TestPublishFailureDoesNotAffectLedger(t *testing.T) {
	ctx := context.Background()
	conn := &fakeConn{err: errors.New("no responders")}
	e := tokenledger.New(memory.New(), tokenledger.WithOwner(owner), tokenledger.WithPlugin(natspub.New(conn)))
	require.NoError(t, e.Start(ctx))

	require.NoError(t, e.Mint(ctx, owner, alice, types.FungibleID(1), types.NewAmount(5), nil))
	assert.True(t, e.BalanceOf(alice, types.FungibleID(1)).Equal(types.NewAmount(5)))
	assert.Empty(t, conn.msgs)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "tokenledger.vesting.claimed", natspub.New(&fakeConn{}).Subject(event.TypeVestingClaimed))
	assert.Equal(t, "vesting.claimed", natspub.New(&fakeConn{}, natspub.WithSubjectPrefix("")).Subject(event.TypeVestingClaimed))
}
