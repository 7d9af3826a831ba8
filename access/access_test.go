package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tokenledger/access"
	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/types"
)

var (
	owner = types.HexToAddress("0x1000000000000000000000000000000000000001")
	alice = types.HexToAddress("0x2000000000000000000000000000000000000002")
	bob   = types.HexToAddress("0x3000000000000000000000000000000000000003")
)

func newController(t *testing.T) (*access.Controller, *journal.Journal) {
	t.Helper()
	j := journal.New()
	j.Begin(1)
	return access.New(j, owner), j
}

func TestStandardRoles(t *testing.T) {
	assert.Equal(t, types.Hash{}, access.DefaultAdminRole)
	assert.Equal(t,
		"0x9f2df0fed2c77648de5860a4cc508cd0818c85b8b8a1ab4ceeef8d981c8956a6",
		access.MinterRole.Hex())

	c, _ := newController(t)
	for _, r := range []access.Role{access.DefaultAdminRole, access.MinterRole, access.PauserRole, access.URISetterRole} {
		assert.True(t, c.HasRole(r, owner))
	}
}

func TestGrantRevokeRole(t *testing.T) {
	c, j := newController(t)

	require.NoError(t, c.GrantRole(owner, access.MinterRole, alice))
	assert.True(t, c.HasRole(access.MinterRole, alice))
	assert.True(t, c.CanMint(alice))

	// Idempotent: no second event.
	require.NoError(t, c.GrantRole(owner, access.MinterRole, alice))
	require.Len(t, j.Events(), 1)
	assert.Equal(t, event.TypeRoleGranted, j.Events()[0].Type)

	require.NoError(t, c.RevokeRole(owner, access.MinterRole, alice))
	require.NoError(t, c.RevokeRole(owner, access.MinterRole, alice))
	require.Len(t, j.Events(), 2)
	assert.Equal(t, event.TypeRoleRevoked, j.Events()[1].Type)
	assert.False(t, c.CanMint(alice))
}

func TestNonAdminDenied(t *testing.T) {
	c, j := newController(t)

	err := c.GrantRole(alice, access.MinterRole, bob)
	assert.True(t, errs.IsPermission(err))

	err = c.RevokeRole(alice, access.MinterRole, owner)
	assert.True(t, errs.IsPermission(err))

	err = c.SetMintApproval(alice, bob, true)
	assert.True(t, errs.IsPermission(err))

	err = c.SetBurnApproval(alice, bob, true)
	assert.True(t, errs.IsPermission(err))

	assert.Empty(t, j.Events())
}

func TestCapabilities(t *testing.T) {
	c, j := newController(t)

	assert.True(t, c.CanMint(owner))
	assert.True(t, c.CanBurn(owner))
	assert.False(t, c.CanBurn(alice))

	require.NoError(t, c.SetMintApproval(owner, alice, true))
	require.NoError(t, c.SetBurnApproval(owner, alice, true))
	assert.True(t, c.CanMint(alice))
	assert.True(t, c.CanBurn(alice))

	require.NoError(t, c.SetMintApproval(owner, alice, false))
	assert.False(t, c.IsMintApproved(alice))

	err := c.SetMintApproval(owner, types.ZeroAddress, true)
	assert.True(t, errs.IsValidation(err))

	require.Len(t, j.Events(), 3)
	assert.Equal(t, event.TypeMintApproval, j.Events()[0].Type)
	assert.Equal(t, event.TypeBurnApproval, j.Events()[1].Type)
	assert.Equal(t, "false", j.Events()[2].Attributes["approved"])
}

func TestRevertUndoesGrant(t *testing.T) {
	c, j := newController(t)

	require.NoError(t, c.GrantRole(owner, access.PauserRole, alice))
	require.NoError(t, c.SetBurnApproval(owner, bob, true))
	require.NoError(t, c.TransferOwnership(owner, alice))
	j.Revert()

	assert.False(t, c.HasRole(access.PauserRole, alice))
	assert.False(t, c.IsBurnApproved(bob))
	assert.Equal(t, owner, c.Owner())
}

func TestOwnershipAndPause(t *testing.T) {
	c, _ := newController(t)

	assert.True(t, errs.IsValidation(c.TransferOwnership(owner, types.ZeroAddress)))
	require.NoError(t, c.TransferOwnership(owner, alice))
	assert.Equal(t, alice, c.Owner())
	assert.True(t, errs.IsPermission(c.SetMintApproval(owner, bob, true)))

	assert.True(t, errs.IsPermission(c.Pause(bob)))
	require.NoError(t, c.Pause(owner))
	assert.ErrorIs(t, c.RequireNotPaused(), errs.ErrPaused)
	assert.True(t, errs.IsState(c.Pause(owner)))
	require.NoError(t, c.Unpause(owner))
	assert.NoError(t, c.RequireNotPaused())
}

func TestRenounceRole(t *testing.T) {
	c, _ := newController(t)
	require.NoError(t, c.GrantRole(owner, access.URISetterRole, alice))
	require.NoError(t, c.RenounceRole(alice, access.URISetterRole))
	assert.False(t, c.HasRole(access.URISetterRole, alice))
}

func TestZeroOwnerHoldsNothing(t *testing.T) {
	j := journal.New()
	j.Begin(1)
	c := access.New(j, types.ZeroAddress)

	for _, r := range []access.Role{access.DefaultAdminRole, access.MinterRole, access.PauserRole, access.URISetterRole} {
		assert.False(t, c.HasRole(r, types.ZeroAddress))
	}
	assert.False(t, c.CanMint(types.ZeroAddress))
	assert.False(t, c.CanBurn(types.ZeroAddress))
	assert.True(t, errs.IsPermission(c.SetMintApproval(types.ZeroAddress, alice, true)))
	assert.True(t, errs.IsPermission(c.TransferOwnership(types.ZeroAddress, alice)))
}

func TestNonBurnable(t *testing.T) {
	j := journal.New()
	j.Begin(1)
	c := access.New(j, owner, access.WithBurnable(false))

	assert.False(t, c.Burnable())
	err := c.SetBurnApproval(owner, alice, true)
	assert.ErrorIs(t, err, errs.ErrNotBurnable)
	assert.True(t, errs.IsState(err))
	assert.Empty(t, j.Events())

	require.NoError(t, c.SetMintApproval(owner, alice, true))
}
