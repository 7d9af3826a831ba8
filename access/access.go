// Package access gates ledger mutations. Roles are opaque 32-byte ids in a
// flat namespace; DefaultAdminRole may grant and revoke every role. A single
// owner controls the mint and burn capability maps.
package access

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/xraph/tokenledger/errs"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/journal"
	"github.com/xraph/tokenledger/types"
)

// Role is a role identifier, conventionally keccak256 of its name.
type Role = types.Hash

// Standard roles.
var (
	DefaultAdminRole Role
	MinterRole       = RoleID("MINTER_ROLE")
	PauserRole       = RoleID("PAUSER_ROLE")
	URISetterRole    = RoleID("URI_SETTER_ROLE")
)

// RoleID derives a role id from its name.
func RoleID(name string) Role {
	return crypto.Keccak256Hash([]byte(name))
}

// Controller holds roles, capability approvals, ownership and the pause flag.
type Controller struct {
	j *journal.Journal

	owner        types.Address
	roles        map[Role]map[types.Address]bool
	mintApproval map[types.Address]bool
	burnApproval map[types.Address]bool
	paused       bool
	burnable     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithBurnable enables or disables burning. A non-burnable controller
// rejects burns and burn approvals with ErrNotBurnable. Default: enabled.
func WithBurnable(burnable bool) Option {
	return func(c *Controller) { c.burnable = burnable }
}

// New creates a controller owned by owner, who also holds every standard
// role. A zero owner is seeded with no roles.
func New(j *journal.Journal, owner types.Address, opts ...Option) *Controller {
	c := &Controller{
		j:            j,
		owner:        owner,
		roles:        make(map[Role]map[types.Address]bool),
		mintApproval: make(map[types.Address]bool),
		burnApproval: make(map[types.Address]bool),
		burnable:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !types.IsZero(owner) {
		for _, r := range []Role{DefaultAdminRole, MinterRole, PauserRole, URISetterRole} {
			c.members(r)[owner] = true
		}
	}
	return c
}

// isOwner reports whether account is the configured, non-zero owner.
func (c *Controller) isOwner(account types.Address) bool {
	return !types.IsZero(account) && account == c.owner
}

// Owner returns the controlling owner.
func (c *Controller) Owner() types.Address { return c.owner }

// HasRole reports whether account holds role.
func (c *Controller) HasRole(role Role, account types.Address) bool {
	return c.roles[role][account]
}

// GrantRole gives role to account. Only admins may call it. Granting a role
// already held succeeds without an event.
func (c *Controller) GrantRole(caller types.Address, role Role, account types.Address) error {
	if !c.HasRole(DefaultAdminRole, caller) {
		return errs.Denied("account %s is missing admin role", caller.Hex())
	}
	if types.IsZero(account) {
		return errs.Invalid("account", "must not be the zero address")
	}
	if c.HasRole(role, account) {
		return nil
	}
	journal.Set(c.j, c.members(role), account, true)
	c.j.Emit(&event.RoleChanged{Role: role, Account: account, Sender: caller, Granted: true})
	return nil
}

// RevokeRole removes role from account. Only admins may call it. Revoking an
// absent role succeeds without an event.
func (c *Controller) RevokeRole(caller types.Address, role Role, account types.Address) error {
	if !c.HasRole(DefaultAdminRole, caller) {
		return errs.Denied("account %s is missing admin role", caller.Hex())
	}
	c.revoke(caller, role, account)
	return nil
}

// RenounceRole drops role from caller.
func (c *Controller) RenounceRole(caller types.Address, role Role) error {
	c.revoke(caller, role, caller)
	return nil
}

func (c *Controller) revoke(sender types.Address, role Role, account types.Address) {
	if !c.HasRole(role, account) {
		return
	}
	journal.Delete(c.j, c.roles[role], account)
	c.j.Emit(&event.RoleChanged{Role: role, Account: account, Sender: sender})
}

func (c *Controller) members(role Role) map[types.Address]bool {
	m, ok := c.roles[role]
	if !ok {
		m = make(map[types.Address]bool)
		c.roles[role] = m
	}
	return m
}

// ──────────────────────────────────────────────────
// Capabilities
// ──────────────────────────────────────────────────

// SetMintApproval grants or withdraws the mint capability. Owner only.
func (c *Controller) SetMintApproval(caller, account types.Address, approved bool) error {
	return c.setCapability(caller, c.mintApproval, event.TypeMintApproval, account, approved)
}

// SetBurnApproval grants or withdraws the burn capability. Owner only.
func (c *Controller) SetBurnApproval(caller, account types.Address, approved bool) error {
	if err := c.RequireBurnable(); err != nil {
		return err
	}
	return c.setCapability(caller, c.burnApproval, event.TypeBurnApproval, account, approved)
}

func (c *Controller) setCapability(caller types.Address, m map[types.Address]bool, kind string, account types.Address, approved bool) error {
	if !c.isOwner(caller) {
		return errs.Denied("caller %s is not the owner", caller.Hex())
	}
	if types.IsZero(account) {
		return errs.Invalid("account", "must not be the zero address")
	}
	if m[account] == approved {
		return nil
	}
	if approved {
		journal.Set(c.j, m, account, true)
	} else {
		journal.Delete(c.j, m, account)
	}
	c.j.Emit(&event.CapabilityChanged{Kind: kind, Account: account, Approved: approved})
	return nil
}

// IsMintApproved reports the raw mint capability flag.
func (c *Controller) IsMintApproved(account types.Address) bool { return c.mintApproval[account] }

// IsBurnApproved reports the raw burn capability flag.
func (c *Controller) IsBurnApproved(account types.Address) bool { return c.burnApproval[account] }

// CanMint reports whether account may mint: the owner, a MinterRole holder,
// or an account with mint approval.
func (c *Controller) CanMint(account types.Address) bool {
	return c.isOwner(account) || c.HasRole(MinterRole, account) || c.mintApproval[account]
}

// CanBurn reports whether account may burn tokens it does not hold.
func (c *Controller) CanBurn(account types.Address) bool {
	return c.isOwner(account) || c.burnApproval[account]
}

// ──────────────────────────────────────────────────
// Ownership and pause
// ──────────────────────────────────────────────────

// TransferOwnership hands the controlling authority to newOwner.
func (c *Controller) TransferOwnership(caller, newOwner types.Address) error {
	if !c.isOwner(caller) {
		return errs.Denied("caller %s is not the owner", caller.Hex())
	}
	if types.IsZero(newOwner) {
		return errs.Invalid("owner", "new owner is the zero address")
	}
	prev := c.owner
	journal.Assign(c.j, &c.owner, newOwner)
	c.j.Emit(&event.OwnershipTransferred{Previous: prev, Owner: newOwner})
	return nil
}

// Paused reports whether mutations are suspended.
func (c *Controller) Paused() bool { return c.paused }

// Pause suspends mint, burn and transfer. Requires PauserRole.
func (c *Controller) Pause(caller types.Address) error {
	return c.setPaused(caller, true)
}

// Unpause lifts a pause. Requires PauserRole.
func (c *Controller) Unpause(caller types.Address) error {
	return c.setPaused(caller, false)
}

func (c *Controller) setPaused(caller types.Address, paused bool) error {
	if !c.HasRole(PauserRole, caller) {
		return errs.Denied("account %s is missing pauser role", caller.Hex())
	}
	if c.paused == paused {
		if paused {
			return errs.State("already paused")
		}
		return errs.State("not paused")
	}
	journal.Assign(c.j, &c.paused, paused)
	c.j.Emit(&event.PauseChanged{Account: caller, Paused: paused})
	return nil
}

// RequireNotPaused returns ErrPaused while paused.
func (c *Controller) RequireNotPaused() error {
	if c.paused {
		return errs.ErrPaused
	}
	return nil
}

// Burnable reports whether burning is enabled.
func (c *Controller) Burnable() bool { return c.burnable }

// RequireBurnable returns ErrNotBurnable when burning is disabled.
func (c *Controller) RequireBurnable() error {
	if !c.burnable {
		return errs.ErrNotBurnable
	}
	return nil
}
