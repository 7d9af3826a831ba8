package tokenledger

import (
	"github.com/xraph/tokenledger/access"
	"github.com/xraph/tokenledger/types"
)

// Re-export common types for convenience so users don't have to import types package.

// Address is re-exported from types package.
type Address = types.Address

// Amount is re-exported from types package.
type Amount = types.Amount

// TokenID is re-exported from types package.
type TokenID = types.TokenID

// Entity is re-exported from types package.
type Entity = types.Entity

// Role is re-exported from access package.
type Role = access.Role

// Re-export constructors
var (
	NewAmount     = types.NewAmount
	ZeroAmount    = types.ZeroAmount
	ParseAmount   = types.ParseAmount
	FungibleID    = types.FungibleID
	NonFungibleID = types.NonFungibleID
	ParseTokenID  = types.ParseTokenID
	HexToAddress  = types.HexToAddress
	ParseAddress  = types.ParseAddress
	NewEntity     = types.NewEntity
	RoleID        = access.RoleID
)

// Standard roles.
var (
	DefaultAdminRole = access.DefaultAdminRole
	MinterRole       = access.MinterRole
	PauserRole       = access.PauserRole
	URISetterRole    = access.URISetterRole
)
