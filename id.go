package tokenledger

import "github.com/xraph/tokenledger/id"

// ID is the primary identifier type for all tokenledger records.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
