package types

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// nftBit is the position of the non-fungible tag.
const nftBit = 255

// TokenID is a 256-bit token identifier. The highest bit is a tag: set for
// non-fungible ids (supply is 0 or 1, ever), clear for fungible ids.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type TokenID struct {
	u uint256.Int
}

// FungibleID returns the fungible id with index n.
func FungibleID(n uint64) TokenID {
	var t TokenID
	t.u.SetUint64(n)
	return t
}

// NonFungibleID returns the non-fungible id with index n (tag bit set).
func NonFungibleID(n uint64) TokenID {
	t := FungibleID(n)
	var tag uint256.Int
	tag.Lsh(uint256.NewInt(1), nftBit)
	t.u.Or(&t.u, &tag)
	return t
}

// ParseTokenID parses a decimal or 0x-prefixed hex id.
func ParseTokenID(s string) (TokenID, error) {
	var (
		u   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		u, err = uint256.FromHex(normalizeHex(s))
	} else {
		u, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return TokenID{}, fmt.Errorf("tokenid: parse %q: %w", s, err)
	}
	return TokenID{u: *u}, nil
}

// MustParseTokenID is like ParseTokenID but panics on error.
func MustParseTokenID(s string) TokenID {
	t, err := ParseTokenID(s)
	if err != nil {
		panic(err)
	}
	return t
}

// normalizeHex strips leading zeros, which uint256.FromHex rejects.
func normalizeHex(s string) string {
	digits := strings.TrimLeft(s[2:], "0")
	if digits == "" {
		digits = "0"
	}
	return "0x" + digits
}

// IsNonFungible reports whether the NFT tag bit is set.
func (t TokenID) IsNonFungible() bool {
	var tag uint256.Int
	tag.Rsh(&t.u, nftBit)
	return !tag.IsZero()
}

// Index returns the id with the tag bit cleared.
func (t TokenID) Index() TokenID {
	if !t.IsNonFungible() {
		return t
	}
	var mask uint256.Int
	mask.Lsh(uint256.NewInt(1), nftBit)
	var r TokenID
	r.u.Xor(&t.u, &mask)
	return r
}

// Equal reports whether two ids are identical.
func (t TokenID) Equal(o TokenID) bool { return t.u.Eq(&o.u) }

// String returns the base-10 representation.
func (t TokenID) String() string { return t.u.Dec() }

// Hex returns the id as 64 lowercase hex digits without prefix, the form
// substituted for "{id}" in metadata URIs.
func (t TokenID) Hex() string {
	b := t.u.Bytes32()
	return fmt.Sprintf("%x", b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TokenID) UnmarshalText(data []byte) error {
	parsed, err := ParseTokenID(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TokenID) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner.
func (t *TokenID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("tokenid: cannot scan %T into TokenID", src)
	}
}
