// Package types provides common types used across tokenledger.
package types

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/xraph/tokenledger/errs"
)

// Amount is a non-negative quantity in an asset's smallest unit.
// All arithmetic is 256-bit unsigned and checked; no floating point.
//
// Examples:
//   - NewAmount(36) = 36 units of a zero-decimal asset
//   - MustParseAmount("500000000000000000000") = 500 tokens at 18 decimals
//
//nolint:recvcheck // Value receivers for arithmetic, pointer receivers for UnmarshalText/Scan.
type Amount struct {
	u uint256.Int
}

// NewAmount creates an Amount from a uint64.
func NewAmount(v uint64) Amount {
	var a Amount
	a.u.SetUint64(v)
	return a
}

// ZeroAmount returns the zero Amount.
func ZeroAmount() Amount { return Amount{} }

// ParseAmount parses a base-10 string.
func ParseAmount(s string) (Amount, error) {
	u, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("amount: parse %q: %w", s, err)
	}
	return Amount{u: *u}, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for constants.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromBig converts a big.Int, rejecting negative and >256-bit values.
func AmountFromBig(b *big.Int) (Amount, error) {
	if b == nil {
		return Amount{}, nil
	}
	if b.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: negative amount %s", errs.ErrValidation, b)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, errs.ErrOverflow
	}
	return Amount{u: *u}, nil
}

// Pow10 returns 10^exp.
func Pow10(exp uint8) Amount {
	var a Amount
	a.u.Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp)))
	return a
}

// Arithmetic operations

// Add returns a+b, or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.u.AddOverflow(&a.u, &b.u); overflow {
		return Amount{}, errs.ErrOverflow
	}
	return r, nil
}

// Sub returns a-b, or ErrUnderflow when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.u.SubOverflow(&a.u, &b.u); underflow {
		return Amount{}, errs.ErrUnderflow
	}
	return r, nil
}

// Mul returns a*b, or ErrOverflow.
func (a Amount) Mul(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.u.MulOverflow(&a.u, &b.u); overflow {
		return Amount{}, errs.ErrOverflow
	}
	return r, nil
}

// MulUint64 returns a*n, or ErrOverflow.
func (a Amount) MulUint64(n uint64) (Amount, error) {
	return a.Mul(NewAmount(n))
}

// MulDiv returns floor(a*num/den) using a 512-bit intermediate.
// Panics if den is zero.
func (a Amount) MulDiv(num, den Amount) (Amount, error) {
	if den.IsZero() {
		panic("amount: division by zero")
	}
	var r Amount
	if _, overflow := r.u.MulDivOverflow(&a.u, &num.u, &den.u); overflow {
		return Amount{}, errs.ErrOverflow
	}
	return r, nil
}

// Div returns floor(a/b). Panics if b is zero.
func (a Amount) Div(b Amount) Amount {
	if b.IsZero() {
		panic("amount: division by zero")
	}
	var r Amount
	r.u.Div(&a.u, &b.u)
	return r
}

// DivUint64 returns floor(a/n). Panics if n is zero.
func (a Amount) DivUint64(n uint64) Amount {
	return a.Div(NewAmount(n))
}

// Mod returns a mod b. Panics if b is zero.
func (a Amount) Mod(b Amount) Amount {
	if b.IsZero() {
		panic("amount: division by zero")
	}
	var r Amount
	r.u.Mod(&a.u, &b.u)
	return r
}

// Comparison methods

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.u.Cmp(&b.u) }

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a.u.IsZero() }

// Equal returns true if both amounts are equal.
func (a Amount) Equal(b Amount) bool { return a.u.Eq(&b.u) }

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) bool { return a.u.Lt(&b.u) }

// GreaterThan returns true if a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.u.Gt(&b.u) }

// Min returns the smaller of two amounts.
func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Conversion methods

// IsUint64 reports whether the amount fits in a uint64.
func (a Amount) IsUint64() bool { return a.u.IsUint64() }

// Uint64 returns the low 64 bits.
func (a Amount) Uint64() uint64 { return a.u.Uint64() }

// Big returns the amount as a big.Int.
func (a Amount) Big() *big.Int { return a.u.ToBig() }

// String returns the base-10 representation.
func (a Amount) String() string { return a.u.Dec() }

// FormatUnits renders the amount as a decimal with the given number of
// fractional digits: FormatUnits(18) of 1500000000000000000 is "1.5".
func (a Amount) FormatUnits(decimals uint8) string {
	if decimals == 0 {
		return a.String()
	}
	unit := Pow10(decimals)
	whole := a.Div(unit)
	frac := a.Mod(unit)
	if frac.IsZero() {
		return whole.String()
	}
	digits := frac.String()
	digits = strings.Repeat("0", int(decimals)-len(digits)) + digits
	return whole.String() + "." + strings.TrimRight(digits, "0")
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer. Amounts are stored as decimal text.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("amount: cannot scan negative %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("amount: cannot scan %T into Amount", src)
	}
}

// Sum adds all values, or returns ErrOverflow.
func Sum(values ...Amount) (Amount, error) {
	var total Amount
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}
