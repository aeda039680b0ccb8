// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package amount implements the base monetary unit of spec §6: an
// unsigned 128-bit integer with an 18-decimal display convention and a
// decimal-string JSON encoding so values survive round trips through
// the storage layer without precision loss.
//
// math/big.Int backs the type rather than the pack's math/uint256
// (a fixed 256-bit type): widening every amount to 256 bits would
// silently relax the spec's 128-bit invariant, so the width is
// enforced explicitly on every constructor instead.
package amount

import (
	"errors"
	"math/big"
)

// Decimals is the number of decimal places used by display utilities,
// per spec §6.
const Decimals = 18

// maxUint128 is the largest value representable in 128 bits.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ErrNegative is returned when a constructor is given a negative value.
var ErrNegative = errors.New("amount: value cannot be negative")

// ErrOverflow is returned when a value does not fit in 128 bits.
var ErrOverflow = errors.New("amount: value exceeds 128 bits")

// ErrInvalidDecimal is returned when a decimal string cannot be parsed
// as a non-negative integer.
var ErrInvalidDecimal = errors.New("amount: invalid decimal string")

// Amount is an unsigned 128-bit integer denominated in the smallest
// indivisible unit of the chain's native currency.
type Amount struct {
	v big.Int
}

// Zero is the additive identity.
func Zero() Amount { return Amount{} }

// FromUint64 builds an Amount from a uint64, which always fits in 128
// bits.
func FromUint64(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// FromBigInt validates and wraps a *big.Int. The caller retains
// ownership of x; FromBigInt copies its value.
func FromBigInt(x *big.Int) (Amount, error) {
	if x.Sign() < 0 {
		return Amount{}, ErrNegative
	}
	if x.CmpAbs(maxUint128) > 0 {
		return Amount{}, ErrOverflow
	}
	var a Amount
	a.v.Set(x)
	return a, nil
}

// FromDecimalString parses a base-10, non-negative integer string (the
// storage layer's wire format for 128-bit values) into an Amount.
func FromDecimalString(s string) (Amount, error) {
	if s == "" {
		return Amount{}, ErrInvalidDecimal
	}
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, ErrInvalidDecimal
	}
	return FromBigInt(x)
}

// String returns the decimal-string encoding used for JSON persistence.
func (a Amount) String() string {
	return a.v.String()
}

// BigInt returns a copy of the underlying value.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.v)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.Sign() == 0
}

// Cmp compares a to b the way big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Add returns a + b. The caller is responsible for ensuring the result
// still fits in 128 bits if it will be persisted; arithmetic itself
// never saturates, mirroring how the spec's invariants are checked by
// callers (UTXO conservation, reward bounds) rather than baked into
// the arithmetic.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.v.Add(&a.v, &b.v)
	return out
}

// Sub returns a - b, or an error if the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	var out Amount
	out.v.Sub(&a.v, &b.v)
	if out.v.Sign() < 0 {
		return Amount{}, ErrNegative
	}
	return out, nil
}

// Sqrt returns floor(sqrt(a)), the quadratic-voting power of a
// committed amount per spec §4.1.
func (a Amount) Sqrt() Amount {
	var out Amount
	out.v.Sqrt(&a.v)
	return out
}

// MarshalJSON encodes the amount as its decimal string, per the
// storage layer's "unsigned big integer as decimal string" convention.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.v.String() + `"`), nil
}

// UnmarshalJSON decodes a JSON string holding a decimal integer,
// re-promoting it to a big integer exactly as the storage layer's read
// path must for any all-digit string value.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrInvalidDecimal
	}
	parsed, err := FromDecimalString(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ToDisplay converts the base unit amount to its Decimals-place decimal
// display form, e.g. "1.500000000000000000" for Decimals=18.
func (a Amount) ToDisplay() string {
	s := a.v.String()
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for len(s) <= Decimals {
		s = "0" + s
	}
	intPart := s[:len(s)-Decimals]
	fracPart := s[len(s)-Decimals:]
	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// FromDisplay parses a Decimals-place decimal display string back into
// base units, the inverse of ToDisplay.
func FromDisplay(s string) (Amount, error) {
	if s == "" {
		return Amount{}, ErrInvalidDecimal
	}
	intPart := s
	fracPart := ""
	for i, c := range s {
		if c == '.' {
			intPart = s[:i]
			fracPart = s[i+1:]
			break
		}
	}
	if len(fracPart) > Decimals {
		return Amount{}, ErrInvalidDecimal
	}
	for len(fracPart) < Decimals {
		fracPart += "0"
	}
	combined := intPart + fracPart
	if combined == "" {
		combined = "0"
	}
	return FromDecimalString(combined)
}
