// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package amount

import (
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestDecimalStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"zero", "0"},
		{"small", "100"},
		{"max128", new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)).String()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := FromDecimalString(tc.in)
			if err != nil {
				t.Fatalf("FromDecimalString(%s) failed: %v\n%s", tc.in, err, spew.Sdump(tc))
			}
			if got := a.String(); got != tc.in {
				t.Fatalf("round trip mismatch: got %s want %s", got, tc.in)
			}
			data, err := a.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON failed: %v", err)
			}
			var a2 Amount
			if err := a2.UnmarshalJSON(data); err != nil {
				t.Fatalf("UnmarshalJSON failed: %v", err)
			}
			if a.Cmp(a2) != 0 {
				t.Fatalf("JSON round trip mismatch: %s != %s", a, a2)
			}
		})
	}
}

func TestFromDecimalStringRejectsOverflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 128).String() // 2^128, one past max
	if _, err := FromDecimalString(tooBig); err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestFromDecimalStringRejectsNegative(t *testing.T) {
	if _, err := FromDecimalString("-1"); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestSqrtFloors(t *testing.T) {
	tests := []struct {
		amount string
		power  string
	}{
		{"0", "0"},
		{"1", "1"},
		{"99", "9"},
		{"100", "10"},
		{"101", "10"},
	}
	for _, tc := range tests {
		a, err := FromDecimalString(tc.amount)
		if err != nil {
			t.Fatalf("FromDecimalString: %v", err)
		}
		if got := a.Sqrt().String(); got != tc.power {
			t.Errorf("Sqrt(%s) = %s, want %s", tc.amount, got, tc.power)
		}
	}
}

func TestDisplayRoundTrip(t *testing.T) {
	a := FromUint64(1_500_000_000_000_000_000)
	if got, want := a.ToDisplay(), "1.500000000000000000"; got != want {
		t.Fatalf("ToDisplay = %s, want %s", got, want)
	}
	back, err := FromDisplay("1.5")
	if err != nil {
		t.Fatalf("FromDisplay failed: %v", err)
	}
	if back.Cmp(a) != 0 {
		t.Fatalf("FromDisplay round trip mismatch: %s != %s", back, a)
	}
}

func TestSubUnderflow(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	if _, err := a.Sub(b); err != ErrNegative {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}
