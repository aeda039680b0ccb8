// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaintypes defines the wire-level data model of spec §3:
// Block, Transaction, UTXO, Vote, VotingPeriod, Validator and
// ChainState, plus the canonical serialization convention used
// whenever a record is hashed, signed or persisted.
package chaintypes

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/base58"
)

// addressVersion is the single-byte version prefix identifying an
// H3TAG address, analogous to the teacher's per-network address ID
// bytes.
const addressVersion = 0x2d

// ErrInvalidAddress is returned when an address string fails to
// decode or its checksum does not verify.
var ErrInvalidAddress = errors.New("chaintypes: invalid address")

// Address is a base58check-encoded public key hash.
type Address string

// NewAddress derives an Address from a 20-byte public key hash.
func NewAddress(pubKeyHash [20]byte) Address {
	payload := append([]byte{addressVersion}, pubKeyHash[:]...)
	checksum := doubleSHA256(payload)[:4]
	return Address(base58.Encode(append(payload, checksum...)))
}

// Verify reports whether the address decodes to a well-formed payload
// with a matching checksum and the expected version byte.
func (a Address) Verify() bool {
	_, err := a.decode()
	return err == nil
}

// String returns the address in its base58check form.
func (a Address) String() string {
	return string(a)
}

func (a Address) decode() ([20]byte, error) {
	var hash [20]byte
	decoded := base58.Decode(string(a))
	if len(decoded) != 1+20+4 {
		return hash, ErrInvalidAddress
	}
	if decoded[0] != addressVersion {
		return hash, ErrInvalidAddress
	}
	payload, checksum := decoded[:len(decoded)-4], decoded[len(decoded)-4:]
	want := doubleSHA256(payload)[:4]
	for i := range checksum {
		if checksum[i] != want[i] {
			return hash, ErrInvalidAddress
		}
	}
	copy(hash[:], payload[1:])
	return hash, nil
}

func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
