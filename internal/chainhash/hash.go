// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash defines the 256-bit hash type shared by every block,
// transaction, vote and merkle computation in the consensus core.
package chainhash

import (
	"encoding/hex"
	"encoding/json"
	"errors"
)

// HashSize is the size, in bytes, of a domain-separated 256-bit hash.
const HashSize = 32

// Hash is a fixed-size array used to store the output of the core's
// domain-separated 256-bit hash function. Using an array rather than a
// slice allows the zero value to be a valid, comparable "no hash yet"
// sentinel and avoids a heap allocation per hash.
type Hash [HashSize]byte

// ZeroHash is the Hash value of all zero bytes.
var ZeroHash Hash

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the convention readers expect from block explorers.
func (h Hash) String() string {
	var reversed Hash
	for i, b := range h[:] {
		reversed[HashSize-1-i] = b
	}
	return hex.EncodeToString(reversed[:])
}

// IsZero reports whether the hash is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// CloneBytes returns a newly allocated copy of the hash's bytes.
func (h Hash) CloneBytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// SetBytes sets the bytes of the hash from a slice. An error is returned
// if the slice is not exactly HashSize bytes.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return errors.New("invalid hash length")
	}
	copy(h[:], newHash)
	return nil
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHashFromStr creates a Hash from a hash string, reversing the byte
// order to undo the display convention used by String.
func NewHashFromStr(hash string) (*Hash, error) {
	decoded, err := hex.DecodeString(hash)
	if err != nil {
		return nil, err
	}
	if len(decoded) != HashSize {
		return nil, errors.New("invalid hash string length")
	}
	var h Hash
	for i, b := range decoded {
		h[HashSize-1-i] = b
	}
	return &h, nil
}

// MarshalJSON implements json.Marshaler, encoding the hash as its display
// string so stored records remain human-readable JSON.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = ZeroHash
		return nil
	}
	parsed, err := NewHashFromStr(s)
	if err != nil {
		return err
	}
	*h = *parsed
	return nil
}
