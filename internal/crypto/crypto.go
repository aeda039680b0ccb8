// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto defines the external collaborator contracts of spec §6:
// a domain-separated 256-bit hash function and an opaque sign/verify
// pair. The core is agnostic to the concrete signature algorithm; this
// package supplies a secp256k1-backed default so the rest of the tree
// has something real to exercise in tests.
package crypto

import (
	"crypto/rand"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
)

// Hash256 returns the domain-separated 256-bit hash of data. Every
// caller supplies a short, fixed domain tag (e.g. "block", "tx",
// "vote", "merkle-leaf") so that hashes computed over unrelated record
// types never collide even if their serialized bytes happen to match.
func Hash256(domain string, data []byte) chainhash.Hash {
	h := sha3.New256()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // fixed separator between tag and payload
	h.Write(data)
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Signer produces opaque signatures over arbitrary messages.
type Signer interface {
	Sign(message []byte) (signature []byte, err error)
	PublicKey() []byte
}

// Verifier checks opaque signatures produced by a Signer.
type Verifier interface {
	Verify(message, signature, publicKey []byte) bool
}

// ErrInvalidPublicKey is returned when a public key cannot be parsed.
var ErrInvalidPublicKey = errors.New("crypto: invalid public key")

// Secp256k1Verifier is the default Verifier implementation, backed by
// decred's secp256k1/ECDSA package.
type Secp256k1Verifier struct{}

// Verify reports whether signature is a valid ECDSA signature over the
// domain-separated hash of message under publicKey.
func (Secp256k1Verifier) Verify(message, signature, publicKey []byte) bool {
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := dcrecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	digest := Hash256("sig", message)
	return sig.Verify(digest[:], pub)
}

// Secp256k1Signer is a default Signer implementation used by tests and
// local tooling; production deployments supply their own per §6.
type Secp256k1Signer struct {
	priv *secp256k1.PrivateKey
}

// NewSecp256k1Signer generates a fresh signing key.
func NewSecp256k1Signer() (*Secp256k1Signer, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Secp256k1Signer{priv: priv}, nil
}

// Sign returns a DER-encoded ECDSA signature over the domain-separated
// hash of message.
func (s *Secp256k1Signer) Sign(message []byte) ([]byte, error) {
	digest := Hash256("sig", message)
	sig := dcrecdsa.Sign(s.priv, digest[:])
	return sig.Serialize(), nil
}

// PublicKey returns the compressed public key bytes.
func (s *Secp256k1Signer) PublicKey() []byte {
	return s.priv.PubKey().SerializeCompressed()
}

// RandReader is exposed so callers needing fresh entropy (e.g. nonce
// generation) share one audited source instead of each importing
// crypto/rand directly.
var RandReader = rand.Reader
