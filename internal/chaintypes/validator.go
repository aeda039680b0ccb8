// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
)

// ValidatorMetrics tracks the rolling performance figures used by the
// storage layer's composite expected-block-production score.
type ValidatorMetrics struct {
	Uptime            float64 `json:"uptime"`
	VoteParticipation float64 `json:"voteParticipation"`
	BlockProduction   float64 `json:"blockProduction"`
}

// Validator is a registered block-validating and vote-weighting
// participant, per spec §3.
type Validator struct {
	ID           string           `json:"id"`
	Address      Address          `json:"address"`
	PublicKey    []byte           `json:"publicKey"`
	LastActive   time.Time        `json:"lastActive"`
	Reputation   int              `json:"reputation"` // 0..100
	IsActive     bool             `json:"isActive"`
	IsSuspended  bool             `json:"isSuspended"`
	Uptime       float64          `json:"uptime"`
	Metrics      ValidatorMetrics `json:"metrics"`
	ValidationData []byte         `json:"validationData,omitempty"`
	Signature    []byte           `json:"signature,omitempty"`
	MerkleIndex  int              `json:"merkleIndex"`
	MerkleProof  []chainhash.Hash `json:"merkleProof,omitempty"`
	MerkleRoot   chainhash.Hash   `json:"merkleRoot"`
}

// IsInactive reports whether the validator's last activity predates
// now by more than threshold, per spec §3's 24h inactivity rule.
func (v *Validator) IsInactive(now time.Time, threshold time.Duration) bool {
	return now.Sub(v.LastActive) > threshold
}

// WeightedScore returns the validator's contribution to a block's
// weighted validation score: reputation/100 if the validator's
// signature and merkle proof checked out, 0 otherwise, per spec §4.2
// rule 6.
func (v *Validator) WeightedScore(isValid bool) float64 {
	if !isValid {
		return 0
	}
	return float64(v.Reputation) / 100.0
}

// StorageKey returns the "validator:<addr>" key this record is
// indexed under.
func (v *Validator) StorageKey() string {
	return "validator:" + string(v.Address)
}
