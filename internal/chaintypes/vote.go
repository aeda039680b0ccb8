// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"encoding/json"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// ChainVoteData annotates a vote cast during fork arbitration. The
// direct voting engine in this core accepts only votes carrying this
// annotation; plain governance votes are an open extension point, not
// implemented here per spec §4.1.
type ChainVoteData struct {
	TargetChainID string        `json:"targetChainId"`
	ForkHeight    uint64        `json:"forkHeight"`
	Amount        amount.Amount `json:"amount"`
}

// Vote is a single quadratic-weighted ballot cast within a voting
// period, per spec §3.
type Vote struct {
	VoteID        string         `json:"voteId"`
	PeriodID      string         `json:"periodId"`
	Voter         Address        `json:"voter"`
	Approve       bool           `json:"approve"`
	VotingPower   amount.Amount  `json:"votingPower"`
	Signature     []byte         `json:"signature,omitempty"`
	PublicKey     []byte         `json:"publicKey,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	BlockHeight   uint64         `json:"blockHeight"`
	ChainVoteData *ChainVoteData `json:"chainVoteData,omitempty"`
}

// canonicalVotePayload fixes the byte encoding a vote's signature is
// computed and verified over: every field but the signature itself.
type canonicalVotePayload struct {
	VoteID        string         `json:"voteId"`
	PeriodID      string         `json:"periodId"`
	Voter         Address        `json:"voter"`
	Approve       bool           `json:"approve"`
	VotingPower   amount.Amount  `json:"votingPower"`
	Timestamp     int64          `json:"timestamp"`
	BlockHeight   uint64         `json:"blockHeight"`
	ChainVoteData *ChainVoteData `json:"chainVoteData,omitempty"`
}

// CanonicalBytes returns the deterministic encoding of v used both to
// produce and to verify its signature, and to measure its serialized
// size against MAX_VOTE_SIZE_BYTES.
func (v *Vote) CanonicalBytes() ([]byte, error) {
	payload := canonicalVotePayload{
		VoteID:        v.VoteID,
		PeriodID:      v.PeriodID,
		Voter:         v.Voter,
		Approve:       v.Approve,
		VotingPower:   v.VotingPower,
		Timestamp:     v.Timestamp.UTC().UnixMilli(),
		BlockHeight:   v.BlockHeight,
		ChainVoteData: v.ChainVoteData,
	}
	return json.Marshal(payload)
}

// VerifySignature checks v.Signature against v.PublicKey over v's
// canonical bytes using verifier.
func (v *Vote) VerifySignature(verifier crypto.Verifier) (bool, error) {
	data, err := v.CanonicalBytes()
	if err != nil {
		return false, err
	}
	return verifier.Verify(data, v.Signature, v.PublicKey), nil
}

// StorageKey returns the "vote:P:V" key the storage layer indexes the
// vote under, enforcing the at-most-one-vote-per-(period,voter)
// invariant of spec §3.
func (v *Vote) StorageKey() string {
	return "vote:" + v.PeriodID + ":" + string(v.Voter)
}

// hashLeaf returns the leaf string the votes merkle tree hashes this
// vote under, so vote-set commitments are stable regardless of map
// iteration order upstream.
func (v *Vote) hashLeaf() (string, error) {
	data, err := v.CanonicalBytes()
	if err != nil {
		return "", err
	}
	h := crypto.Hash256("vote-leaf", data)
	return h.String(), nil
}

// VoteLeaves converts a slice of votes into the leaf strings consumed
// by the merkle tree, in the order given. Callers wanting a
// deterministic root sort votes (typically by VoteID) before calling
// this.
func VoteLeaves(votes []*Vote) ([]string, error) {
	leaves := make([]string, len(votes))
	for i, v := range votes {
		leaf, err := v.hashLeaf()
		if err != nil {
			return nil, err
		}
		leaves[i] = leaf
	}
	return leaves, nil
}
