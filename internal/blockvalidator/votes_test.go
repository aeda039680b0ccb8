// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"testing"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

func signedVote(t *testing.T, signer *crypto.Secp256k1Signer) *chaintypes.Vote {
	t.Helper()
	v := &chaintypes.Vote{
		VoteID:      "vote-1",
		PeriodID:    "period-1",
		Voter:       "addr1",
		Approve:     true,
		VotingPower: amount.FromUint64(4),
		Timestamp:   time.Now(),
		BlockHeight: 10,
		PublicKey:   signer.PublicKey(),
	}
	data, err := v.CanonicalBytes()
	if err != nil {
		t.Fatalf("CanonicalBytes failed: %v", err)
	}
	sig, err := signer.Sign(data)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	v.Signature = sig
	return v
}

func TestCheckVotesAcceptsValidSignatures(t *testing.T) {
	signer, err := crypto.NewSecp256k1Signer()
	if err != nil {
		t.Fatalf("NewSecp256k1Signer failed: %v", err)
	}
	v := signedVote(t, signer)

	if err := checkVotes([]*chaintypes.Vote{v}, crypto.Secp256k1Verifier{}); err != nil {
		t.Fatalf("checkVotes failed on a validly signed vote: %v", err)
	}
}

func TestCheckVotesRejectsTamperedVote(t *testing.T) {
	signer, err := crypto.NewSecp256k1Signer()
	if err != nil {
		t.Fatalf("NewSecp256k1Signer failed: %v", err)
	}
	v := signedVote(t, signer)
	v.Approve = !v.Approve // mutate after signing

	err = checkVotes([]*chaintypes.Vote{v}, crypto.Secp256k1Verifier{})
	if err == nil {
		t.Fatal("expected checkVotes to reject a tampered vote")
	}
	ruleErr, ok := err.(*RuleError)
	if !ok || ruleErr.Code != InvalidVotes {
		t.Fatalf("expected InvalidVotes, got %v", err)
	}
}

func TestCheckVotesAcceptsEmptyList(t *testing.T) {
	if err := checkVotes(nil, crypto.Secp256k1Verifier{}); err != nil {
		t.Fatalf("checkVotes on an empty list should not fail: %v", err)
	}
}
