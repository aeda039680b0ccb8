// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"sort"
	"testing"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
	"github.com/h3tag-network/h3tag-node/internal/merkle"
)

func validBlockWithVotes(t *testing.T, e *Engine, fakes *stableFakes, n int) (*chaintypes.Block, []*crypto.Secp256k1Signer) {
	t.Helper()
	now := time.Now().UTC()

	var validators []*chaintypes.Validator
	var signers []*crypto.Secp256k1Signer
	var votes []*chaintypes.Vote
	for i := 0; i < n; i++ {
		signer, err := crypto.NewSecp256k1Signer()
		if err != nil {
			t.Fatalf("NewSecp256k1Signer failed: %v", err)
		}
		addr := chaintypes.Address("validator-" + string(rune('a'+i)))
		validators = append(validators, &chaintypes.Validator{ID: addr.String(), Address: addr, PublicKey: signer.PublicKey(), IsActive: true})
		signers = append(signers, signer)

		v := &chaintypes.Vote{
			VoteID:      "period-x-" + addr.String(),
			PeriodID:    "period-x",
			Voter:       addr,
			Approve:     true,
			VotingPower: amount.FromUint64(4),
			Timestamp:   now,
			ChainVoteData: &chaintypes.ChainVoteData{
				TargetChainID: "chain-b",
				Amount:        amount.FromUint64(16),
			},
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
		votes = append(votes, v)
	}

	sorted := append([]*chaintypes.Vote(nil), votes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VoteID < sorted[j].VoteID })
	leaves, err := chaintypes.VoteLeaves(sorted)
	if err != nil {
		t.Fatalf("VoteLeaves failed: %v", err)
	}
	root, err := merkle.CreateRootOf(leaves)
	if err != nil {
		t.Fatalf("computing votes merkle root failed: %v", err)
	}

	fakes.Mempool.Validators = validators
	fakes.Node.Validators = validators

	block := &chaintypes.Block{
		Header:     chaintypes.BlockHeader{VotesMerkleRoot: root, Timestamp: now},
		Votes:      votes,
		Validators: validators,
	}
	return block, signers
}

func TestValidateVotesAcceptsWellFormedBlock(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	openActivePeriod(t, e)
	block, _ := validBlockWithVotes(t, e, fakes, 2)

	if err := e.ValidateVotes(block, block.Header.Timestamp); err != nil {
		t.Fatalf("ValidateVotes failed on a well-formed block: %v", err)
	}
}

func TestValidateVotesRejectsNilVotes(t *testing.T) {
	e, _, _ := newTestEngine(t)
	openActivePeriod(t, e)
	block := &chaintypes.Block{Header: chaintypes.BlockHeader{}}

	if err := e.ValidateVotes(block, time.Now()); err == nil {
		t.Fatal("expected ValidateVotes to reject a nil votes array")
	} else if re, ok := err.(*RuleError); !ok || re.Code != NilVotes {
		t.Fatalf("expected NilVotes, got %v", err)
	}
}

func TestValidateVotesRejectsNoActivePeriod(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	block, _ := validBlockWithVotes(t, e, fakes, 1)

	if err := e.ValidateVotes(block, block.Header.Timestamp); err == nil {
		t.Fatal("expected ValidateVotes to reject when there is no active period")
	} else if re, ok := err.(*RuleError); !ok || re.Code != NoActivePeriod {
		t.Fatalf("expected NoActivePeriod, got %v", err)
	}
}

func TestValidateVotesRejectsBadMerkleRoot(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	openActivePeriod(t, e)
	block, _ := validBlockWithVotes(t, e, fakes, 1)
	block.Header.VotesMerkleRoot[0] ^= 0xff

	if err := e.ValidateVotes(block, block.Header.Timestamp); err == nil {
		t.Fatal("expected ValidateVotes to reject a mismatched votes merkle root")
	} else if re, ok := err.(*RuleError); !ok || re.Code != InvalidVotesMerkleRoot {
		t.Fatalf("expected InvalidVotesMerkleRoot, got %v", err)
	}
}

func TestValidateVotesRejectsStaleTimestamp(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	openActivePeriod(t, e)
	block, _ := validBlockWithVotes(t, e, fakes, 1)

	farFuture := block.Header.Timestamp.Add(e.Params.VoteTimestampTolerance * 10)
	if err := e.ValidateVotes(block, farFuture); err == nil {
		t.Fatal("expected ValidateVotes to reject a vote far outside the timestamp tolerance")
	} else if re, ok := err.(*RuleError); !ok || re.Code != VoteTimestampOutOfRange {
		t.Fatalf("expected VoteTimestampOutOfRange, got %v", err)
	}
}

func TestValidateVotesRejectsMissingExpectedValidator(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	openActivePeriod(t, e)
	block, _ := validBlockWithVotes(t, e, fakes, 1)

	extra := &chaintypes.Validator{ID: "missing", Address: "validator-missing", IsActive: true}
	fakes.Mempool.Validators = append(fakes.Mempool.Validators, extra)
	fakes.Node.Validators = append(fakes.Node.Validators, extra)

	if err := e.ValidateVotes(block, block.Header.Timestamp); err == nil {
		t.Fatal("expected ValidateVotes to reject a block missing an expected validator's vote")
	} else if re, ok := err.(*RuleError); !ok || re.Code != MissingExpectedValidator {
		t.Fatalf("expected MissingExpectedValidator, got %v", err)
	}
	if len(fakes.Mempool.Failures) != 1 {
		t.Fatalf("expected one HandleValidationFailure call, got %d", len(fakes.Mempool.Failures))
	}
}

func TestValidateVotesRejectsSignatureFromWrongKey(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	openActivePeriod(t, e)
	block, _ := validBlockWithVotes(t, e, fakes, 1)

	otherSigner, err := crypto.NewSecp256k1Signer()
	if err != nil {
		t.Fatalf("NewSecp256k1Signer failed: %v", err)
	}
	block.Validators[0].PublicKey = otherSigner.PublicKey()

	if err := e.ValidateVotes(block, block.Header.Timestamp); err == nil {
		t.Fatal("expected ValidateVotes to reject a vote that doesn't verify against the block's validator key")
	} else if re, ok := err.(*RuleError); !ok || re.Code != VoteSignatureInvalid {
		t.Fatalf("expected VoteSignatureInvalid, got %v", err)
	}
}

