// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"time"

	"github.com/jrick/bitset"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// ValidateVotes enforces spec §4.1's block-level vote-set checks, in
// order: a non-null votes array; an active voting period; the
// expected-validator set intersected with the currently active set
// clearing a 2/3 majority; the votes merkle root matching the header;
// every vote's timestamp within VoteTimestampTolerance of now; every
// vote verifying against the validator set embedded in the block; and
// every expected validator actually present, with every absence
// reported to the mempool collaborator as a validation failure.
//
// Where spec §4.1 literally reads "merkle_root(block.votes) =
// block.header.validatorMerkleRoot", this core compares against
// block.Header.VotesMerkleRoot instead: chaintypes.BlockHeader carries
// a field dedicated to exactly this commitment, and ValidatorMerkleRoot
// is already spoken for by spec §4.2 rule 6's validator-set proof
// check. Comparing votes against the validator-set root would make the
// two rules redundant by accident rather than by design; see
// DESIGN.md.
func (e *Engine) ValidateVotes(block *chaintypes.Block, now time.Time) error {
	if block.Votes == nil {
		return ruleErr(NilVotes, "block %s has a nil votes array", block.Header.Hash)
	}

	if _, err := e.storage.ActiveVotingPeriod(); err != nil {
		return ruleErr(NoActivePeriod, "no active voting period: %v", err)
	}

	expected, err := e.mempool.ExpectedValidators()
	if err != nil {
		return ruleErr(RecordFailed, "loading expected validators: %v", err)
	}
	active, err := e.node.ActiveValidators()
	if err != nil {
		return ruleErr(RecordFailed, "loading active validators: %v", err)
	}
	activeSet := make(map[string]bool, len(active))
	for _, v := range active {
		activeSet[string(v.Address)] = true
	}

	// intersectBits marks, by position in expected, which expected
	// validators the node also considers active; a plain slice of
	// bools would do the same job; this uses the packed participation
	// bitmap the rest of this core exercises for validator-set state.
	intersectBits := bitset.NewBytes(len(expected))
	for i, v := range expected {
		if activeSet[string(v.Address)] {
			intersectBits.Set(i)
		}
	}
	var intersected int
	for i := range expected {
		if intersectBits.Get(i) {
			intersected++
		}
	}
	if len(expected) > 0 && float64(intersected)/float64(len(expected)) < e.Params.ForkVoteQuorum {
		return ruleErr(InsufficientMajority, "only %d/%d expected validators are active, below %.0f%% quorum",
			intersected, len(expected), e.Params.ForkVoteQuorum*100)
	}

	if len(block.Votes) > 0 {
		root, err := votesMerkleRoot(block.Votes)
		if err != nil {
			return ruleErr(RecordFailed, "computing votes merkle root: %v", err)
		}
		if root != block.Header.VotesMerkleRoot {
			return ruleErr(InvalidVotesMerkleRoot, "votes merkle root %s does not match header %s", root, block.Header.VotesMerkleRoot)
		}
	} else if !block.Header.VotesMerkleRoot.IsZero() {
		return ruleErr(InvalidVotesMerkleRoot, "block has no votes but header commits to a non-zero votes root")
	}

	for _, v := range block.Votes {
		if v.Timestamp.Sub(now) > e.Params.VoteTimestampTolerance || now.Sub(v.Timestamp) > e.Params.VoteTimestampTolerance {
			return ruleErr(VoteTimestampOutOfRange, "vote %s timestamp %s outside %s of now", v.VoteID, v.Timestamp, e.Params.VoteTimestampTolerance)
		}
	}

	validatorKeys := make(map[string][]byte, len(block.Validators))
	for _, val := range block.Validators {
		validatorKeys[string(val.Address)] = val.PublicKey
	}
	votesByVoter := make(map[string]*chaintypes.Vote, len(block.Votes))
	for _, v := range block.Votes {
		votesByVoter[string(v.Voter)] = v
		key, ok := validatorKeys[string(v.Voter)]
		if !ok {
			return ruleErr(VoteSignatureInvalid, "vote %s: voter %s is not in the block's validator set", v.VoteID, v.Voter)
		}
		data, err := v.CanonicalBytes()
		if err != nil {
			return ruleErr(RecordFailed, "vote %s: %v", v.VoteID, err)
		}
		if !e.verifier.Verify(data, v.Signature, key) {
			return ruleErr(VoteSignatureInvalid, "vote %s: signature does not verify against the block's validator set", v.VoteID)
		}
	}

	presentBits := bitset.NewBytes(len(expected))
	for i, v := range expected {
		if _, ok := votesByVoter[string(v.Address)]; ok {
			presentBits.Set(i)
		}
	}
	var missing []*chaintypes.Validator
	for i, v := range expected {
		if !presentBits.Get(i) {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		for _, v := range missing {
			e.mempool.HandleValidationFailure("expected validator did not vote", v)
		}
		return ruleErr(MissingExpectedValidator, "%d of %d expected validators did not vote", len(missing), len(expected))
	}

	return nil
}
