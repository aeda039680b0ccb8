// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"errors"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/storage"
)

// SubmitVote validates and persists a single quadratic-weighted
// ballot, per spec §4.1. voteMu is acquired first and periodMu second,
// the fixed lock order of spec §5, since admitting a vote needs a
// stable read of the current period's state.
func (e *Engine) SubmitVote(vote *chaintypes.Vote) (bool, error) {
	e.voteMu.Lock()
	defer e.voteMu.Unlock()
	e.periodMu.Lock()
	defer e.periodMu.Unlock()

	period, err := e.storage.GetVotingPeriod(vote.PeriodID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, ruleErr(InactivePeriod, "period %s does not exist", vote.PeriodID)
		}
		return false, ruleErr(RecordFailed, "loading period %s: %v", vote.PeriodID, err)
	}
	if period.Status != chaintypes.PeriodActive {
		return false, ruleErr(InactivePeriod, "period %s has status %s", vote.PeriodID, period.Status)
	}

	height, err := e.storage.GetCurrentHeight()
	if err != nil {
		return false, ruleErr(RecordFailed, "reading current height: %v", err)
	}
	if !period.ContainsHeight(height) {
		return false, ruleErr(OutsideWindow, "height %d outside period window [%d,%d]", height, period.StartBlock, period.EndBlock)
	}

	if vote.ChainVoteData == nil {
		return false, ruleErr(InvalidVoteType, "only chain-selection votes are accepted by this core")
	}

	canonical, err := vote.CanonicalBytes()
	if err != nil {
		return false, ruleErr(RecordFailed, "serializing vote %s: %v", vote.VoteID, err)
	}
	if len(canonical) > e.Params.MaxVoteSizeBytes {
		return false, ruleErr(VoteTooLarge, "vote %s serializes to %d bytes, max %d", vote.VoteID, len(canonical), e.Params.MaxVoteSizeBytes)
	}

	hasVoted, err := e.storage.HasVoted(vote.PeriodID, string(vote.Voter))
	if err != nil {
		return false, ruleErr(RecordFailed, "checking prior vote: %v", err)
	}
	if hasVoted {
		return false, ruleErr(DuplicateVote, "voter %s already voted in period %s", vote.Voter, vote.PeriodID)
	}

	ok, err := vote.VerifySignature(e.verifier)
	if err != nil {
		return false, ruleErr(InvalidSignature, "vote %s: %v", vote.VoteID, err)
	}
	if !ok {
		return false, ruleErr(InvalidSignature, "vote %s: signature does not verify", vote.VoteID)
	}

	// ChainVoteData.Amount is an amount.Amount, a 128-bit unsigned
	// integer by construction: it cannot encode a negative or
	// non-finite value, so the "non-negative finite number" rule of
	// spec §4.1 is enforced by the type itself rather than by a
	// runtime parse here.
	vote.VotingPower = vote.ChainVoteData.Amount.Sqrt()
	if vote.Timestamp.IsZero() {
		vote.Timestamp = time.Now().UTC()
	}
	vote.BlockHeight = height

	existing, err := e.storage.VotesByPeriod(vote.PeriodID)
	if err != nil {
		return false, ruleErr(RecordFailed, "loading existing votes: %v", err)
	}

	txErr := e.storage.WithTransaction(func() error {
		if err := e.storage.PutVote(vote); err != nil {
			return err
		}
		allVotes := append(append([]*chaintypes.Vote(nil), existing...), vote)
		root, err := votesMerkleRoot(allVotes)
		if err != nil {
			return err
		}
		period.VotesMerkleRoot = root
		return e.storage.PutVotingPeriod(period)
	})
	if txErr != nil {
		if errors.Is(txErr, storage.ErrDuplicateVote) {
			return false, ruleErr(DuplicateVote, "voter %s already voted in period %s", vote.Voter, vote.PeriodID)
		}
		e.logAudit("voting", "vote_record_failed", audit.SeverityCritical, map[string]interface{}{
			"voteId": vote.VoteID, "periodId": vote.PeriodID, "error": txErr.Error(),
		})
		return false, ruleErr(RecordFailed, "persisting vote %s: %v", vote.VoteID, txErr)
	}

	log.Debugf("voting: recorded vote %s in period %s with power %s", vote.VoteID, vote.PeriodID, vote.VotingPower)
	return true, nil
}
