// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// CompactionResult reports what a Compact pass removed.
type CompactionResult struct {
	VotesDeleted   int
	ShardsDeleted  int
	PeriodsDeleted int
}

// Compact sweeps the full keyspace and deletes records past their
// retention horizon, per spec §4.3: processed votes older than
// voteRetention, soft-deleted shards older than shardRetention, and
// completed voting periods more than periodRetentionBlocks behind
// currentHeight. UTXO records are never touched. Compact must not
// overlap an active transaction, per spec §5's exclusivity rule.
func (s *Store) Compact(currentHeight uint64, voteRetention, shardRetention time.Duration, periodRetentionBlocks uint64) (*CompactionResult, error) {
	if s.activeTx() != nil {
		return nil, ErrTransactionInProgress
	}

	result := &CompactionResult{}
	now := time.Now()

	voteCutoff := now.Add(-voteRetention)
	periodStatus := make(map[string]chaintypes.PeriodStatus)
	var staleVotes []*chaintypes.Vote
	if err := s.rawIterate(prefixVote, func(key string, value []byte) bool {
		var vote chaintypes.Vote
		if jsonErr := json.Unmarshal(value, &vote); jsonErr == nil && vote.Timestamp.Before(voteCutoff) {
			status, ok := periodStatus[vote.PeriodID]
			if !ok {
				period, periodErr := s.GetVotingPeriod(vote.PeriodID)
				if periodErr == nil {
					status = period.Status
				}
				periodStatus[vote.PeriodID] = status
			}
			// A vote is only eligible for compaction once it is both
			// older than the retention horizon and its owning period
			// has finished collecting votes, per spec §4.3; deleting it
			// while the period is still active would break HasVoted's
			// duplicate-vote guarantee and desync the period's
			// VotesMerkleRoot.
			if status == chaintypes.PeriodCompleted {
				staleVotes = append(staleVotes, &vote)
			}
		}
		return true
	}); err != nil {
		return nil, err
	}
	for _, vote := range staleVotes {
		if err := s.DeleteVote(vote.PeriodID, string(vote.Voter)); err != nil {
			return result, err
		}
		result.VotesDeleted++
	}

	shardCutoff := now.Add(-shardRetention)
	shards, err := s.softDeletedShardsOlderThan(shardCutoff)
	if err != nil {
		return result, err
	}
	for _, shardID := range shards {
		if err := s.rawDel(shardKey(shardID)); err != nil {
			return result, err
		}
		result.ShardsDeleted++
	}

	stalePeriods, err := s.CompletedPeriodsOlderThan(currentHeight, periodRetentionBlocks)
	if err != nil {
		return result, err
	}
	for _, period := range stalePeriods {
		if err := s.DeleteVotingPeriod(period.PeriodID); err != nil {
			return result, err
		}
		result.PeriodsDeleted++
	}

	s.logAudit("storage", "compact", audit.SeverityInfo, map[string]interface{}{
		"votes_deleted":   result.VotesDeleted,
		"shards_deleted":  result.ShardsDeleted,
		"periods_deleted": result.PeriodsDeleted,
	})
	return result, nil
}
