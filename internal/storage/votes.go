// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"errors"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// ErrDuplicateVote is returned by PutVote when a vote already exists
// for the given (periodId, voter) pair, enforcing spec §3's
// at-most-one-vote invariant.
var ErrDuplicateVote = errors.New("storage: duplicate vote for this period and voter")

// PutVote persists a vote keyed by (periodId, voter), rejecting a
// second vote from the same voter in the same period. Callers
// typically invoke this inside a transaction alongside the period's
// merkle index update, per spec §4.1.
func (s *Store) PutVote(vote *chaintypes.Vote) error {
	key := voteKey(vote.PeriodID, string(vote.Voter))
	if _, err := s.rawGet(key); err == nil {
		return ErrDuplicateVote
	} else if err != ErrNotFound {
		return err
	}

	data, err := json.Marshal(vote)
	if err != nil {
		return err
	}
	if err := s.rawPut(key, data); err != nil {
		return err
	}
	return s.rawPut(periodVoteKey(vote.PeriodID, string(vote.Voter)), data)
}

// GetVote returns the vote cast by voter in period periodID, or
// ErrNotFound.
func (s *Store) GetVote(periodID, voter string) (*chaintypes.Vote, error) {
	data, err := s.rawGet(voteKey(periodID, voter))
	if err != nil {
		return nil, err
	}
	var vote chaintypes.Vote
	if err := json.Unmarshal(data, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// VotesByPeriod returns every vote cast within periodID.
func (s *Store) VotesByPeriod(periodID string) ([]*chaintypes.Vote, error) {
	var votes []*chaintypes.Vote
	err := s.rawIterate(prefixVote+periodID+":", func(_ string, value []byte) bool {
		var v chaintypes.Vote
		if jsonErr := json.Unmarshal(value, &v); jsonErr == nil {
			votes = append(votes, &v)
		}
		return true
	})
	return votes, err
}

// HasVoted reports whether voter has already cast a vote in periodID.
func (s *Store) HasVoted(periodID, voter string) (bool, error) {
	_, err := s.rawGet(voteKey(periodID, voter))
	if err == nil {
		return true, nil
	}
	if err == ErrNotFound {
		return false, nil
	}
	return false, err
}

// DeleteVote removes a vote record, used by compaction once a vote is
// past its retention horizon and already reflected in the period's
// aggregated result.
func (s *Store) DeleteVote(periodID, voter string) error {
	if err := s.rawDel(voteKey(periodID, voter)); err != nil {
		return err
	}
	return s.rawDel(periodVoteKey(periodID, voter))
}
