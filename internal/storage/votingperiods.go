// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// PutVotingPeriod persists a voting period record.
func (s *Store) PutVotingPeriod(period *chaintypes.VotingPeriod) error {
	data, err := json.Marshal(period)
	if err != nil {
		return err
	}
	return s.rawPut(votingPeriodKey(period.PeriodID), data)
}

// GetVotingPeriod returns the voting period with the given id, or
// ErrNotFound.
func (s *Store) GetVotingPeriod(periodID string) (*chaintypes.VotingPeriod, error) {
	data, err := s.rawGet(votingPeriodKey(periodID))
	if err != nil {
		return nil, err
	}
	var period chaintypes.VotingPeriod
	if err := json.Unmarshal(data, &period); err != nil {
		return nil, err
	}
	return &period, nil
}

// ActiveVotingPeriod scans for the single period with status=active,
// returning ErrNotFound if none exists. Period uniqueness (at most one
// active period at any instant) is the direct voting engine's
// responsibility to enforce on write; this is a read-side scan.
func (s *Store) ActiveVotingPeriod() (*chaintypes.VotingPeriod, error) {
	var found *chaintypes.VotingPeriod
	err := s.rawIterate(prefixVotingPeriod, func(_ string, value []byte) bool {
		var period chaintypes.VotingPeriod
		if jsonErr := json.Unmarshal(value, &period); jsonErr == nil && period.IsActive() {
			found = &period
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// CompletedPeriodsOlderThan returns every completed voting period
// whose EndBlock lies more than horizon blocks behind currentHeight,
// the compaction predicate of spec §4.3.
func (s *Store) CompletedPeriodsOlderThan(currentHeight, horizon uint64) ([]*chaintypes.VotingPeriod, error) {
	var stale []*chaintypes.VotingPeriod
	err := s.rawIterate(prefixVotingPeriod, func(_ string, value []byte) bool {
		var period chaintypes.VotingPeriod
		if jsonErr := json.Unmarshal(value, &period); jsonErr == nil {
			if period.Status == chaintypes.PeriodCompleted && currentHeight > period.EndBlock+horizon {
				stale = append(stale, &period)
			}
		}
		return true
	})
	return stale, err
}

// DeleteVotingPeriod removes a period record, used by compaction.
func (s *Store) DeleteVotingPeriod(periodID string) error {
	return s.rawDel(votingPeriodKey(periodID))
}
