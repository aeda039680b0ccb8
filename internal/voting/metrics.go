// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"errors"
	"strconv"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/storage"
)

// metricsCacheTTL bounds how long a cached metric value is served
// before being recomputed, mirroring the 300s TTL spec §4.3 assigns
// the storage layer's own validator-metrics cache.
const metricsCacheTTL = 300 * time.Second

// HasParticipated reports whether address has cast a vote in the
// currently active voting period.
func (e *Engine) HasParticipated(address string) (bool, error) {
	active, err := e.storage.ActiveVotingPeriod()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.storage.HasVoted(active.PeriodID, address)
}

// GetActiveVoters returns the set of voter addresses that have cast a
// vote in the currently active period.
func (e *Engine) GetActiveVoters() (map[string]bool, error) {
	active, err := e.storage.ActiveVotingPeriod()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	votes, err := e.storage.VotesByPeriod(active.PeriodID)
	if err != nil {
		return nil, err
	}
	voters := make(map[string]bool, len(votes))
	for _, v := range votes {
		voters[string(v.Voter)] = true
	}
	return voters, nil
}

// Metrics summarizes the currently active voting period's vote count,
// aggregate quadratic power and approval split, per spec §4.1's
// get_voting_metrics read.
type Metrics struct {
	PeriodID     string
	TotalVotes   int
	TotalPower   float64
	ApproveCount int
	RejectCount  int
}

// GetVotingMetrics returns a cached summary of the currently active
// period, recomputing it at most once per metricsCacheTTL.
func (e *Engine) GetVotingMetrics() (Metrics, error) {
	active, err := e.storage.ActiveVotingPeriod()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Metrics{}, nil
		}
		return Metrics{}, err
	}

	cacheKey := "metrics:" + active.PeriodID
	if cached, ok := e.getCachedMetric(cacheKey + ":totalVotes"); ok {
		power, _ := e.getCachedMetric(cacheKey + ":totalPower")
		approve, _ := e.getCachedMetric(cacheKey + ":approve")
		reject, _ := e.getCachedMetric(cacheKey + ":reject")
		return Metrics{PeriodID: active.PeriodID, TotalVotes: int(cached), TotalPower: power, ApproveCount: int(approve), RejectCount: int(reject)}, nil
	}

	votes, err := e.storage.VotesByPeriod(active.PeriodID)
	if err != nil {
		return Metrics{}, err
	}

	m := Metrics{PeriodID: active.PeriodID, TotalVotes: len(votes)}
	for _, v := range votes {
		power, _ := strconv.ParseFloat(v.VotingPower.String(), 64)
		m.TotalPower += power
		if v.Approve {
			m.ApproveCount++
		} else {
			m.RejectCount++
		}
	}

	e.setCachedMetric(cacheKey+":totalVotes", float64(m.TotalVotes))
	e.setCachedMetric(cacheKey+":totalPower", m.TotalPower)
	e.setCachedMetric(cacheKey+":approve", float64(m.ApproveCount))
	e.setCachedMetric(cacheKey+":reject", float64(m.RejectCount))
	return m, nil
}

// Schedule describes where the engine stands in the period lifecycle,
// per spec §4.1's get_voting_schedule read.
type Schedule struct {
	CurrentPeriod     *chaintypes.VotingPeriod
	NextVotingHeight  uint64
	EstimatedDuration time.Duration
}

// GetVotingSchedule reports the current period (if any) and the next
// scheduled transition height.
func (e *Engine) GetVotingSchedule() (Schedule, error) {
	height, err := e.storage.GetCurrentHeight()
	if err != nil {
		return Schedule{}, err
	}

	active, err := e.storage.ActiveVotingPeriod()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Schedule{}, err
	}

	next := nextVotingHeight(height, e.Params.VotingPeriodBlocks)
	if active != nil {
		next = active.EndBlock + 1
	}

	return Schedule{
		CurrentPeriod:     active,
		NextVotingHeight:  next,
		EstimatedDuration: e.scheduler.millisUntil(height, next),
	}, nil
}

func (e *Engine) getCachedMetric(key string) (float64, bool) {
	v, ok := e.metricsCache.Get(key)
	if !ok || time.Now().After(v.expires) {
		return 0, false
	}
	return v.value, true
}

func (e *Engine) setCachedMetric(key string, value float64) {
	e.metricsCache.Add(key, cachedMetric{value: value, expires: time.Now().Add(metricsCacheTTL)})
}
