// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"math"
	"sync"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
)

// maxTimerDuration is the natural timer cap of the Go runtime,
// resolving spec §9's open question about the source's JavaScript
// setTimeout-maximum sentinel: time.Duration is an int64 count of
// nanoseconds, so the largest representable delay is math.MaxInt64.
// A scheduled interval longer than this is split into re-armed
// sub-timeouts rather than truncated.
const maxTimerDuration = time.Duration(math.MaxInt64)

// scheduler computes average block time and re-arms period-transition
// timers in wall-clock milliseconds, per spec §4.1's scheduling rule.
type scheduler struct {
	storage Storage
	params  chaincfg.Params

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newScheduler(storage Storage, params chaincfg.Params) *scheduler {
	return &scheduler{storage: storage, params: params}
}

// averageBlockTime samples the last N blocks (N =
// AvgBlockTimeSampleSize) ending at currentHeight and returns their
// mean inter-block interval. It falls back to FallbackAvgBlockTime if
// N is below 2, currentHeight is below N, either end block cannot be
// read, or the sampled span is not positive.
func (s *scheduler) averageBlockTime(currentHeight uint64) time.Duration {
	n := uint64(s.params.AvgBlockTimeSampleSize)
	if n < 2 || currentHeight < n {
		return s.params.FallbackAvgBlockTime
	}

	oldest, err := s.storage.GetBlockByHeight(currentHeight - n + 1)
	if err != nil {
		return s.params.FallbackAvgBlockTime
	}
	newest, err := s.storage.GetBlockByHeight(currentHeight)
	if err != nil {
		return s.params.FallbackAvgBlockTime
	}

	span := newest.Header.Timestamp.Sub(oldest.Header.Timestamp)
	if span <= 0 {
		return s.params.FallbackAvgBlockTime
	}
	return span / time.Duration(n-1)
}

// millisUntil computes the scheduling interval for a transition due at
// targetHeight, given the chain is currently at currentHeight: the
// number of remaining blocks times the average block time.
func (s *scheduler) millisUntil(currentHeight, targetHeight uint64) time.Duration {
	if targetHeight <= currentHeight {
		return 0
	}
	remaining := targetHeight - currentHeight
	return time.Duration(remaining) * s.averageBlockTime(currentHeight)
}

// arm schedules fn to run after delay, splitting delay into re-armed
// sub-timeouts of at most maxTimerDuration each so the single
// time.Timer underlying this call never needs a duration the runtime
// cannot represent.
func (s *scheduler) arm(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	step := delay
	if step > maxTimerDuration {
		step = maxTimerDuration
	}
	remaining := delay - step

	s.timer = time.AfterFunc(step, func() {
		if remaining > 0 {
			s.arm(remaining, fn)
			return
		}
		fn()
	})
}

// stop cancels any pending timer and prevents future re-arming.
func (s *scheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// nextVotingHeight rounds currentHeight up to the next multiple of
// VotingPeriodBlocks, per spec §4.1's initialize() contract:
// next_voting_height = ceil(currentHeight / VOTING_PERIOD_BLOCKS) *
// VOTING_PERIOD_BLOCKS.
func nextVotingHeight(currentHeight, periodBlocks uint64) uint64 {
	if periodBlocks == 0 {
		return currentHeight
	}
	return ((currentHeight + periodBlocks - 1) / periodBlocks) * periodBlocks
}
