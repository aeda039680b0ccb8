// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/merkle"
	"github.com/h3tag-network/h3tag-node/internal/storage"
)

// Initialize recovers the latest period from storage, computes the
// next scheduled voting height and either opens a period immediately
// (if due and the network is stable) or arms a timer for the
// transition, per spec §4.1.
func (e *Engine) Initialize() error {
	e.periodMu.Lock()
	defer e.periodMu.Unlock()

	active, err := e.storage.ActiveVotingPeriod()
	if err == nil {
		e.current = &currentPeriod{periodID: active.PeriodID, startBlock: active.StartBlock, endBlock: active.EndBlock}
		e.armCompletion(active)
		log.Infof("voting: recovered active period %s (%d-%d)", active.PeriodID, active.StartBlock, active.EndBlock)
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return ruleErr(InitFailed, "recovering active period: %v", err)
	}

	currentHeight, err := e.storage.GetCurrentHeight()
	if err != nil {
		return ruleErr(InitFailed, "reading current height: %v", err)
	}

	target := nextVotingHeight(currentHeight, e.Params.VotingPeriodBlocks)
	if currentHeight >= target && e.Stable() {
		if err := e.openPeriodLocked(target); err != nil {
			return ruleErr(InitFailed, "opening due period at height %d: %v", target, err)
		}
		return nil
	}

	e.armTransition(currentHeight, target)
	return nil
}

// armTransition schedules the Scheduled -> Active transition for the
// period due at targetHeight, in wall-clock milliseconds derived from
// average block time.
func (e *Engine) armTransition(currentHeight, targetHeight uint64) {
	delay := e.scheduler.millisUntil(currentHeight, targetHeight)
	e.scheduler.arm(delay, func() { e.onScheduledOpen(targetHeight) })
}

// armCompletion schedules the Active -> Completed transition of
// period at its EndBlock.
func (e *Engine) armCompletion(period *chaintypes.VotingPeriod) {
	height, err := e.storage.GetCurrentHeight()
	if err != nil {
		height = period.StartBlock
	}
	delay := e.scheduler.millisUntil(height, period.EndBlock+1)
	e.scheduler.arm(delay, func() { e.onScheduledComplete(period.PeriodID) })
}

// onScheduledOpen is the periodic checker's callback for a due period
// transition. Failures are retried on the next tick; after
// MaxConsecutiveFailures the checker stops and emits an audit event,
// per spec §4.1's failure semantics.
func (e *Engine) onScheduledOpen(targetHeight uint64) {
	e.periodMu.Lock()
	defer e.periodMu.Unlock()

	if !e.Stable() {
		e.armTransition(targetHeight, targetHeight)
		return
	}

	if err := e.openPeriodLocked(targetHeight); err != nil {
		e.consecutivePeriodFailures++
		log.Warnf("voting: failed to open period at height %d: %v", targetHeight, err)
		if e.consecutivePeriodFailures >= e.Params.MaxConsecutiveFailures {
			e.logAudit("voting", "period_checker_stopped", audit.SeverityCritical, map[string]interface{}{
				"targetHeight": targetHeight,
				"error":        err.Error(),
			})
			return
		}
		e.scheduler.arm(e.Params.FallbackAvgBlockTime, func() { e.onScheduledOpen(targetHeight) })
		return
	}
	e.consecutivePeriodFailures = 0
}

// onScheduledComplete is the periodic checker's callback for a period
// reaching its EndBlock.
func (e *Engine) onScheduledComplete(periodID string) {
	e.periodMu.Lock()
	defer e.periodMu.Unlock()

	if err := e.completePeriodLocked(periodID); err != nil {
		e.consecutivePeriodFailures++
		log.Warnf("voting: failed to complete period %s: %v", periodID, err)
		if e.consecutivePeriodFailures >= e.Params.MaxConsecutiveFailures {
			e.logAudit("voting", "period_checker_stopped", audit.SeverityCritical, map[string]interface{}{
				"periodId": periodID,
				"error":    err.Error(),
			})
			return
		}
		e.scheduler.arm(e.Params.FallbackAvgBlockTime, func() { e.onScheduledComplete(periodID) })
		return
	}
	e.consecutivePeriodFailures = 0
}

// StartVotingPeriod explicitly opens a new period at startBlock when
// the network is stable, the administrative escape hatch spec §4.1
// names alongside the automatic scheduled transition.
func (e *Engine) StartVotingPeriod(startBlock uint64) error {
	if !e.Stable() {
		return ruleErr(InitFailed, "network unstable, refusing to start voting period at height %d", startBlock)
	}
	e.periodMu.Lock()
	defer e.periodMu.Unlock()
	return e.openPeriodLocked(startBlock)
}

// openPeriodLocked opens a new Active period starting at startBlock.
// Callers must hold periodMu.
func (e *Engine) openPeriodLocked(startBlock uint64) error {
	if existing, err := e.storage.ActiveVotingPeriod(); err == nil {
		return ruleErr(InitFailed, "period %s is still active", existing.PeriodID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	endBlock := startBlock + e.Params.VotingPeriodBlocks - 1
	avgBlockTime := e.scheduler.averageBlockTime(startBlock)

	period := &chaintypes.VotingPeriod{
		PeriodID:   periodID(startBlock),
		StartBlock: startBlock,
		EndBlock:   endBlock,
		StartTime:  now,
		EndTime:    now.Add(time.Duration(e.Params.VotingPeriodBlocks) * avgBlockTime),
		Status:     chaintypes.PeriodActive,
		Type:       chaintypes.PeriodNodeSelection,
		CreatedAt:  now,
	}
	if err := e.storage.PutVotingPeriod(period); err != nil {
		return err
	}

	e.current = &currentPeriod{periodID: period.PeriodID, startBlock: startBlock, endBlock: endBlock}
	e.armCompletion(period)
	log.Infof("voting: opened period %s (%d-%d)", period.PeriodID, startBlock, endBlock)
	return nil
}

// completePeriodLocked transitions a period from Active to Completed,
// finalizing its votes merkle root over every vote cast within it.
// Callers must hold periodMu. Once completed, HasVoted/PutVote
// continuing to reject further writes for this period is enforced by
// SubmitVote's own active-period check, not by this method.
func (e *Engine) completePeriodLocked(id string) error {
	period, err := e.storage.GetVotingPeriod(id)
	if err != nil {
		return err
	}
	if period.Status != chaintypes.PeriodActive {
		return nil
	}

	votes, err := e.storage.VotesByPeriod(id)
	if err != nil {
		return err
	}
	root, err := votesMerkleRoot(votes)
	if err != nil {
		return err
	}

	period.Status = chaintypes.PeriodCompleted
	period.VotesMerkleRoot = root
	period.EndTime = time.Now().UTC()
	period.IsAudited = true
	if err := e.storage.PutVotingPeriod(period); err != nil {
		return err
	}

	if e.current != nil && e.current.periodID == id {
		e.current = nil
	}
	log.Infof("voting: completed period %s with %d votes", id, len(votes))

	if e.Stable() {
		if err := e.openPeriodLocked(period.EndBlock + 1); err != nil {
			log.Warnf("voting: failed to open successor period after %s: %v", id, err)
		}
	}
	return nil
}

// votesMerkleRoot builds the merkle root over a period's votes,
// sorted by VoteID so the root does not depend on storage iteration
// order.
func votesMerkleRoot(votes []*chaintypes.Vote) (chainhash.Hash, error) {
	if len(votes) == 0 {
		return chainhash.ZeroHash, nil
	}
	sorted := append([]*chaintypes.Vote(nil), votes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VoteID < sorted[j].VoteID })

	leaves, err := chaintypes.VoteLeaves(sorted)
	if err != nil {
		return chainhash.ZeroHash, err
	}
	return merkle.CreateRootOf(leaves)
}

// periodID derives a deterministic identifier from a period's start
// height, matching the storage key's "voting_period:<id>" convention
// while remaining stable across recovery after a restart.
func periodID(startBlock uint64) string {
	return "period-" + strconv.FormatUint(startBlock, 10)
}
