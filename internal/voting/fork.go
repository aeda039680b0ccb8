// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// HandleChainFork arbitrates between two competing chains at a fork,
// per spec §4.1. If the network is unstable, oldID is returned
// unchanged and no voting period is opened. Otherwise an ephemeral
// chain-voting period is opened at forkHeight, every validator is
// asked (via the node collaborator, one goroutine per validator)
// to cast a weighted ballot, and the chain with the greater summed
// quadratic voting power wins; oldID wins ties.
func (e *Engine) HandleChainFork(oldID, newID string, forkHeight uint64, validators []*chaintypes.Validator) (string, error) {
	if !e.Stable() {
		log.Infof("voting: network unstable, fork at height %d resolved to incumbent %s without a vote", forkHeight, oldID)
		return oldID, nil
	}

	e.periodMu.Lock()
	period := &chaintypes.VotingPeriod{
		PeriodID: "fork-" + strconv.FormatUint(forkHeight, 10) + "-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		// An ephemeral fork-arbitration period is not scheduled
		// against the normal block-height grid the way a
		// node_selection period is: it spans every height so
		// SubmitVote's window check never rejects a validator's
		// ballot because the chain's current tip has moved during
		// collection. The fork height itself travels on each vote's
		// ChainVoteData.ForkHeight instead.
		StartBlock: 0,
		EndBlock:   ^uint64(0),
		StartTime:  time.Now().UTC(),
		Status:     chaintypes.PeriodActive,
		Type:       chaintypes.PeriodNodeSelection,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.storage.PutVotingPeriod(period); err != nil {
		e.periodMu.Unlock()
		return oldID, ruleErr(InitFailed, "opening fork-arbitration period: %v", err)
	}
	e.periodMu.Unlock()

	votes := e.collectForkVotes(period.PeriodID, oldID, newID, forkHeight, validators)

	e.periodMu.Lock()
	if err := e.closeEphemeralPeriod(period); err != nil {
		log.Warnf("voting: failed to close fork-arbitration period %s: %v", period.PeriodID, err)
	}
	e.periodMu.Unlock()

	var oldPower, newPower float64
	for _, v := range votes {
		power, _ := strconv.ParseFloat(v.VotingPower.String(), 64)
		switch v.ChainVoteData.TargetChainID {
		case newID:
			newPower += power
		case oldID:
			oldPower += power
		}
	}

	if newPower > oldPower {
		log.Infof("voting: fork at height %d resolved to %s (%.0f vs %.0f)", forkHeight, newID, newPower, oldPower)
		return newID, nil
	}
	log.Infof("voting: fork at height %d resolved to incumbent %s (%.0f vs %.0f)", forkHeight, oldID, oldPower, newPower)
	return oldID, nil
}

// collectForkVotes fans out one goroutine per validator to solicit a
// fork-selection vote via the node collaborator, then admits every
// returned ballot through the engine's normal vote-submission pipeline
// so quadratic power, signature verification and the period's merkle
// index all apply uniformly to fork votes and ordinary ones alike.
// The fan-out uses errgroup in place of the teacher's now-dropped peer
// fan-out. The group has no concurrency limit and no context: a failed
// request cancels no sibling and is only logged once every goroutine
// has finished, and a validator declining to vote is not an error.
func (e *Engine) collectForkVotes(periodID, oldID, newID string, forkHeight uint64, validators []*chaintypes.Validator) []*chaintypes.Vote {
	var (
		mu      sync.Mutex
		admitted []*chaintypes.Vote
	)

	var g errgroup.Group
	for _, v := range validators {
		v := v
		g.Go(func() error {
			vote, err := e.node.RequestForkVote(v, periodID, oldID, newID, forkHeight)
			if err != nil {
				return err
			}
			if vote == nil {
				return nil
			}
			// The vote's signature was computed over PeriodID and
			// Voter as the node collaborator set them; mutating either
			// field here would invalidate it before SubmitVote ever
			// checks it. A mismatch means the collaborator signed a
			// ballot for the wrong period or the wrong validator, so
			// it is dropped rather than coerced into shape.
			if vote.PeriodID != periodID || vote.Voter != v.Address {
				log.Debugf("voting: fork vote from %s carries periodID/voter mismatch, dropping", v.Address)
				return nil
			}
			if _, submitErr := e.SubmitVote(vote); submitErr != nil {
				log.Debugf("voting: fork vote from %s rejected: %v", v.Address, submitErr)
				return nil
			}
			mu.Lock()
			admitted = append(admitted, vote)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warnf("voting: fork-vote collection for height %d: %v", forkHeight, err)
	}
	return admitted
}

// closeEphemeralPeriod marks a fork-arbitration period Completed
// without opening a successor, since it does not belong to the
// regular VOTING_PERIOD_BLOCKS grid. Callers must hold periodMu.
func (e *Engine) closeEphemeralPeriod(period *chaintypes.VotingPeriod) error {
	votes, err := e.storage.VotesByPeriod(period.PeriodID)
	if err != nil {
		return err
	}
	root, err := votesMerkleRoot(votes)
	if err != nil {
		return err
	}
	period.VotesMerkleRoot = root
	period.Status = chaintypes.PeriodCompleted
	period.EndTime = time.Now().UTC()
	period.IsAudited = true
	return e.storage.PutVotingPeriod(period)
}
