// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
)

// PeriodStatus is a voting period's position in its state machine,
// per spec §4.1: Scheduled -> Active -> {Completed, Cancelled}.
type PeriodStatus string

const (
	PeriodScheduled PeriodStatus = "scheduled"
	PeriodActive    PeriodStatus = "active"
	PeriodCompleted PeriodStatus = "completed"
	PeriodCancelled PeriodStatus = "cancelled"
)

// PeriodType distinguishes a period's governance purpose. Only
// node_selection periods are exercised by fork arbitration in this
// core; parameter_change periods are modeled for storage completeness.
type PeriodType string

const (
	PeriodNodeSelection   PeriodType = "node_selection"
	PeriodParameterChange PeriodType = "parameter_change"
)

// VotingPeriod is a contiguous span of block heights during which
// votes are collected and finalized atomically, per spec §3.
type VotingPeriod struct {
	PeriodID      string         `json:"periodId"`
	StartBlock    uint64         `json:"startBlock"`
	EndBlock      uint64         `json:"endBlock"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       time.Time      `json:"endTime"`
	Status        PeriodStatus   `json:"status"`
	Type          PeriodType     `json:"type"`
	VotesMerkleRoot chainhash.Hash `json:"votesMerkleRoot"`
	IsAudited     bool           `json:"isAudited"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ContainsHeight reports whether height falls within the period's
// active block window, inclusive of both ends.
func (p *VotingPeriod) ContainsHeight(height uint64) bool {
	return height >= p.StartBlock && height <= p.EndBlock
}

// IsActive reports whether the period is currently accepting votes.
func (p *VotingPeriod) IsActive() bool {
	return p.Status == PeriodActive
}

// StorageKey returns the "voting_period:<id>" key this period is
// indexed under.
func (p *VotingPeriod) StorageKey() string {
	return "voting_period:" + p.PeriodID
}
