// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg collects the tunable consensus constants referenced
// throughout the block validator and direct voting engine. It plays
// the role the teacher's chaincfg package plays for dcrd: a single
// place naming every magic number so validation code reads as
// "compare against Params.X" rather than a scattering of literals.
package chaincfg

import "time"

// Params bundles every consensus-level constant consumed by the
// storage layer, block validator and direct voting engine. A single
// Params value is threaded through construction of every component
// that needs consensus knowledge, mirroring the teacher's convention
// of passing *chaincfg.Params rather than reading package globals.
type Params struct {
	// Monetary policy.
	InitialSupply  uint64 // whole units
	MaxSupply      uint64 // whole units
	InitialReward  uint64 // whole units, block 0 reward
	MinReward      uint64 // whole units, reward floor once saturated
	HalvingInterval uint64 // blocks between reward halvings
	MaxHalvings    uint64 // halvings after which the reward saturates at MinReward

	// Proof-of-work.
	MaxTargetHex string // hex string of maxTarget, the difficulty-1 target

	// Block validator.
	MaxTransactionsPerBlock int
	MinBlockSize            uint64 // bytes
	MaxBlockSize            uint64 // bytes
	BlockSizeChangeCap      float64 // max fractional change per block, e.g. 0.20
	MinValidators           int
	ValidatorWeightQuorum   float64 // e.g. 0.66
	TransactionBatchSize    int     // validation batch size, e.g. 100
	TimestampFutureTolerance time.Duration
	ValidationTimeout       time.Duration

	// Direct voting engine.
	VotingPeriodBlocks    uint64
	MinPeerCount          int
	MaxConsecutiveFailures int
	NetworkCooldown       time.Duration
	MaxVoteSizeBytes      int
	VoteTimestampTolerance time.Duration
	ForkVoteQuorum        float64 // 2/3 majority, e.g. 0.667
	FallbackAvgBlockTime  time.Duration
	AvgBlockTimeSampleSize int

	// Storage layer.
	StorageBatchSizeLimit int
	TransactionWatchdog   time.Duration
	VoteRetentionPeriod   time.Duration // compaction horizon for processed votes
	ShardRetentionPeriod  time.Duration
	StalePeriodRetention  uint64 // blocks behind current height before a completed period is compacted

	// Validator lifecycle.
	ValidatorInactiveAfter time.Duration // lastActive older than this marks inactive
	MaxReputationDelta     int           // per-update reputation change cap
}

// MainNetParams are the production consensus parameters, grounded on
// the constants fixed by spec. MaxSupply is 69,690,000, the lower of
// the two supply caps considered (the other was ten times larger; see
// DESIGN.md's open-questions resolution).
var MainNetParams = Params{
	InitialSupply:   21_000_000,
	MaxSupply:       69_690_000,
	InitialReward:   50,
	MinReward:       1,
	HalvingInterval: 210_000,
	MaxHalvings:     64,

	MaxTargetHex: "00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",

	MaxTransactionsPerBlock:  2000,
	MinBlockSize:             1 << 20,  // 1 MB
	MaxBlockSize:             32 << 20, // 32 MB
	BlockSizeChangeCap:       0.20,
	MinValidators:            4,
	ValidatorWeightQuorum:    0.66,
	TransactionBatchSize:     100,
	TimestampFutureTolerance: 2 * time.Hour,
	ValidationTimeout:        30 * time.Second,

	VotingPeriodBlocks:     1000,
	MinPeerCount:           3,
	MaxConsecutiveFailures: 3,
	NetworkCooldown:        5 * time.Minute,
	MaxVoteSizeBytes:       16 * 1024,
	VoteTimestampTolerance: 5 * time.Minute,
	ForkVoteQuorum:         2.0 / 3.0,
	FallbackAvgBlockTime:   600 * time.Second,
	AvgBlockTimeSampleSize: 100,

	StorageBatchSizeLimit: 1000,
	TransactionWatchdog:   30 * time.Second,
	VoteRetentionPeriod:   60 * 24 * time.Hour,
	ShardRetentionPeriod:  60 * 24 * time.Hour,
	StalePeriodRetention:  10_000,

	ValidatorInactiveAfter: 24 * time.Hour,
	MaxReputationDelta:     10,
}

// SimNetParams relaxes timing- and size-sensitive constants for local
// integration tests, mirroring the teacher's simnet convention of a
// fast, low-quorum network used only in test harnesses.
var SimNetParams = Params{
	InitialSupply:   21_000_000,
	MaxSupply:       69_690_000,
	InitialReward:   50,
	MinReward:       1,
	HalvingInterval: 150,
	MaxHalvings:     64,

	MaxTargetHex: "00000fffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",

	MaxTransactionsPerBlock:  2000,
	MinBlockSize:             1 << 20,
	MaxBlockSize:             32 << 20,
	BlockSizeChangeCap:       0.20,
	MinValidators:            1,
	ValidatorWeightQuorum:    0.66,
	TransactionBatchSize:     100,
	TimestampFutureTolerance: 2 * time.Hour,
	ValidationTimeout:        30 * time.Second,

	VotingPeriodBlocks:     10,
	MinPeerCount:           0,
	MaxConsecutiveFailures: 3,
	NetworkCooldown:        2 * time.Second,
	MaxVoteSizeBytes:       16 * 1024,
	VoteTimestampTolerance: 5 * time.Minute,
	ForkVoteQuorum:         2.0 / 3.0,
	FallbackAvgBlockTime:   1 * time.Second,
	AvgBlockTimeSampleSize: 10,

	StorageBatchSizeLimit: 1000,
	TransactionWatchdog:   30 * time.Second,
	VoteRetentionPeriod:   time.Hour,
	ShardRetentionPeriod:  time.Hour,
	StalePeriodRetention:  100,

	ValidatorInactiveAfter: time.Minute,
	MaxReputationDelta:     10,
}
