// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config declares the tunable surface of spec §9's design
// notes: construction-time collaborators and thresholds, never hidden
// package globals. The struct tags below are what Load binds argv
// against, following the teacher's own config.go pattern.
package config

import "time"

// Config is the tunable parameter surface consumed by storage, the
// block validator and the direct voting engine. Fields mirror
// chaincfg.Params but are expressed as jessevdk/go-flags struct tags,
// which Load uses to parse command-line flags into a Default()-seeded
// Config.
type Config struct {
	Network string `long:"network" description:"network to connect to (mainnet, simnet)" default:"mainnet"`

	DataDir string `long:"datadir" description:"directory to store the leveldb chain database" default:"./data"`

	MinPeerCount int `long:"minpeercount" description:"minimum connected peers required for the network-stability gate" default:"3"`

	VotingPeriodBlocks uint64 `long:"votingperiodblocks" description:"number of blocks per voting period" default:"1000"`

	MaxVoteSizeBytes int `long:"maxvotesizebytes" description:"maximum serialized size of a single vote" default:"16384"`

	MaxTransactionsPerBlock int `long:"maxtxperblock" description:"maximum number of transactions accepted in a single block" default:"2000"`

	BatchSizeLimit int `long:"batchsizelimit" description:"maximum number of operations in a single storage transaction batch" default:"1000"`

	PrimaryCacheSize int `long:"primarycachesize" description:"maximum entries held in the primary block/structure cache" default:"10000"`

	ValidatorMetricsCacheSize int `long:"validatormetricscachesize" description:"maximum entries held in the validator metrics cache" default:"1000"`

	ValidatorMetricsCacheTTL time.Duration `long:"validatormetricscachettl" description:"TTL for validator metrics cache entries" default:"300s"`

	TransactionWatchdog time.Duration `long:"txwatchdog" description:"idle duration after which an open storage transaction is auto-rolled-back" default:"30s"`

	ValidationTimeout time.Duration `long:"validationtimeout" description:"wall-clock cap on a single block validation run" default:"30s"`

	RetryMaxAttempts int `long:"retrymaxattempts" description:"maximum attempts for retryable storage operations" default:"3"`

	RetryInitialDelay time.Duration `long:"retryinitialdelay" description:"initial backoff delay for retryable storage operations" default:"1s"`

	AuditLogPath string `long:"auditlogpath" description:"path to the rotating audit log file" default:"./data/audit.log"`

	AuditLogMaxSizeBytes int64 `long:"auditlogmaxsize" description:"size in bytes at which the audit log rotates" default:"10485760"`
}

// Default returns a Config populated with the same defaults encoded in
// the struct tags above, for callers constructing one programmatically
// rather than through a flag parser.
func Default() *Config {
	return &Config{
		Network:                   "mainnet",
		DataDir:                   "./data",
		MinPeerCount:              3,
		VotingPeriodBlocks:        1000,
		MaxVoteSizeBytes:          16384,
		MaxTransactionsPerBlock:   2000,
		BatchSizeLimit:            1000,
		PrimaryCacheSize:          10000,
		ValidatorMetricsCacheSize: 1000,
		ValidatorMetricsCacheTTL:  300 * time.Second,
		TransactionWatchdog:       30 * time.Second,
		ValidationTimeout:         30 * time.Second,
		RetryMaxAttempts:          3,
		RetryInitialDelay:         time.Second,
		AuditLogPath:              "./data/audit.log",
		AuditLogMaxSizeBytes:      10 * 1024 * 1024,
	}
}
