// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage implements the persistent, key-prefixed ordered
// key-value layer of spec §4.3: goleveldb-backed storage for blocks,
// transactions, UTXOs, votes, voting periods and validator metrics,
// with transactional batches, bounded caches, compaction, backup and
// sharded replication.
package storage

import "strconv"

// Key namespace prefixes, reserved by spec §4.3. Ordering within a
// prefix relies on the numeric suffix being fixed-width and
// zero-padded so lexicographic iteration matches numeric iteration.
const (
	prefixBlockHeight    = "block:height:"
	prefixBlockHash      = "block:hash:"
	prefixBlockMiner     = "block:miner:"
	prefixBlockTimestamp = "block:timestamp:"

	prefixTransaction = "transactions:"
	prefixTxType      = "tx_type:"

	prefixUTXO = "utxo:"

	prefixVote         = "vote:"
	prefixPeriodVote   = "period_vote:"
	prefixVotingPeriod = "voting_period:"

	prefixValidator          = "validator:"
	prefixValidatorUptime    = "validator_uptime:"
	prefixVoteParticipation  = "vote_participation:"
	prefixBlockProduction    = "block_production:"
	prefixSlash              = "slash:"
	prefixValidatorHeartbeat = "validator_heartbeat:"

	prefixNonce = "nonce:"

	keyChainHead     = "chain:head"
	keyChainState    = "chain_state"
	keyCurrentHeight = "current_height"

	prefixShard      = "shard:"
	prefixSeed       = "seed:"
	prefixSignature  = "signature:"
	prefixSnapshot   = "snapshot:"
	prefixAccess     = "access:"
	prefixDelegation = "delegation:"
	prefixDifficulty = "difficulty:"
)

// maxKeySentinel is the reserved upper bound used to close an
// open-ended prefix range scan, per spec §6's "\xFF sentinel" rule.
const maxKeySentinel = "\xff"

// numericWidth is the zero-padded width used for numeric key
// components (heights, timestamps) so that string ordering matches
// numeric ordering.
const numericWidth = 20

func padUint(v uint64) string {
	s := strconv.FormatUint(v, 10)
	for len(s) < numericWidth {
		s = "0" + s
	}
	return s
}

func blockHeightKey(height uint64) string {
	return prefixBlockHeight + padUint(height)
}

func blockHashKey(hash string) string {
	return prefixBlockHash + hash
}

func blockMinerKey(miner string, timestampMillis int64) string {
	return prefixBlockMiner + miner + ":" + padUint(uint64(timestampMillis))
}

func blockTimestampKey(timestampMillis int64) string {
	return prefixBlockTimestamp + padUint(uint64(timestampMillis))
}

func transactionKey(hash string) string {
	return prefixTransaction + hash
}

func txTypeKey(txType, hash string) string {
	return prefixTxType + txType + ":" + hash
}

func utxoKey(addr, txID string, outputIndex uint32) string {
	return prefixUTXO + addr + ":" + txID + ":" + strconv.FormatUint(uint64(outputIndex), 10)
}

func voteKey(periodID, voter string) string {
	return prefixVote + periodID + ":" + voter
}

func periodVoteKey(periodID, voter string) string {
	return prefixPeriodVote + periodID + ":" + voter
}

func votingPeriodKey(periodID string) string {
	return prefixVotingPeriod + periodID
}

func validatorKey(addr string) string {
	return prefixValidator + addr
}

func validatorUptimeKey(addr string) string {
	return prefixValidatorUptime + addr
}

func voteParticipationKey(addr string) string {
	return prefixVoteParticipation + addr
}

func blockProductionKey(addr string) string {
	return prefixBlockProduction + addr
}

func slashKey(addr string, timestampMillis int64) string {
	return prefixSlash + addr + ":" + padUint(uint64(timestampMillis))
}

func validatorHeartbeatKey(addr string, timestampMillis int64) string {
	return prefixValidatorHeartbeat + addr + ":" + padUint(uint64(timestampMillis))
}

func nonceKey(addr string) string {
	return prefixNonce + addr
}

func shardKey(shardID string) string {
	return prefixShard + shardID
}

func seedKey(addr string) string {
	return prefixSeed + addr
}

func signatureKey(addr, msg string) string {
	return prefixSignature + addr + ":" + msg
}

func snapshotKey(id string) string {
	return prefixSnapshot + id
}

func accessKey(id string) string {
	return prefixAccess + id
}

func delegationKey(addr string) string {
	return prefixDelegation + addr
}

func difficultyKey(hash string) string {
	return prefixDifficulty + hash
}

// prefixRangeEnd returns the exclusive upper bound for a lexicographic
// scan over every key beginning with prefix.
func prefixRangeEnd(prefix string) string {
	return prefix + maxKeySentinel
}
