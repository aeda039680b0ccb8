// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
)

// ChainState is the single process-wide record of the chain tip,
// rewritten on every block commit per spec §3.
type ChainState struct {
	Height        uint64         `json:"height"`
	LastBlockHash chainhash.Hash `json:"lastBlockHash"`
	Timestamp     time.Time      `json:"timestamp"`
}

// ChainStateStorageKey is the fixed "chain_state" singleton key this record is
// persisted under.
const ChainStateStorageKey = "chain_state"
