// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"encoding/json"

	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// checkSize implements spec §4.2 rule 2: the transaction count must
// not exceed params.MaxTransactionsPerBlock, and the block's
// serialized byte size must not exceed the dynamic limit
// ComputeBlockSizeLimit derives from the previous block's size and the
// supplied network factors.
func checkSize(block *chaintypes.Block, prevSizeBytes uint64, factors SizeFactors, params chaincfg.Params) error {
	if len(block.Transactions) > params.MaxTransactionsPerBlock {
		return ruleErr(ExcessTransactions, "got %d, want at most %d", len(block.Transactions), params.MaxTransactionsPerBlock)
	}

	data, err := json.Marshal(block)
	if err != nil {
		return ruleErr(InvalidStructure, "%v", err)
	}

	limit := ComputeBlockSizeLimit(prevSizeBytes, factors, params)
	if uint64(len(data)) > limit {
		return ruleErr(ExcessSize, "block is %d bytes, exceeds dynamic limit %d", len(data), limit)
	}
	return nil
}
