// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import "github.com/h3tag-network/h3tag-node/internal/chaintypes"

// checkStructure implements spec §4.2 rule 1: every header field the
// rest of the pipeline depends on must be present, and the block must
// declare at least one transaction.
func checkStructure(block *chaintypes.Block) error {
	h := block.Header
	switch {
	case h.Hash.IsZero():
		return ruleErr(MissingField, "header.hash")
	case h.MerkleRoot.IsZero():
		return ruleErr(MissingField, "header.merkleRoot")
	case h.Timestamp.IsZero():
		return ruleErr(MissingField, "header.timestamp")
	case h.Difficulty == 0:
		return ruleErr(MissingField, "header.difficulty")
	}
	if len(block.Transactions) == 0 {
		return ruleErr(EmptyTransactions, "block declares no transactions")
	}
	return nil
}
