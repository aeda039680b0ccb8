// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/merkle"
)

// checkMerkleRoot implements spec §4.2 rule 8: recompute the merkle
// root over every transaction's hash and compare it against
// header.merkleRoot. Odd levels duplicate the last node, the generic
// behavior merkle.Tree already implements.
func checkMerkleRoot(block *chaintypes.Block) error {
	if len(block.Transactions) == 0 {
		return ruleErr(EmptyTransactions, "block has no transactions")
	}

	leaves := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		h, err := tx.ComputeHash()
		if err != nil {
			return ruleErr(InvalidMerkleRoot, "transaction %d: %v", i, err)
		}
		leaves[i] = h.String()
	}

	root, err := merkle.CreateRootOf(leaves)
	if err != nil {
		return ruleErr(InvalidMerkleRoot, "%v", err)
	}
	if root != block.Header.MerkleRoot {
		return ruleErr(InvalidMerkleRoot, "recomputed root %s does not match header %s", root, block.Header.MerkleRoot)
	}
	return nil
}
