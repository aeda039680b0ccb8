// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"testing"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// testParams returns the consensus parameters the package's tests
// validate against, MainNet's, unless a test needs SimNet's relaxed
// thresholds specifically.
func testParams() chaincfg.Params {
	return chaincfg.MainNetParams
}

func minimalBlock() *chaintypes.Block {
	b := &chaintypes.Block{
		Header: chaintypes.BlockHeader{
			Version:    1,
			Height:     1,
			Timestamp:  time.Now(),
			Difficulty: 1,
		},
		Transactions: []*chaintypes.Transaction{{}},
	}
	b.Header.MerkleRoot = chainhash.Hash{1}
	hash, _ := b.Header.ComputeHash()
	b.Header.Hash = hash
	return b
}

func TestCheckStructureAcceptsCompleteHeader(t *testing.T) {
	if err := checkStructure(minimalBlock()); err != nil {
		t.Fatalf("checkStructure rejected a complete header: %v", err)
	}
}

func TestCheckStructureRejectsMissingHash(t *testing.T) {
	b := minimalBlock()
	b.Header.Hash = chainhash.Hash{}
	assertRuleCode(t, checkStructure(b), MissingField)
}

func TestCheckStructureRejectsMissingMerkleRoot(t *testing.T) {
	b := minimalBlock()
	b.Header.MerkleRoot = chainhash.Hash{}
	assertRuleCode(t, checkStructure(b), MissingField)
}

func TestCheckStructureRejectsMissingDifficulty(t *testing.T) {
	b := minimalBlock()
	b.Header.Difficulty = 0
	assertRuleCode(t, checkStructure(b), MissingField)
}

func TestCheckStructureRejectsEmptyTransactions(t *testing.T) {
	b := minimalBlock()
	b.Transactions = nil
	assertRuleCode(t, checkStructure(b), EmptyTransactions)
}
