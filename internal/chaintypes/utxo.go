// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"fmt"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chainhash"
)

// UTXO is an unspent transaction output, the unit the block validator
// checks input amounts against per spec §3.
type UTXO struct {
	TxID          chainhash.Hash `json:"txId"`
	OutputIndex   uint32         `json:"outputIndex"`
	Amount        amount.Amount  `json:"amount"`
	Address       Address        `json:"address"`
	Spent         bool           `json:"spent"`
	BlockHeight   uint64         `json:"blockHeight"`
	Script        string         `json:"script,omitempty"`
}

// OutpointKey identifies a UTXO by its (txId, outputIndex) pair, the
// storage layer's uniqueness invariant.
func (u *UTXO) OutpointKey() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.OutputIndex)
}

// Confirmations derives the confirmation count of a UTXO mined at
// BlockHeight, given the current chain tip height.
func (u *UTXO) Confirmations(currentHeight uint64) uint64 {
	if currentHeight < u.BlockHeight {
		return 0
	}
	return currentHeight - u.BlockHeight + 1
}
