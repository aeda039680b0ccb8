// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// UTXOSource is the subset of storage behavior the transaction rule
// depends on. Held by interface, not by a concrete import of the
// storage package, per spec §6's external-collaborator contract.
type UTXOSource interface {
	GetUTXO(address, txID string, outputIndex uint32) (*chaintypes.UTXO, error)
}

// checkTransactions implements spec §4.2 rule 9: transactions are
// checked in batches of params.TransactionBatchSize; the first batch
// may contain exactly one coinbase transaction, every other batch
// none; non-coinbase transactions must carry a verifying signature and
// every input must reference an unspent UTXO whose amount matches the
// input's declared amount.
func checkTransactions(txs []*chaintypes.Transaction, height uint64, utxos UTXOSource, verifier crypto.Verifier, params chaincfg.Params) error {
	if len(txs) == 0 {
		return ruleErr(EmptyTransactions, "block has no transactions")
	}
	if len(txs) > params.MaxTransactionsPerBlock {
		return ruleErr(ExcessTransactions, "got %d, want at most %d", len(txs), params.MaxTransactionsPerBlock)
	}

	coinbaseSeen := false
	for start := 0; start < len(txs); start += params.TransactionBatchSize {
		end := start + params.TransactionBatchSize
		if end > len(txs) {
			end = len(txs)
		}
		batch := txs[start:end]
		if len(batch) == 0 {
			return ruleErr(EmptyBatch, "batch starting at %d is empty", start)
		}
		isFirstBatch := start == 0

		for _, tx := range batch {
			if tx.IsCoinbase() {
				if !isFirstBatch {
					return ruleErr(InvalidCoinbase, "coinbase transaction %s found outside the first batch", tx.Hash)
				}
				if coinbaseSeen {
					return ruleErr(InvalidCoinbase, "more than one coinbase transaction in block")
				}
				coinbaseSeen = true
				if err := checkCoinbase(tx, height, params); err != nil {
					return err
				}
				continue
			}
			if err := checkNonCoinbase(tx, utxos, verifier); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkCoinbase validates the single permitted reward-issuing
// transaction: zero inputs, exactly one output, and an output amount
// not exceeding the current block reward.
func checkCoinbase(tx *chaintypes.Transaction, height uint64, params chaincfg.Params) error {
	if len(tx.Inputs) != 0 {
		return ruleErr(InvalidCoinbase, "coinbase %s has %d inputs, want 0", tx.Hash, len(tx.Inputs))
	}
	if len(tx.Outputs) != 1 {
		return ruleErr(InvalidCoinbase, "coinbase %s has %d outputs, want 1", tx.Hash, len(tx.Outputs))
	}
	reward := BlockReward(height, params)
	if tx.Outputs[0].Amount.Cmp(reward) > 0 {
		return ruleErr(ExcessReward, "coinbase %s pays %s, exceeds reward %s at height %d",
			tx.Hash, tx.Outputs[0].Amount, reward, height)
	}
	return nil
}

// checkNonCoinbase validates an ordinary value-transfer transaction:
// its signature verifies, every input references an unspent UTXO
// matching the input's declared amount, and total input value equals
// total output value plus the declared fee.
func checkNonCoinbase(tx *chaintypes.Transaction, utxos UTXOSource, verifier crypto.Verifier) error {
	ok, err := tx.VerifySignature(verifier)
	if err != nil {
		return ruleErr(InvalidTxSignature, "transaction %s: %v", tx.Hash, err)
	}
	if !ok {
		return ruleErr(InvalidTxSignature, "transaction %s: signature does not verify", tx.Hash)
	}

	for _, in := range tx.Inputs {
		utxo, err := utxos.GetUTXO(string(in.Address), in.TxID.String(), in.OutputIndex)
		if err != nil {
			return ruleErr(InvalidUtxoRef, "transaction %s: input %s:%d: %v", tx.Hash, in.TxID, in.OutputIndex, err)
		}
		if utxo.Spent {
			return ruleErr(InvalidUtxoRef, "transaction %s: input %s:%d already spent", tx.Hash, in.TxID, in.OutputIndex)
		}
		if utxo.Amount.Cmp(in.Amount) != 0 {
			return ruleErr(AmountMismatch, "transaction %s: input %s:%d declares %s, UTXO holds %s",
				tx.Hash, in.TxID, in.OutputIndex, in.Amount, utxo.Amount)
		}
	}

	owed := tx.OutputSum().Add(tx.Fee)
	if tx.InputSum().Cmp(owed) != 0 {
		return ruleErr(AmountMismatch, "transaction %s: inputs sum to %s, outputs+fee sum to %s", tx.Hash, tx.InputSum(), owed)
	}
	return nil
}
