// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"encoding/json"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
	"github.com/h3tag-network/h3tag-node/internal/txtype"
)

// TxInput references a previously created, unspent output.
type TxInput struct {
	TxID        chainhash.Hash `json:"txId"`
	OutputIndex uint32         `json:"outputIndex"`
	Amount      amount.Amount  `json:"amount"`
	Address     Address        `json:"address"`
}

// TxOutput creates new, spendable value.
type TxOutput struct {
	Address Address       `json:"address"`
	Amount  amount.Amount `json:"amount"`
	Script  string        `json:"script,omitempty"`
}

// TransactionStatus tracks a transaction's admission lifecycle.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusRejected  TransactionStatus = "rejected"
)

// Transaction is the unit of value transfer and governance annotation
// defined by spec §3.
type Transaction struct {
	Hash      chainhash.Hash    `json:"hash"`
	Type      txtype.Type       `json:"type"`
	Version   uint32            `json:"version"`
	Inputs    []TxInput         `json:"inputs"`
	Outputs   []TxOutput        `json:"outputs"`
	Fee       amount.Amount     `json:"fee"`
	Timestamp time.Time         `json:"timestamp"`
	Signature []byte            `json:"signature,omitempty"`
	PublicKey []byte            `json:"publicKey,omitempty"`
	Status    TransactionStatus `json:"status"`
}

// canonicalTxPayload is the subset of fields spec §4.2 rule 8 designates
// as the transaction hash preimage: inputs, outputs and timestamp.
// Declaration order and a nulled hash-equivalent (the field's absence)
// fix the byte encoding so every caller derives an identical digest.
type canonicalTxPayload struct {
	Inputs    []TxInput  `json:"inputs"`
	Outputs   []TxOutput `json:"outputs"`
	Timestamp int64      `json:"timestamp"`
}

// CanonicalBytes returns the deterministic encoding of t's hash
// preimage, used both to compute ComputeHash and to produce and verify
// t's signature.
func (t *Transaction) CanonicalBytes() ([]byte, error) {
	payload := canonicalTxPayload{
		Inputs:    t.Inputs,
		Outputs:   t.Outputs,
		Timestamp: t.Timestamp.UTC().UnixMilli(),
	}
	return json.Marshal(payload)
}

// ComputeHash returns SHA3-256 over the transaction's canonical
// payload, matching the preimage spec §4.2 rule 8 defines for
// recomputing a block's merkle root.
func (t *Transaction) ComputeHash() (chainhash.Hash, error) {
	data, err := t.CanonicalBytes()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return crypto.Hash256("tx", data), nil
}

// VerifySignature checks t.Signature against t.PublicKey over t's
// canonical bytes using verifier. Coinbase transactions carry no
// signature and are not checked here; the block validator's coinbase
// rule covers them separately.
func (t *Transaction) VerifySignature(verifier crypto.Verifier) (bool, error) {
	data, err := t.CanonicalBytes()
	if err != nil {
		return false, err
	}
	return verifier.Verify(data, t.Signature, t.PublicKey), nil
}

// IsCoinbase reports whether t is the block's sole reward-issuing
// transaction.
func (t *Transaction) IsCoinbase() bool {
	return t.Type.IsCoinbase()
}

// InputSum returns the sum of every input's declared amount.
func (t *Transaction) InputSum() amount.Amount {
	sum := amount.Zero()
	for _, in := range t.Inputs {
		sum = sum.Add(in.Amount)
	}
	return sum
}

// OutputSum returns the sum of every output's amount.
func (t *Transaction) OutputSum() amount.Amount {
	sum := amount.Zero()
	for _, out := range t.Outputs {
		sum = sum.Add(out.Amount)
	}
	return sum
}
