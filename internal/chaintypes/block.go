// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaintypes

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// BlockHeader carries every field the block validator inspects before
// touching the transaction list. Field order is load-bearing: it is
// the byte order ComputeHash marshals to JSON, and therefore part of
// the consensus hash preimage. Do not reorder these fields.
type BlockHeader struct {
	Hash                chainhash.Hash `json:"hash"`
	Version             uint32         `json:"version"`
	Height              uint64         `json:"height"`
	PreviousHash        chainhash.Hash `json:"previousHash"`
	MerkleRoot          chainhash.Hash `json:"merkleRoot"`
	ValidatorMerkleRoot chainhash.Hash `json:"validatorMerkleRoot"`
	VotesMerkleRoot     chainhash.Hash `json:"votesMerkleRoot"`
	Timestamp           time.Time      `json:"timestamp"`
	Difficulty          uint32         `json:"difficulty"`
	Nonce               uint64         `json:"nonce"`
}

// Block is the unit of chain progress defined by spec §3.
type Block struct {
	Header       BlockHeader    `json:"header"`
	Transactions []*Transaction `json:"transactions"`
	Votes        []*Vote        `json:"votes"`
	Validators   []*Validator   `json:"validators"`
}

// ComputeHash returns SHA3-256 of the header's canonical JSON encoding
// with the Hash field nulled to its zero value, per the frozen
// canonicalization decision: declaration-order fields, no hash field
// omission, compact (non-indented) encoding.
func (h *BlockHeader) ComputeHash() (chainhash.Hash, error) {
	clone := *h
	clone.Hash = chainhash.Hash{}
	data, err := json.Marshal(clone)
	if err != nil {
		return chainhash.Hash{}, err
	}
	return crypto.Hash256("block", data), nil
}

// MinerKey returns the "block:miner:<addr>:<ts>" secondary index key
// for the block's coinbase recipient, if any.
func (b *Block) MinerKey(miner Address) string {
	return "block:miner:" + string(miner) + ":" + formatUnixMilli(b.Header.Timestamp)
}

// TimestampKey returns the "block:timestamp:<ts>" secondary index key.
func (b *Block) TimestampKey() string {
	return "block:timestamp:" + formatUnixMilli(b.Header.Timestamp)
}

// HeightKey returns the "block:height:<H>" primary index key.
func (b *Block) HeightKey() string {
	return formatHeightKey(b.Header.Height)
}

// HashKey returns the "block:hash:<X>" primary index key.
func (b *Block) HashKey() string {
	return "block:hash:" + b.Header.Hash.String()
}

// numericDigits zero-pads a non-negative base-10 string to the width
// of math.MaxUint64 so that lexicographic key ordering matches numeric
// ordering, a requirement of the storage layer's prefix-range scans.
const numericDigits = 20

func formatUnixMilli(t time.Time) string {
	s := strconv.FormatInt(t.UTC().UnixMilli(), 10)
	for len(s) < numericDigits {
		s = "0" + s
	}
	return s
}

func formatHeightKey(height uint64) string {
	s := strconv.FormatUint(height, 10)
	for len(s) < numericDigits {
		s = "0" + s
	}
	return "block:height:" + s
}
