// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// PutBlock persists a block under both its height and hash indices
// within the active transaction (or directly, if none is open),
// matching spec §3's "two indices" lifecycle rule.
func (s *Store) PutBlock(block *chaintypes.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	heightKey := blockHeightKey(block.Header.Height)
	hashKey := blockHashKey(block.Header.Hash.String())

	if err := s.putCached(s.caches.blockCache, heightKey, data, PriorityDefault); err != nil {
		s.recordFailure("put_block_height", err)
		return err
	}
	if err := s.putCached(s.caches.blockCache, hashKey, data, PriorityDefault); err != nil {
		s.recordFailure("put_block_hash", err)
		return err
	}

	tsKey := blockTimestampKey(block.Header.Timestamp.UTC().UnixMilli())
	if err := s.rawPut(tsKey, []byte(block.Header.Hash.String())); err != nil {
		s.recordFailure("put_block_timestamp_index", err)
		return err
	}

	return nil
}

// GetBlockByHeight returns the block stored at height, or ErrNotFound.
func (s *Store) GetBlockByHeight(height uint64) (*chaintypes.Block, error) {
	data, err := s.getCached(s.caches.blockCache, blockHeightKey(height), PriorityDefault)
	if err != nil {
		return nil, err
	}
	return decodeBlock(data)
}

// GetBlockByHash returns the block with the given hash, or
// ErrNotFound.
func (s *Store) GetBlockByHash(hash string) (*chaintypes.Block, error) {
	data, err := s.getCached(s.caches.blockCache, blockHashKey(hash), PriorityDefault)
	if err != nil {
		return nil, err
	}
	return decodeBlock(data)
}

// PutBlockMinerIndex records the secondary "block:miner:<addr>:<ts>"
// index for a coinbase recipient.
func (s *Store) PutBlockMinerIndex(miner string, block *chaintypes.Block) error {
	key := blockMinerKey(miner, block.Header.Timestamp.UTC().UnixMilli())
	return s.rawPut(key, []byte(block.Header.Hash.String()))
}

// BlocksByMinerRange scans the miner index for a given address.
func (s *Store) BlocksByMinerRange(miner string) ([]string, error) {
	var hashes []string
	err := s.rawIterate(prefixBlockMiner+miner+":", func(_ string, value []byte) bool {
		hashes = append(hashes, string(value))
		return true
	})
	return hashes, err
}

func decodeBlock(data []byte) (*chaintypes.Block, error) {
	var block chaintypes.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

func (s *Store) recordFailure(action string, err error) {
	s.logAudit("storage", action, audit.SeverityCritical, map[string]interface{}{"error": err.Error()})
}
