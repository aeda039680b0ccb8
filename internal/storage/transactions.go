// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// PutTransaction persists a transaction by hash and indexes it by
// type, per spec §3.
func (s *Store) PutTransaction(tx *chaintypes.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	key := transactionKey(tx.Hash.String())
	if err := s.putCached(s.caches.transactionCache, key, data, PriorityDefault); err != nil {
		return err
	}
	return s.rawPut(txTypeKey(tx.Type.String(), tx.Hash.String()), []byte(tx.Hash.String()))
}

// GetTransaction returns the transaction with the given hash, or
// ErrNotFound.
func (s *Store) GetTransaction(hash string) (*chaintypes.Transaction, error) {
	data, err := s.getCached(s.caches.transactionCache, transactionKey(hash), PriorityDefault)
	if err != nil {
		return nil, err
	}
	var tx chaintypes.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteTransaction removes a transaction and its type index entry,
// invalidating the transaction cache per spec §4.3's caching policy.
func (s *Store) DeleteTransaction(tx *chaintypes.Transaction) error {
	key := transactionKey(tx.Hash.String())
	if err := s.delCached(s.caches.transactionCache, key); err != nil {
		return err
	}
	return s.rawDel(txTypeKey(tx.Type.String(), tx.Hash.String()))
}

// TransactionsByType returns every transaction hash indexed under the
// given type.
func (s *Store) TransactionsByType(txType string) ([]string, error) {
	var hashes []string
	err := s.rawIterate(prefixTxType+txType+":", func(_ string, value []byte) bool {
		hashes = append(hashes, string(value))
		return true
	})
	return hashes, err
}
