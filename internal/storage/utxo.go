// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// PutUTXO creates a UTXO record, uniquely identified by
// (txId, outputIndex) per spec §3.
func (s *Store) PutUTXO(u *chaintypes.UTXO) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	key := utxoKey(string(u.Address), u.TxID.String(), u.OutputIndex)
	return s.rawPut(key, data)
}

// GetUTXO returns the UTXO identified by (address, txID, outputIndex),
// or ErrNotFound.
func (s *Store) GetUTXO(address, txID string, outputIndex uint32) (*chaintypes.UTXO, error) {
	data, err := s.rawGet(utxoKey(address, txID, outputIndex))
	if err != nil {
		return nil, err
	}
	var u chaintypes.UTXO
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// MarkSpent flips a UTXO's spent flag, the only mutation permitted
// against a UTXO record after creation, per spec §3. UTXOs are
// retained indefinitely for audit even once spent.
func (s *Store) MarkSpent(address, txID string, outputIndex uint32) error {
	u, err := s.GetUTXO(address, txID, outputIndex)
	if err != nil {
		return err
	}
	u.Spent = true
	return s.PutUTXO(u)
}

// UTXOsByAddress returns every UTXO (spent or unspent) owned by
// address.
func (s *Store) UTXOsByAddress(address string) ([]*chaintypes.UTXO, error) {
	var utxos []*chaintypes.UTXO
	err := s.rawIterate(prefixUTXO+address+":", func(_ string, value []byte) bool {
		var u chaintypes.UTXO
		if jsonErr := json.Unmarshal(value, &u); jsonErr == nil {
			utxos = append(utxos, &u)
		}
		return true
	})
	return utxos, err
}

// UnspentByAddress returns only the unspent UTXOs owned by address.
func (s *Store) UnspentByAddress(address string) ([]*chaintypes.UTXO, error) {
	all, err := s.UTXOsByAddress(address)
	if err != nil {
		return nil, err
	}
	unspent := make([]*chaintypes.UTXO, 0, len(all))
	for _, u := range all {
		if !u.Spent {
			unspent = append(unspent, u)
		}
	}
	return unspent, nil
}
