// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"strconv"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// PutChainState rewrites the single process-wide chain tip record,
// per spec §3.
func (s *Store) PutChainState(state *chaintypes.ChainState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.rawPut(keyChainState, data); err != nil {
		return err
	}
	if err := s.rawPut(keyChainHead, []byte(state.LastBlockHash.String())); err != nil {
		return err
	}
	return s.rawPut(keyCurrentHeight, []byte(strconv.FormatUint(state.Height, 10)))
}

// GetChainState returns the current chain tip, or ErrNotFound if the
// chain has not produced a genesis block yet.
func (s *Store) GetChainState() (*chaintypes.ChainState, error) {
	data, err := s.rawGet(keyChainState)
	if err != nil {
		return nil, err
	}
	var state chaintypes.ChainState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetCurrentHeight returns the chain tip height, or 0 if unset.
func (s *Store) GetCurrentHeight() (uint64, error) {
	data, err := s.rawGet(keyCurrentHeight)
	if err != nil {
		if err == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseUint(string(data), 10, 64)
}
