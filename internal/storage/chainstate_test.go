// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

func TestGetCurrentHeightDefaultsToZero(t *testing.T) {
	s := newTestStore(t)
	height, err := s.GetCurrentHeight()
	if err != nil {
		t.Fatalf("GetCurrentHeight failed: %v", err)
	}
	if height != 0 {
		t.Fatalf("GetCurrentHeight = %d, want 0 before any chain state is written", height)
	}
}

func TestPutChainStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	state := &chaintypes.ChainState{
		Height:        123,
		LastBlockHash: chainhash.Hash{0x01},
		Timestamp:     time.Unix(1_700_000_000, 0).UTC(),
	}
	if err := s.PutChainState(state); err != nil {
		t.Fatalf("PutChainState failed: %v", err)
	}

	got, err := s.GetChainState()
	if err != nil {
		t.Fatalf("GetChainState failed: %v", err)
	}
	if got.Height != 123 {
		t.Fatalf("GetChainState height = %d, want 123", got.Height)
	}

	height, err := s.GetCurrentHeight()
	if err != nil {
		t.Fatalf("GetCurrentHeight failed: %v", err)
	}
	if height != 123 {
		t.Fatalf("GetCurrentHeight = %d, want 123", height)
	}
}
