// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/collab"
	"github.com/h3tag-network/h3tag-node/internal/collab/collabtest"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
	"github.com/h3tag-network/h3tag-node/internal/storage"
)

// newTestStore opens a throwaway goleveldb-backed store, satisfying
// the voting.Storage interface the same way the production engine is
// wired, rather than a hand-rolled in-memory fake.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")
	s, err := storage.Open(dir, storage.Options{})
	if err != nil {
		t.Fatalf("storage.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// testParams mirrors chaincfg.SimNetParams, with a short voting period
// and a MinPeerCount of 1, so the fake node's peer count alone decides
// whether the network is stable.
func testParams() chaincfg.Params {
	p := chaincfg.SimNetParams
	p.VotingPeriodBlocks = 10
	p.MinPeerCount = 1
	return p
}

type stableFakes struct {
	Node    *collabtest.FakeNode
	Sync    *collabtest.FakeSync
	Mempool *collabtest.FakeMempool
}

func newStableFakes() *stableFakes {
	return &stableFakes{
		Node:    &collabtest.FakeNode{Peers: 5},
		Sync:    &collabtest.FakeSync{StateValue: collab.SyncStateSynced},
		Mempool: &collabtest.FakeMempool{},
	}
}

func newTestEngine(t *testing.T) (*Engine, *storage.Store, *stableFakes) {
	t.Helper()
	s := newTestStore(t)
	fakes := newStableFakes()
	e := New(s, fakes.Node, fakes.Sync, fakes.Mempool, crypto.Secp256k1Verifier{}, nil, testParams())
	return e, s, fakes
}

// signedChainVote builds a self-consistent, validly signed
// chain-selection vote for voter in period, mirroring
// blockvalidator's own signedVote test helper.
func signedChainVote(t *testing.T, signer *crypto.Secp256k1Signer, periodID, voter string, targetChainID string, amountUnits uint64) *chaintypes.Vote {
	t.Helper()
	v := &chaintypes.Vote{
		VoteID:   periodID + "-" + voter,
		PeriodID: periodID,
		Voter:    chaintypes.Address(voter),
		Approve:  true,
		Timestamp: time.Now().UTC(),
		PublicKey: signer.PublicKey(),
		ChainVoteData: &chaintypes.ChainVoteData{
			TargetChainID: targetChainID,
			Amount:        amount.FromUint64(amountUnits),
		},
	}
	data, err := v.CanonicalBytes()
	if err != nil {
		t.Fatalf("CanonicalBytes failed: %v", err)
	}
	sig, err := signer.Sign(data)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	v.Signature = sig
	return v
}
