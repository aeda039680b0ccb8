// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package collabtest provides in-memory fakes for the interfaces in
// internal/collab, shared by the block validator and direct voting
// engine test suites.
package collabtest

import (
	"sync"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/collab"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// FakeMempool is an in-memory Mempool used by block validator and
// voting engine tests; it records HandleValidationFailure calls for
// assertions.
type FakeMempool struct {
	mu         sync.Mutex
	Validators []*chaintypes.Validator
	SizeValue  uint32
	Failures   []FakeFailure
}

// FakeFailure records one HandleValidationFailure invocation.
type FakeFailure struct {
	Reason    string
	Validator *chaintypes.Validator
}

func (m *FakeMempool) ExpectedValidators() ([]*chaintypes.Validator, error) {
	return m.Validators, nil
}

func (m *FakeMempool) HandleValidationFailure(reason string, validator *chaintypes.Validator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, FakeFailure{Reason: reason, Validator: validator})
}

func (m *FakeMempool) Size() uint32 { return m.SizeValue }

// ForkVoteIntent describes how a simulated validator responds to a
// RequestForkVote call: which chain it backs, how much voting power
// its ballot should carry, and the key it signs with. Signing happens
// inside RequestForkVote once the real periodID is known, the way a
// remote validator would sign on receipt of the solicitation rather
// than in advance.
type ForkVoteIntent struct {
	Signer        *crypto.Secp256k1Signer
	TargetChainID string
	Amount        uint64
}

// FakeNode is an in-memory Node used by direct voting engine tests.
// ForkVotes maps a validator address to the intent it should respond
// with from RequestForkVote; an address absent from the map abstains.
type FakeNode struct {
	mu         sync.Mutex
	Peers      uint32
	Validators []*chaintypes.Validator
	ForkVotes  map[string]*ForkVoteIntent
	ForkErr    error
	Closed     bool
}

func (n *FakeNode) PeerCount() uint32 { return n.Peers }

func (n *FakeNode) ActiveValidators() ([]*chaintypes.Validator, error) {
	return n.Validators, nil
}

func (n *FakeNode) RequestForkVote(validator *chaintypes.Validator, periodID, oldChainID, newChainID string, forkHeight uint64) (*chaintypes.Vote, error) {
	n.mu.Lock()
	intent, ok := n.ForkVotes[string(validator.Address)]
	forkErr := n.ForkErr
	n.mu.Unlock()
	if forkErr != nil {
		return nil, forkErr
	}
	if !ok {
		return nil, nil
	}

	vote := &chaintypes.Vote{
		VoteID:    periodID + "-" + string(validator.Address),
		PeriodID:  periodID,
		Voter:     validator.Address,
		Approve:   true,
		Timestamp: time.Now().UTC(),
		PublicKey: intent.Signer.PublicKey(),
		ChainVoteData: &chaintypes.ChainVoteData{
			TargetChainID: intent.TargetChainID,
			ForkHeight:    forkHeight,
		},
	}
	vote.ChainVoteData.Amount = amount.FromUint64(intent.Amount)

	data, err := vote.CanonicalBytes()
	if err != nil {
		return nil, err
	}
	sig, err := intent.Signer.Sign(data)
	if err != nil {
		return nil, err
	}
	vote.Signature = sig
	return vote, nil
}

func (n *FakeNode) Close() error {
	n.Closed = true
	return nil
}

// FakeSync is an in-memory Sync used by direct voting engine tests.
type FakeSync struct {
	StateValue collab.SyncState
}

func (s *FakeSync) State() collab.SyncState { return s.StateValue }
