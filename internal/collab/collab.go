// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package collab defines the capability interfaces of spec §6 through
// which the block validator and direct voting engine reach the
// mempool, node and sync layers that this core treats as external
// collaborators. Grounded on the teacher's internal/netsync
// PeerNotifier pattern: hold references typed by interface, never by
// concrete package, to break the cycle spec §9's design notes call out
// between the voting engine and the mempool/node.
package collab

import "github.com/h3tag-network/h3tag-node/internal/chaintypes"

// Mempool is the subset of mempool behavior the block validator and
// direct voting engine depend on.
type Mempool interface {
	// ExpectedValidators returns the validator set a block at the
	// current tip is expected to have signed off on.
	ExpectedValidators() ([]*chaintypes.Validator, error)

	// HandleValidationFailure reports a validator that failed to
	// participate as expected, for downstream reputation handling.
	HandleValidationFailure(reason string, validator *chaintypes.Validator)

	// Size returns the current mempool transaction count.
	Size() uint32
}

// Node is the subset of node behavior the direct voting engine's
// network-stability gate and fork-arbitration logic depend on.
type Node interface {
	// PeerCount returns the number of currently connected peers.
	PeerCount() uint32

	// ActiveValidators returns the validator set the node currently
	// considers active.
	ActiveValidators() ([]*chaintypes.Validator, error)

	// RequestForkVote asks validator, over whatever peer transport the
	// node owns, to cast a chain-selection ballot between oldChainID
	// and newChainID at forkHeight, to be recorded under periodID. The
	// returned vote must already carry PeriodID and Voter so its
	// signature covers the fields it will be stored and verified
	// under; the caller rejects a vote that doesn't. A validator that
	// declines or is unreachable returns (nil, nil) — an abstention,
	// not an error; a non-nil error indicates the node collaborator
	// itself failed. This is the capability-interface seam spec §9's
	// design notes call for in place of implementing the
	// peer-to-peer gossip protocol itself, which is out of scope per
	// spec §1.
	RequestForkVote(validator *chaintypes.Validator, periodID, oldChainID, newChainID string, forkHeight uint64) (*chaintypes.Vote, error)

	// Close releases any resources held by the node collaborator.
	Close() error
}

// SyncState mirrors the sync layer's state machine as observed by the
// network-stability gate.
type SyncState string

const (
	SyncStateSyncing SyncState = "syncing"
	SyncStateSynced  SyncState = "synced"
)

// Sync is the subset of sync-layer behavior the network-stability gate
// depends on.
type Sync interface {
	State() SyncState
}
