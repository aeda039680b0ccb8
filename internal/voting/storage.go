// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import "github.com/h3tag-network/h3tag-node/internal/chaintypes"

// Storage is the subset of the persistence layer's behavior the
// direct voting engine depends on, held by interface rather than a
// concrete import of internal/storage, matching the
// blockvalidator.UTXOSource idiom of depending on the narrowest
// collaborator surface a component actually needs.
type Storage interface {
	// Period lifecycle.
	GetVotingPeriod(periodID string) (*chaintypes.VotingPeriod, error)
	PutVotingPeriod(period *chaintypes.VotingPeriod) error
	ActiveVotingPeriod() (*chaintypes.VotingPeriod, error)

	// Votes.
	PutVote(vote *chaintypes.Vote) error
	GetVote(periodID, voter string) (*chaintypes.Vote, error)
	VotesByPeriod(periodID string) ([]*chaintypes.Vote, error)
	HasVoted(periodID, voter string) (bool, error)

	// Chain position, used to recover the period due at initialize()
	// and to bound the current voting window.
	GetCurrentHeight() (uint64, error)
	GetBlockByHeight(height uint64) (*chaintypes.Block, error)

	// Transactional wrapper: vote persistence and its merkle index
	// update happen inside one storage transaction, all-or-nothing,
	// per spec §4.1's failure semantics.
	WithTransaction(fn func() error) error
}
