// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle implements the content-addressed integrity primitive
// of spec §4.4, shared by vote aggregation, validator-set commitments
// and shard integrity checks.
package merkle

import (
	"errors"
	"sync"

	"github.com/decred/dcrd/lru"
	"github.com/decred/slog"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// MaxCacheSize bounds the pair-hash cache per spec §4.4.
const MaxCacheSize = 10000

// ErrInvalidInput is returned by CreateRoot when data is empty or
// contains an empty element.
var ErrInvalidInput = errors.New("merkle: input must be a non-empty sequence of non-empty strings")

// ErrIndexOutOfRange is returned by GenerateProof for an out-of-bounds
// leaf index.
var ErrIndexOutOfRange = errors.New("merkle: index out of range")

// Proof is the inclusion proof produced by GenerateProof and consumed
// by VerifyProof.
type Proof struct {
	Index    int
	Hash     chainhash.Hash
	Siblings []chainhash.Hash
}

// Tree is the stateful merkle-tree primitive of spec §4.4. A Tree is
// safe for concurrent read access but ClearState and the build methods
// must not race with reads; callers that share a Tree across
// goroutines synchronize externally (typically via the storage layer's
// shard mutex, per spec §5).
type Tree struct {
	mu     sync.RWMutex
	leaves []chainhash.Hash
	layers [][]chainhash.Hash

	pairCache lru.Cache[string, chainhash.Hash]
	leafCache lru.Cache[string, chainhash.Hash]
}

// New returns an empty Tree with its hash caches initialized.
func New() *Tree {
	return &Tree{
		pairCache: *lru.NewCache[string, chainhash.Hash](MaxCacheSize),
		leafCache: *lru.NewCache[string, chainhash.Hash](MaxCacheSize),
	}
}

// leafHash returns H(item), consulting and populating the leaf cache.
func (t *Tree) leafHash(item string) chainhash.Hash {
	if h, ok := t.leafCache.Get(item); ok {
		return h
	}
	h := crypto.Hash256("merkle-leaf", []byte(item))
	t.leafCache.Add(item, h)
	return h
}

// pairHash returns H(left || right), consulting and populating the
// pair cache. The cache key embeds both operands so eviction under
// pressure can never return a stale value for a different pair.
func (t *Tree) pairHash(left, right chainhash.Hash) chainhash.Hash {
	key := left.String() + ":" + right.String()
	if h, ok := t.pairCache.Get(key); ok {
		return h
	}
	buf := make([]byte, 0, chainhash.HashSize*2)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	h := crypto.Hash256("merkle-node", buf)
	t.pairCache.Add(key, h)
	return h
}

// buildLayers constructs every layer from leaves up to (and including)
// the root, duplicating a lone trailing node at each odd-length layer.
func (t *Tree) buildLayers(leaves []chainhash.Hash) [][]chainhash.Hash {
	layers := [][]chainhash.Hash{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([]chainhash.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			left := current[i]
			right := left
			if i+1 < len(current) {
				right = current[i+1]
			}
			next = append(next, t.pairHash(left, right))
		}
		layers = append(layers, next)
		current = next
	}
	return layers
}

// CreateRoot builds the tree over data and returns its root hash.
func (t *Tree) CreateRoot(data []string) (chainhash.Hash, error) {
	if len(data) == 0 {
		return chainhash.Hash{}, ErrInvalidInput
	}
	leaves := make([]chainhash.Hash, len(data))
	for i, item := range data {
		if item == "" {
			return chainhash.Hash{}, ErrInvalidInput
		}
		leaves[i] = t.leafHash(item)
	}

	t.mu.Lock()
	t.leaves = leaves
	t.layers = t.buildLayers(leaves)
	root := t.layers[len(t.layers)-1][0]
	t.mu.Unlock()

	log.Debugf("merkle: built root %s over %d leaves", root, len(data))
	return root, nil
}

// CreateRootOf is a convenience wrapper that builds a throwaway tree,
// useful for one-off root computations (e.g. the block validator
// recomputing a transaction merkle root) that don't need proofs.
func CreateRootOf(data []string) (chainhash.Hash, error) {
	return New().CreateRoot(data)
}

// GenerateProof returns an inclusion proof for the leaf at index, which
// must refer to the data most recently passed to CreateRoot.
func (t *Tree) GenerateProof(index int) (*Proof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if index < 0 || index >= len(t.leaves) {
		return nil, ErrIndexOutOfRange
	}

	siblings := make([]chainhash.Hash, 0, len(t.layers)-1)
	cur := index
	for _, layer := range t.layers[:len(t.layers)-1] {
		siblingIndex := cur ^ 1
		if siblingIndex < len(layer) {
			siblings = append(siblings, layer[siblingIndex])
		} else {
			// Lone trailing node: duplicate itself, mirroring the
			// duplication rule used when the layer was built.
			siblings = append(siblings, layer[cur])
		}
		cur /= 2
	}

	return &Proof{
		Index:    index,
		Hash:     t.leaves[index],
		Siblings: siblings,
	}, nil
}

// VerifyProof re-derives the leaf hash from data and climbs proof's
// sibling chain, comparing the final hash against root. Bit i of
// proof.Index selects whether the node at layer i composes as
// (node, sibling) or (sibling, node).
func VerifyProof(proof *Proof, data string, root chainhash.Hash) bool {
	if proof == nil {
		return false
	}
	t := New()
	leaf := t.leafHash(data)
	if leaf != proof.Hash {
		return false
	}
	if len(proof.Siblings) == 0 {
		return proof.Hash == root
	}

	current := leaf
	index := proof.Index
	for _, sibling := range proof.Siblings {
		if index&1 == 0 {
			current = t.pairHash(current, sibling)
		} else {
			current = t.pairHash(sibling, current)
		}
		index >>= 1
	}
	return current == root
}

// ClearState resets leaves, layers and caches, releasing all memory
// held by the tree.
func (t *Tree) ClearState() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaves = nil
	t.layers = nil
	t.pairCache = *lru.NewCache[string, chainhash.Hash](MaxCacheSize)
	t.leafCache = *lru.NewCache[string, chainhash.Hash](MaxCacheSize)
}
