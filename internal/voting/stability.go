// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"sync"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/collab"
)

// stabilityGate implements spec §4.1's network-stability precondition:
// stable iff peer_count >= MIN_PEER_COUNT and sync_state = Synced.
// Consecutive failures of that check increment a counter; once it
// reaches MaxConsecutiveFailures the gate reports unstable regardless
// of the live peer/sync readings until NetworkCooldown elapses.
type stabilityGate struct {
	mu sync.Mutex

	minPeers int
	cooldown time.Duration
	maxFails int

	consecutiveFailures int
	cooldownUntil       time.Time
}

func newStabilityGate(params chaincfg.Params) stabilityGate {
	return stabilityGate{
		minPeers: params.MinPeerCount,
		cooldown: params.NetworkCooldown,
		maxFails: params.MaxConsecutiveFailures,
	}
}

// check reports whether the network is currently stable, given live
// readings from the node and sync collaborators.
func (g *stabilityGate) check(node collab.Node, sync collab.Sync) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.cooldownUntil.IsZero() && time.Now().Before(g.cooldownUntil) {
		return false
	}

	live := node != nil && sync != nil &&
		int(node.PeerCount()) >= g.minPeers &&
		sync.State() == collab.SyncStateSynced

	if live {
		g.consecutiveFailures = 0
		g.cooldownUntil = time.Time{}
		return true
	}

	g.consecutiveFailures++
	if g.consecutiveFailures >= g.maxFails {
		g.cooldownUntil = time.Now().Add(g.cooldown)
	}
	return false
}

// Stable reports whether the network is currently stable enough to
// open a voting period or accept a fork-resolution result, per spec
// §4.1. This is the Engine-level entry point; it threads the engine's
// live node/sync collaborators into the gate.
func (e *Engine) Stable() bool {
	return e.stability.check(e.node, e.sync)
}
