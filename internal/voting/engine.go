// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"sync"
	"time"

	"github.com/decred/dcrd/lru"
	"github.com/decred/slog"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/collab"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Engine manages fixed-length voting periods, vote ingestion, fork
// arbitration and vote-set validation, per spec §4.1. Every external
// dependency is held by interface so the engine can be exercised in
// tests without a live node, mempool or storage backend, matching the
// teacher's own collaborator-injection convention.
type Engine struct {
	Params chaincfg.Params

	storage  Storage
	node     collab.Node
	sync     collab.Sync
	mempool  collab.Mempool
	verifier crypto.Verifier
	audit    audit.Logger

	// voteMu admits one vote at a time; periodMu transitions period
	// state. Acquired vote -> period when both are needed, per spec
	// §5's fixed lock order.
	voteMu   sync.Mutex
	periodMu sync.Mutex

	current *currentPeriod

	stability stabilityGate

	scheduler *scheduler

	metricsCache lru.Cache[string, cachedMetric]

	consecutivePeriodFailures int

	closeOnce sync.Once
	closed    chan struct{}
}

// currentPeriod mirrors the engine's in-memory view of the storage
// layer's single active-period record, read under periodMu.
type currentPeriod struct {
	periodID   string
	startBlock uint64
	endBlock   uint64
}

// cachedMetric is a TTL-wrapped float64, backing the engine's cached
// read (get_voting_metrics; HasParticipated is not cached) the way storage's own
// ttlCache backs its reads, at the scale this package actually needs
// (one bounded LRU rather than a bespoke cache type per metric).
type cachedMetric struct {
	value   float64
	expires time.Time
}

// New constructs an Engine. Collaborators are held by the capability
// interfaces of internal/collab per spec §9's design notes, breaking
// the cycle between the voting engine and the mempool/node packages.
func New(storage Storage, node collab.Node, sync collab.Sync, mempool collab.Mempool, verifier crypto.Verifier, auditLogger audit.Logger, params chaincfg.Params) *Engine {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	e := &Engine{
		Params:       params,
		storage:      storage,
		node:         node,
		sync:         sync,
		mempool:      mempool,
		verifier:     verifier,
		audit:        auditLogger,
		metricsCache: *lru.NewCache[string, cachedMetric](1000),
		closed:       make(chan struct{}),
	}
	e.stability = newStabilityGate(params)
	e.scheduler = newScheduler(storage, params)
	return e
}

func (e *Engine) logAudit(eventType, action string, severity audit.Severity, details map[string]interface{}) {
	e.audit.LogEvent(audit.Event{
		Type:     eventType,
		Action:   action,
		Severity: severity,
		Source:   "voting",
		Details:  details,
	})
}

// Dispose cancels timers, flushes caches and closes downstream
// collaborators, per spec §4.1.
func (e *Engine) Dispose() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.closed)
		e.scheduler.stop()
		e.metricsCache = *lru.NewCache[string, cachedMetric](1000)
		if e.node != nil {
			err = e.node.Close()
		}
	})
	return err
}
