// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/h3tag-network/h3tag-node/internal/audit"
)

// transactionWatchdog is the idle duration after which an open
// transaction is automatically rolled back, per spec §4.3 and §5.
const transactionWatchdog = 30 * time.Second

// txOp is one staged mutation within an open transaction.
type txOp struct {
	key     string
	value   []byte
	deleted bool
}

// txState tracks the overlay of an in-flight transaction: staged
// operations applied atomically on commit, or discarded on rollback.
type txState struct {
	mu      sync.Mutex
	ops     []txOp
	index   map[string]int // key -> index into ops, last write wins
	touched map[string]struct{}

	watchdog *time.Timer
	done     int32 // atomically set once committed or rolled back
}

func newTxState() *txState {
	return &txState{
		index:   make(map[string]int),
		touched: make(map[string]struct{}),
	}
}

// stage records a pending write or delete and restarts the idle
// watchdog. It never rejects an operation; the batch size limit is
// checked by WithTransaction before commit.
func (t *txState) stage(key string, value []byte, deleted bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.watchdog != nil {
		t.watchdog.Reset(transactionWatchdog)
	}

	if idx, ok := t.index[key]; ok {
		t.ops[idx] = txOp{key: key, value: value, deleted: deleted}
		return nil
	}
	t.ops = append(t.ops, txOp{key: key, value: value, deleted: deleted})
	t.index[key] = len(t.ops) - 1
	t.touched[key] = struct{}{}
	return nil
}

// lookup returns the staged value for key, whether it was staged as a
// deletion, and whether key was touched at all by this transaction.
func (t *txState) lookup(key string) (value []byte, deleted bool, touched bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.index[key]
	if !ok {
		return nil, false, false
	}
	op := t.ops[idx]
	return op.value, op.deleted, true
}

func (t *txState) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

func (t *txState) touchedKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(t.touched))
	for k := range t.touched {
		keys = append(keys, k)
	}
	return keys
}

// activeTx returns the currently open transaction overlay, or nil.
func (s *Store) activeTx() *txState {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.tx
}

// BeginTransaction opens a new transaction. Only one transaction may
// be open at a time, process-wide; a second call fails fast with
// ErrTransactionInProgress rather than queuing, per spec §5.
func (s *Store) BeginTransaction() error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if s.tx != nil {
		return ErrTransactionInProgress
	}

	tx := newTxState()
	s.tx = tx
	tx.watchdog = time.AfterFunc(transactionWatchdog, func() {
		s.watchdogRollback(tx)
	})
	return nil
}

// watchdogRollback auto-rolls-back a transaction that has sat idle
// past the watchdog timeout, per spec §4.3 and §5.
func (s *Store) watchdogRollback(tx *txState) {
	s.txMu.Lock()
	if s.tx != tx {
		s.txMu.Unlock()
		return
	}
	s.txMu.Unlock()

	log.Warnf("storage: transaction watchdog firing after %s idle", transactionWatchdog)
	if err := s.RollbackTransaction(); err != nil {
		log.Errorf("storage: watchdog rollback failed: %v", err)
	}
	s.logAudit("storage", "transaction_watchdog_rollback", audit.SeverityWarning, nil)
}

// CommitTransaction atomically applies every staged operation via a
// single goleveldb batch write, invalidating the cache entries it
// touched. On failure the transaction is rolled back and
// ErrCommitFailed is returned.
func (s *Store) CommitTransaction() error {
	s.txMu.Lock()
	tx := s.tx
	if tx == nil {
		s.txMu.Unlock()
		return ErrNoTransaction
	}
	if !atomic.CompareAndSwapInt32(&tx.done, 0, 1) {
		s.txMu.Unlock()
		return ErrNoTransaction
	}
	s.tx = nil
	s.txMu.Unlock()

	tx.watchdog.Stop()

	tx.mu.Lock()
	ops := append([]txOp(nil), tx.ops...)
	tx.mu.Unlock()

	batch := new(leveldb.Batch)
	for _, op := range ops {
		if op.deleted {
			batch.Delete([]byte(op.key))
		} else {
			batch.Put([]byte(op.key), op.value)
		}
	}

	if err := s.db.Write(batch, nil); err != nil {
		s.invalidateTouched(tx)
		s.logAudit("storage", "commit_failed", audit.SeverityCritical, map[string]interface{}{"error": err.Error()})
		return ErrCommitFailed
	}

	s.invalidateTouched(tx)
	return nil
}

// RollbackTransaction discards every staged operation in the current
// transaction and invalidates any cache entries it touched, so no
// cached value can outlive its (nonexistent) underlying write.
func (s *Store) RollbackTransaction() error {
	s.txMu.Lock()
	tx := s.tx
	if tx == nil {
		s.txMu.Unlock()
		return ErrNoTransaction
	}
	if !atomic.CompareAndSwapInt32(&tx.done, 0, 1) {
		s.txMu.Unlock()
		return ErrNoTransaction
	}
	s.tx = nil
	s.txMu.Unlock()

	tx.watchdog.Stop()
	s.invalidateTouched(tx)
	return nil
}

// invalidateTouched drops every cache entry for a key the transaction
// wrote or deleted, across all six caches, so a subsequent read
// always re-fetches from the store's post-commit or post-rollback
// state.
func (s *Store) invalidateTouched(tx *txState) {
	for _, key := range tx.touchedKeys() {
		s.caches.primary.invalidate(key)
		s.caches.transactionCache.invalidate(key)
		s.caches.blockCache.invalidate(key)
		s.caches.validatorMetrics.invalidate(key)
		s.caches.votingPowerCache.invalidate(key)
		s.caches.slashingCache.invalidate(key)
	}
}

// WithTransaction runs fn inside a new transaction, committing on a
// nil return and rolling back otherwise. It also enforces the
// BATCH_SIZE guard: if fn stages more operations than the configured
// limit, the transaction is rolled back and ErrBatchTooLarge is
// returned instead of committing an oversized batch.
func (s *Store) WithTransaction(fn func() error) error {
	if err := s.BeginTransaction(); err != nil {
		return err
	}

	if err := fn(); err != nil {
		_ = s.RollbackTransaction()
		return err
	}

	tx := s.activeTx()
	if tx != nil && tx.size() > s.batchLimit {
		_ = s.RollbackTransaction()
		return ErrBatchTooLarge
	}

	return s.CommitTransaction()
}
