// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"errors"
	"sync"

	"github.com/decred/slog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"golang.org/x/sync/singleflight"

	"github.com/h3tag-network/h3tag-node/internal/audit"
)

var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// ErrNotFound is returned by typed getters when the requested record
// does not exist; it is distinguished from other errors per spec §7's
// "not-found is not an error" rule by being checked explicitly rather
// than propagated.
var ErrNotFound = errors.New("storage: record not found")

// ErrTransactionInProgress is returned by BeginTransaction when a
// transaction is already open.
var ErrTransactionInProgress = errors.New("storage: transaction already in progress")

// ErrNoTransaction is returned by CommitTransaction/RollbackTransaction
// when no transaction is open.
var ErrNoTransaction = errors.New("storage: no transaction in progress")

// ErrCommitFailed wraps an underlying leveldb error from a failed
// commit, after the transaction has already been rolled back.
var ErrCommitFailed = errors.New("storage: commit failed")

// ErrBatchTooLarge is returned when a transaction's batch exceeds
// the Store's batch size limit (Options.BatchSizeLimit, default 1000).
var ErrBatchTooLarge = errors.New("storage: batch exceeds size limit")

// Store is the ordered key-value persistence layer of spec §4.3. It
// owns the only byte-level representation of every chain record; all
// in-memory caches hold copies, never the source of truth.
type Store struct {
	db *leveldb.DB

	caches *caches
	audit  audit.Logger

	txMu        sync.Mutex // serializes the single process-wide transaction
	tx          *txState
	batchLimit  int

	group singleflight.Group // de-dupes concurrent cache-miss reads of the same key
}

// Options configures a Store.
type Options struct {
	// BatchSizeLimit bounds the number of operations permitted in a
	// single transaction, per spec §4.3's BATCH_SIZE guard.
	BatchSizeLimit int

	// AuditLogger receives every failure-path audit event. A nil value
	// is replaced with audit.NopLogger.
	AuditLogger audit.Logger
}

// Open opens (creating if absent) a goleveldb database at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return newStore(db, opts), nil
}

func newStore(db *leveldb.DB, opts Options) *Store {
	auditLogger := opts.AuditLogger
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	limit := opts.BatchSizeLimit
	if limit <= 0 {
		limit = 1000
	}
	return &Store{
		db:         db,
		caches:     newCaches(),
		audit:      auditLogger,
		batchLimit: limit,
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// rawGet reads key either from the active transaction's overlay (if
// any and if it touched this key) or from the underlying database,
// de-duplicating concurrent reads of the same cold key.
func (s *Store) rawGet(key string) ([]byte, error) {
	if tx := s.activeTx(); tx != nil {
		if val, deleted, touched := tx.lookup(key); touched {
			if deleted {
				return nil, ErrNotFound
			}
			return val, nil
		}
	}

	val, err, _ := s.group.Do(key, func() (interface{}, error) {
		v, err := s.db.Get([]byte(key), nil)
		if err != nil {
			if errors.Is(err, leveldb.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]byte), nil
}

// rawPut writes key/value, either staging it in the active transaction
// or applying it directly.
func (s *Store) rawPut(key string, value []byte) error {
	if tx := s.activeTx(); tx != nil {
		return tx.stage(key, value, false)
	}
	return s.db.Put([]byte(key), value, nil)
}

// rawDel deletes key, either staging the deletion in the active
// transaction or applying it directly.
func (s *Store) rawDel(key string) error {
	if tx := s.activeTx(); tx != nil {
		return tx.stage(key, nil, true)
	}
	return s.db.Delete([]byte(key), nil)
}

// rawIterate scans every key in [prefix, prefixRangeEnd(prefix)) in
// lexicographic order, invoking fn with each key/value. Iteration
// stops early if fn returns false. It is not transaction-aware: reads
// inside an open transaction observe the pre-image on the underlying
// store, matching the read-isolation contract of spec §5 (other
// readers see the pre-image until commit).
func (s *Store) rawIterate(prefix string, fn func(key string, value []byte) bool) error {
	rng := &util.Range{Start: []byte(prefix), Limit: []byte(prefixRangeEnd(prefix))}
	iter := s.db.NewIterator(rng, nil)
	defer iter.Release()
	for iter.Next() {
		key := string(iter.Key())
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}

// putCached writes value to both the underlying store and cache in
// the same logical operation, satisfying spec §4.3's "cache writes
// happen under the same lock as the underlying store write."
func (s *Store) putCached(cache *ttlCache, key string, value []byte, priority int) error {
	if err := s.rawPut(key, value); err != nil {
		return err
	}
	cache.set(key, value, priority)
	return nil
}

// delCached deletes key from both the underlying store and cache.
func (s *Store) delCached(cache *ttlCache, key string) error {
	if err := s.rawDel(key); err != nil {
		return err
	}
	cache.invalidate(key)
	return nil
}

// getCached reads key from cache, falling back to the store and
// populating the cache on a miss.
func (s *Store) getCached(cache *ttlCache, key string, priority int) ([]byte, error) {
	if val, ok := cache.get(key); ok {
		return val, nil
	}
	val, err := s.rawGet(key)
	if err != nil {
		return nil, err
	}
	cache.set(key, val, priority)
	return val, nil
}

func (s *Store) logAudit(eventType, action string, severity audit.Severity, details map[string]interface{}) {
	s.audit.LogEvent(audit.Event{
		Type:     eventType,
		Action:   action,
		Severity: severity,
		Source:   "storage",
		Details:  details,
	})
}
