// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"errors"
	"testing"
)

func TestBeginTransactionRejectsConcurrentSecond(t *testing.T) {
	s := newTestStore(t)

	if err := s.BeginTransaction(); err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}
	defer s.RollbackTransaction()

	if err := s.BeginTransaction(); !errors.Is(err, ErrTransactionInProgress) {
		t.Fatalf("expected ErrTransactionInProgress, got %v", err)
	}
}

func TestCommitTransactionAppliesStagedWrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.BeginTransaction(); err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}
	if err := s.rawPut("k1", []byte("v1")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}
	if err := s.rawPut("k2", []byte("v2")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}

	// Reads inside the transaction observe the staged value.
	if got, err := s.rawGet("k1"); err != nil || string(got) != "v1" {
		t.Fatalf("expected staged read to see v1, got %q, %v", got, err)
	}

	if err := s.CommitTransaction(); err != nil {
		t.Fatalf("CommitTransaction failed: %v", err)
	}

	if got, err := s.rawGet("k1"); err != nil || string(got) != "v1" {
		t.Fatalf("post-commit rawGet(k1) = %q, %v, want v1", got, err)
	}
	if got, err := s.rawGet("k2"); err != nil || string(got) != "v2" {
		t.Fatalf("post-commit rawGet(k2) = %q, %v, want v2", got, err)
	}
}

func TestRollbackTransactionDiscardsStagedWrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.BeginTransaction(); err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}
	if err := s.rawPut("k1", []byte("v1")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}
	if err := s.RollbackTransaction(); err != nil {
		t.Fatalf("RollbackTransaction failed: %v", err)
	}

	if _, err := s.rawGet("k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected rolled-back write to be absent, got %v", err)
	}
}

func TestCommitWithoutTransactionFails(t *testing.T) {
	s := newTestStore(t)
	if err := s.CommitTransaction(); !errors.Is(err, ErrNoTransaction) {
		t.Fatalf("expected ErrNoTransaction, got %v", err)
	}
	if err := s.RollbackTransaction(); !errors.Is(err, ErrNoTransaction) {
		t.Fatalf("expected ErrNoTransaction, got %v", err)
	}
}

func TestDoubleCommitFailsOnSecondCall(t *testing.T) {
	s := newTestStore(t)
	if err := s.BeginTransaction(); err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}
	if err := s.CommitTransaction(); err != nil {
		t.Fatalf("first CommitTransaction failed: %v", err)
	}
	if err := s.CommitTransaction(); !errors.Is(err, ErrNoTransaction) {
		t.Fatalf("expected second commit to fail with ErrNoTransaction, got %v", err)
	}
}

func TestWithTransactionCommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)
	err := s.WithTransaction(func() error {
		return s.rawPut("k", []byte("v"))
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}
	if got, err := s.rawGet("k"); err != nil || string(got) != "v" {
		t.Fatalf("rawGet(k) = %q, %v, want v", got, err)
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	sentinel := errors.New("boom")
	err := s.WithTransaction(func() error {
		_ = s.rawPut("k", []byte("v"))
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if _, err := s.rawGet("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected write to be rolled back, got %v", err)
	}
}

func TestWithTransactionRejectsOversizedBatch(t *testing.T) {
	s := newTestStore(t)
	s.batchLimit = 2

	err := s.WithTransaction(func() error {
		for i := 0; i < 5; i++ {
			if putErr := s.rawPut(string(rune('a'+i)), []byte("v")); putErr != nil {
				return putErr
			}
		}
		return nil
	})
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
	if _, err := s.rawGet("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oversized batch to be rolled back entirely, got %v", err)
	}
}

func TestCommitInvalidatesCachedEntries(t *testing.T) {
	s := newTestStore(t)
	if err := s.putCached(s.caches.primary, "k", []byte("old"), PriorityDefault); err != nil {
		t.Fatalf("putCached failed: %v", err)
	}

	if err := s.BeginTransaction(); err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}
	if err := s.rawPut("k", []byte("new")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}
	if err := s.CommitTransaction(); err != nil {
		t.Fatalf("CommitTransaction failed: %v", err)
	}

	got, err := s.getCached(s.caches.primary, "k", PriorityDefault)
	if err != nil {
		t.Fatalf("getCached failed: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("getCached = %q, want %q (stale cache entry survived commit)", got, "new")
	}
}
