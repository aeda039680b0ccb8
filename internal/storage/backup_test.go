// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupRestoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.rawPut("k1", []byte("v1")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}
	if err := s.rawPut("k2", []byte("v2")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}

	backupDir := t.TempDir()
	dir, err := s.Backup(backupDir)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	restored := newTestStore(t)
	if err := restored.Restore(dir); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	got, err := restored.rawGet("k1")
	if err != nil || string(got) != "v1" {
		t.Fatalf("restored rawGet(k1) = %q, %v, want v1", got, err)
	}
	got, err = restored.rawGet("k2")
	if err != nil || string(got) != "v2" {
		t.Fatalf("restored rawGet(k2) = %q, %v, want v2", got, err)
	}
}

func TestBackupRefusesDuringActiveTransaction(t *testing.T) {
	s := newTestStore(t)
	if err := s.BeginTransaction(); err != nil {
		t.Fatalf("BeginTransaction failed: %v", err)
	}
	defer s.RollbackTransaction()

	if _, err := s.Backup(t.TempDir()); !errors.Is(err, ErrTransactionInProgress) {
		t.Fatalf("expected ErrTransactionInProgress, got %v", err)
	}
}

func TestRestoreRejectsCorruptedBatch(t *testing.T) {
	s := newTestStore(t)
	if err := s.rawPut("k1", []byte("v1")); err != nil {
		t.Fatalf("rawPut failed: %v", err)
	}

	backupDir := t.TempDir()
	dir, err := s.Backup(backupDir)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	// Corrupt the checksum file for batch 0.
	checksumPath := filepath.Join(dir, "batch-00000.json.sha256")
	if err := os.WriteFile(checksumPath, []byte(hex.EncodeToString([]byte("not-the-real-checksum-000000000"))), 0o644); err != nil {
		t.Fatalf("failed to corrupt checksum file: %v", err)
	}

	restored := newTestStore(t)
	if err := restored.Restore(dir); err == nil {
		t.Fatal("expected Restore to fail on checksum mismatch")
	}
	if _, err := restored.rawGet("k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no writes to have been applied after a checksum failure, got %v", err)
	}
}
