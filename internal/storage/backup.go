// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// backupBatchSize is the number of entries per batch file, per spec
// §4.3.
const backupBatchSize = 10000

// backupEntry is one key/value pair within a backup batch file. Value
// is []byte rather than string so encoding/json base64-encodes it
// automatically, keeping arbitrary binary record values valid JSON.
type backupEntry struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// backupMetadata summarizes a completed backup, written as
// metadata.json alongside the batch files.
type backupMetadata struct {
	CreatedAt  time.Time `json:"createdAt"`
	EntryCount int       `json:"entryCount"`
	BatchCount int       `json:"batchCount"`
}

// Backup streams the entire keyspace into a timestamped directory
// under path, as JSON batches of backupBatchSize entries each, with a
// checksum file per batch and a metadata.json summary. The checksum is
// crypto.Hash256 under the "backup" domain tag (SHA3-256 based); despite
// the .sha256 file suffix it is not a plain SHA-256 digest. Backup
// must not overlap an active transaction, per spec §5.
func (s *Store) Backup(path string) (string, error) {
	if s.activeTx() != nil {
		return "", ErrTransactionInProgress
	}

	timestamp := time.Now().UTC().Format("20060102T150405Z")
	dir := filepath.Join(path, timestamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	var batch []backupEntry
	batchIndex := 0
	totalEntries := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := writeBackupBatch(dir, batchIndex, batch); err != nil {
			return err
		}
		batchIndex++
		totalEntries += len(batch)
		batch = batch[:0]
		return nil
	}

	iterErr := s.rawIterate("", func(key string, value []byte) bool {
		valueCopy := append([]byte(nil), value...)
		batch = append(batch, backupEntry{Key: key, Value: valueCopy})
		if len(batch) >= backupBatchSize {
			if err := flush(); err != nil {
				s.logAudit("storage", "backup_failed", audit.SeverityCritical, map[string]interface{}{"error": err.Error()})
				return false
			}
		}
		return true
	})
	if iterErr != nil {
		return "", iterErr
	}
	if err := flush(); err != nil {
		return "", err
	}

	meta := backupMetadata{CreatedAt: time.Now().UTC(), EntryCount: totalEntries, BatchCount: batchIndex}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), metaData, 0o644); err != nil {
		return "", err
	}

	s.logAudit("storage", "backup", audit.SeverityInfo, map[string]interface{}{"path": dir, "entries": totalEntries})
	return dir, nil
}

func writeBackupBatch(dir string, index int, entries []backupEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("batch-%05d.json", index)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return err
	}
	checksum := crypto.Hash256("backup", data)
	checksumName := name + ".sha256"
	return os.WriteFile(filepath.Join(dir, checksumName), []byte(checksum.String()), 0o644)
}

// Restore is the inverse of Backup: it verifies every batch's checksum
// before applying its entries, failing before any writes occur if a
// single batch fails verification.
func (s *Store) Restore(dir string) error {
	metaData, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return err
	}
	var meta backupMetadata
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return err
	}

	batches := make([][]backupEntry, meta.BatchCount)
	for i := 0; i < meta.BatchCount; i++ {
		name := fmt.Sprintf("batch-%05d.json", i)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		wantChecksum, err := os.ReadFile(filepath.Join(dir, name+".sha256"))
		if err != nil {
			return err
		}
		gotChecksum := crypto.Hash256("backup", data)
		if gotChecksum.String() != string(wantChecksum) {
			return fmt.Errorf("storage: restore checksum mismatch in %s", name)
		}
		var entries []backupEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return err
		}
		batches[i] = entries
	}

	for _, entries := range batches {
		for _, entry := range entries {
			if err := s.rawPut(entry.Key, entry.Value); err != nil {
				return err
			}
		}
	}

	s.logAudit("storage", "restore", audit.SeverityInfo, map[string]interface{}{"path": dir, "entries": meta.EntryCount})
	return nil
}
