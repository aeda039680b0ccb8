// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// shardCompressionThreshold is the payload size above which SyncShard
// auto-compresses with gzip, per spec §4.3.
const shardCompressionThreshold = 100 * 1024

// shardRecord is the on-disk representation of a shard, including the
// bookkeeping compaction needs to find soft-deleted shards past their
// retention horizon.
type shardRecord struct {
	ShardID    string    `json:"shardId"`
	Checksum   string    `json:"checksum"`
	Compressed bool      `json:"compressed"`
	Payload    []byte    `json:"payload"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Deleted    bool      `json:"deleted"`
	DeletedAt  time.Time `json:"deletedAt,omitempty"`
}

// shardMu serializes shard replication, per spec §5's shard-mutex
// requirement.
var shardMu sync.Mutex

// SyncShard atomically replicates data into shardID. If the existing
// shard's checksum already matches the new payload, the write is
// skipped as a no-op. Payloads over 100KB are gzip-compressed before
// storage. Emits an audit event on success or on failure
// (SHARD_SYNC_FAILED), per spec §4.3.
func (s *Store) SyncShard(shardID string, data [][]byte) error {
	shardMu.Lock()
	defer shardMu.Unlock()

	canonical, err := canonicalizeShardData(data)
	if err != nil {
		s.logShardFailure(shardID, err)
		return err
	}
	checksum := shardChecksumHex(canonical)

	existing, err := s.getShardRecord(shardID)
	if err != nil && err != ErrNotFound {
		s.logShardFailure(shardID, err)
		return err
	}
	if err == nil && !existing.Deleted && existing.Checksum == checksum {
		return nil // no-op: identical content already stored
	}

	payload := canonical
	compressed := false
	if len(payload) > shardCompressionThreshold {
		compressed = true
		payload, err = gzipCompress(payload)
		if err != nil {
			s.logShardFailure(shardID, err)
			return err
		}
	}

	record := shardRecord{
		ShardID:    shardID,
		Checksum:   checksum,
		Compressed: compressed,
		Payload:    payload,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.putShardRecord(&record); err != nil {
		s.logShardFailure(shardID, err)
		return err
	}

	s.logAudit("storage", "shard_sync", audit.SeverityInfo, map[string]interface{}{"shardId": shardID})
	return nil
}

// GetShard returns the decompressed payload slices last synced to
// shardID, or ErrNotFound if the shard was never written or has been
// soft-deleted.
func (s *Store) GetShard(shardID string) ([][]byte, error) {
	record, err := s.getShardRecord(shardID)
	if err != nil {
		return nil, err
	}
	if record.Deleted {
		return nil, ErrNotFound
	}
	payload := record.Payload
	if record.Compressed {
		payload, err = gzipDecompress(payload)
		if err != nil {
			return nil, err
		}
	}
	return decanonicalizeShardData(payload)
}

// SoftDeleteShard marks a shard as deleted without removing the
// record, so compaction can later sweep it once shardRetention has
// elapsed.
func (s *Store) SoftDeleteShard(shardID string) error {
	record, err := s.getShardRecord(shardID)
	if err != nil {
		return err
	}
	record.Deleted = true
	record.DeletedAt = time.Now().UTC()
	return s.putShardRecord(record)
}

func (s *Store) softDeletedShardsOlderThan(cutoff time.Time) ([]string, error) {
	var ids []string
	err := s.rawIterate(prefixShard, func(_ string, value []byte) bool {
		var record shardRecord
		if jsonErr := json.Unmarshal(value, &record); jsonErr == nil {
			if record.Deleted && record.DeletedAt.Before(cutoff) {
				ids = append(ids, record.ShardID)
			}
		}
		return true
	})
	return ids, err
}

func (s *Store) getShardRecord(shardID string) (*shardRecord, error) {
	data, err := s.rawGet(shardKey(shardID))
	if err != nil {
		return nil, err
	}
	var record shardRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) putShardRecord(record *shardRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rawPut(shardKey(record.ShardID), data)
}

func (s *Store) logShardFailure(shardID string, err error) {
	s.logAudit("storage", "SHARD_SYNC_FAILED", audit.SeverityCritical, map[string]interface{}{
		"shardId": shardID,
		"error":   err.Error(),
	})
}

func canonicalizeShardData(data [][]byte) ([]byte, error) {
	return json.Marshal(data)
}

func decanonicalizeShardData(canonical []byte) ([][]byte, error) {
	var data [][]byte
	if err := json.Unmarshal(canonical, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// shardChecksumHex returns the domain-separated "shard" checksum of
// data, so a shard's checksum can never collide with a digest computed
// over some other record type.
func shardChecksumHex(data []byte) string {
	return crypto.Hash256("shard", data).String()
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
