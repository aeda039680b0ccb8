// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

func TestPutGetValidator(t *testing.T) {
	s := newTestStore(t)
	v := &chaintypes.Validator{
		ID:         "v1",
		Address:    chaintypes.Address("addr1"),
		Reputation: 80,
		IsActive:   true,
	}
	if err := s.PutValidator(v); err != nil {
		t.Fatalf("PutValidator failed: %v", err)
	}
	got, err := s.GetValidator("addr1")
	if err != nil {
		t.Fatalf("GetValidator failed: %v", err)
	}
	if got.Reputation != 80 {
		t.Fatalf("GetValidator Reputation = %d, want 80", got.Reputation)
	}
}

func TestActiveValidatorsExcludesInactiveAndSuspended(t *testing.T) {
	s := newTestStore(t)
	active := &chaintypes.Validator{ID: "v1", Address: chaintypes.Address("addr1"), IsActive: true}
	inactive := &chaintypes.Validator{ID: "v2", Address: chaintypes.Address("addr2"), IsActive: false}
	suspended := &chaintypes.Validator{ID: "v3", Address: chaintypes.Address("addr3"), IsActive: true, IsSuspended: true}

	for _, v := range []*chaintypes.Validator{active, inactive, suspended} {
		if err := s.PutValidator(v); err != nil {
			t.Fatalf("PutValidator(%s) failed: %v", v.ID, err)
		}
	}

	got, err := s.ActiveValidators()
	if err != nil {
		t.Fatalf("ActiveValidators failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "v1" {
		t.Fatalf("ActiveValidators = %+v, want only v1", got)
	}
}

func TestValidatorScoreAveragesRecentSamples(t *testing.T) {
	s := newTestStore(t)
	now := time.Unix(1_700_000_000, 0).UTC()

	if err := s.RecordUptimeSample("addr1", now.Add(-time.Hour), 1.0); err != nil {
		t.Fatalf("RecordUptimeSample failed: %v", err)
	}
	if err := s.RecordUptimeSample("addr1", now.Add(-48*time.Hour), 0.0); err != nil {
		// Outside the 24h averaging window; should not affect the score.
		t.Fatalf("RecordUptimeSample failed: %v", err)
	}
	if err := s.RecordBlockProductionSample("addr1", now.Add(-time.Hour), true); err != nil {
		t.Fatalf("RecordBlockProductionSample failed: %v", err)
	}
	if err := s.RecordHeartbeat("addr1", now.Add(-time.Minute), 0); err != nil {
		t.Fatalf("RecordHeartbeat failed: %v", err)
	}

	score, err := s.ValidatorScore("addr1", now, 0.5, 0.5)
	if err != nil {
		t.Fatalf("ValidatorScore failed: %v", err)
	}

	// reliability = 0.4*1.0 + 0.4*1.0 + 0.2*1.0 = 1.0
	// score = 0.4*0.5 + 0.4*0.5 + 0.2*1.0 = 0.6
	want := 0.6
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("ValidatorScore = %v, want %v", score, want)
	}
}

func TestValidatorScoreWithNoSamplesIsPowAndVoteOnly(t *testing.T) {
	s := newTestStore(t)
	now := time.Unix(1_700_000_000, 0).UTC()

	score, err := s.ValidatorScore("addr-never-seen", now, 1.0, 1.0)
	if err != nil {
		t.Fatalf("ValidatorScore failed: %v", err)
	}
	// reliability contributes 0 with no samples; score = 0.4 + 0.4 + 0 = 0.8
	want := 0.8
	if diff := score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("ValidatorScore = %v, want %v", score, want)
	}
}

func TestRecordSlash(t *testing.T) {
	s := newTestStore(t)
	now := time.Unix(1_700_000_000, 0).UTC()
	if err := s.RecordSlash("addr1", now, "double-sign"); err != nil {
		t.Fatalf("RecordSlash failed: %v", err)
	}
	data, err := s.rawGet(slashKey("addr1", now.UTC().UnixMilli()))
	if err != nil {
		t.Fatalf("rawGet slash entry failed: %v", err)
	}
	if string(data) != "double-sign" {
		t.Fatalf("slash entry = %q, want %q", data, "double-sign")
	}
}
