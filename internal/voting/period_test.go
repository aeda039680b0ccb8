// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"errors"
	"testing"

	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/storage"
)

func TestInitializeOpensDuePeriodWhenStable(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	active, err := e.storage.ActiveVotingPeriod()
	if err != nil {
		t.Fatalf("expected an active period after Initialize, got error: %v", err)
	}
	if active.StartBlock != 0 {
		t.Fatalf("active.StartBlock = %d, want 0", active.StartBlock)
	}
	if active.Status != chaintypes.PeriodActive {
		t.Fatalf("active.Status = %s, want %s", active.Status, chaintypes.PeriodActive)
	}
}

func TestInitializeRecoversExistingActivePeriod(t *testing.T) {
	e, s, _ := newTestEngine(t)
	existing := &chaintypes.VotingPeriod{
		PeriodID:   "period-0",
		StartBlock: 0,
		EndBlock:   9,
		Status:     chaintypes.PeriodActive,
		Type:       chaintypes.PeriodNodeSelection,
	}
	if err := s.PutVotingPeriod(existing); err != nil {
		t.Fatalf("PutVotingPeriod failed: %v", err)
	}

	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if e.current == nil || e.current.periodID != "period-0" {
		t.Fatalf("expected Initialize to recover period-0 into e.current, got %+v", e.current)
	}
}

func TestStartVotingPeriodRejectsWhenUnstable(t *testing.T) {
	e, _, fakes := newTestEngine(t)
	fakes.Node.Peers = 0

	if err := e.StartVotingPeriod(0); err == nil {
		t.Fatal("expected StartVotingPeriod to fail when the network is unstable")
	}
}

func TestStartVotingPeriodRejectsWhenAlreadyActive(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if err := e.StartVotingPeriod(0); err != nil {
		t.Fatalf("first StartVotingPeriod failed: %v", err)
	}
	if err := e.StartVotingPeriod(10); err == nil {
		t.Fatal("expected second StartVotingPeriod to fail while one is still active")
	}
}

func TestCompletePeriodLockedFinalizesAndOpensSuccessor(t *testing.T) {
	e, s, _ := newTestEngine(t)
	if err := e.StartVotingPeriod(0); err != nil {
		t.Fatalf("StartVotingPeriod failed: %v", err)
	}

	e.periodMu.Lock()
	err := e.completePeriodLocked(periodID(0))
	e.periodMu.Unlock()
	if err != nil {
		t.Fatalf("completePeriodLocked failed: %v", err)
	}

	completed, err := s.GetVotingPeriod(periodID(0))
	if err != nil {
		t.Fatalf("GetVotingPeriod failed: %v", err)
	}
	if completed.Status != chaintypes.PeriodCompleted {
		t.Fatalf("completed.Status = %s, want %s", completed.Status, chaintypes.PeriodCompleted)
	}
	if !completed.IsAudited {
		t.Fatal("expected completed period to be marked audited")
	}

	successor, err := s.GetVotingPeriod(periodID(10))
	if err != nil {
		t.Fatalf("expected a successor period to open, got error: %v", err)
	}
	if successor.Status != chaintypes.PeriodActive {
		t.Fatalf("successor.Status = %s, want %s", successor.Status, chaintypes.PeriodActive)
	}
}

func TestCompletePeriodLockedIsIdempotentOnceCompleted(t *testing.T) {
	e, s, _ := newTestEngine(t)
	if err := e.StartVotingPeriod(0); err != nil {
		t.Fatalf("StartVotingPeriod failed: %v", err)
	}
	e.periodMu.Lock()
	if err := e.completePeriodLocked(periodID(0)); err != nil {
		e.periodMu.Unlock()
		t.Fatalf("first completePeriodLocked failed: %v", err)
	}
	if err := e.completePeriodLocked(periodID(0)); err != nil {
		e.periodMu.Unlock()
		t.Fatalf("second completePeriodLocked on an already-completed period should be a no-op, got: %v", err)
	}
	e.periodMu.Unlock()

	got, err := s.GetVotingPeriod(periodID(0))
	if err != nil {
		t.Fatalf("GetVotingPeriod failed: %v", err)
	}
	if got.Status != chaintypes.PeriodCompleted {
		t.Fatalf("status = %s, want %s", got.Status, chaintypes.PeriodCompleted)
	}
}

func TestCompletePeriodLockedMissingPeriod(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.periodMu.Lock()
	err := e.completePeriodLocked("does-not-exist")
	e.periodMu.Unlock()
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected storage.ErrNotFound completing a nonexistent period, got %v", err)
	}
}
