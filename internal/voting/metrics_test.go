// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package voting

import (
	"testing"

	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

func TestHasParticipatedFalseBeforeVoting(t *testing.T) {
	e, _, _ := newTestEngine(t)
	openActivePeriod(t, e)

	voted, err := e.HasParticipated("addr1")
	if err != nil {
		t.Fatalf("HasParticipated failed: %v", err)
	}
	if voted {
		t.Fatal("expected HasParticipated to be false before any vote is cast")
	}
}

func TestHasParticipatedTrueAfterVoting(t *testing.T) {
	e, _, _ := newTestEngine(t)
	openActivePeriod(t, e)
	signer, _ := crypto.NewSecp256k1Signer()
	vote := signedChainVote(t, signer, periodID(0), "addr1", "chain-b", 16)
	if _, err := e.SubmitVote(vote); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	voted, err := e.HasParticipated("addr1")
	if err != nil {
		t.Fatalf("HasParticipated failed: %v", err)
	}
	if !voted {
		t.Fatal("expected HasParticipated to be true after a vote is cast")
	}
}

func TestHasParticipatedFalseWithNoActivePeriod(t *testing.T) {
	e, _, _ := newTestEngine(t)

	voted, err := e.HasParticipated("addr1")
	if err != nil {
		t.Fatalf("HasParticipated failed: %v", err)
	}
	if voted {
		t.Fatal("expected HasParticipated to be false with no active period")
	}
}

func TestGetActiveVotersTracksDistinctVoters(t *testing.T) {
	e, _, _ := newTestEngine(t)
	openActivePeriod(t, e)

	for _, voter := range []string{"addr1", "addr2"} {
		signer, _ := crypto.NewSecp256k1Signer()
		vote := signedChainVote(t, signer, periodID(0), voter, "chain-b", 16)
		if _, err := e.SubmitVote(vote); err != nil {
			t.Fatalf("SubmitVote(%s) failed: %v", voter, err)
		}
	}

	voters, err := e.GetActiveVoters()
	if err != nil {
		t.Fatalf("GetActiveVoters failed: %v", err)
	}
	if len(voters) != 2 || !voters["addr1"] || !voters["addr2"] {
		t.Fatalf("GetActiveVoters = %+v, want addr1 and addr2", voters)
	}
}

func TestGetVotingMetricsAggregatesPowerAndApproval(t *testing.T) {
	e, _, _ := newTestEngine(t)
	openActivePeriod(t, e)

	signer1, _ := crypto.NewSecp256k1Signer()
	vote1 := signedChainVote(t, signer1, periodID(0), "addr1", "chain-b", 16) // power 4
	if _, err := e.SubmitVote(vote1); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	signer2, _ := crypto.NewSecp256k1Signer()
	vote2 := signedChainVote(t, signer2, periodID(0), "addr2", "chain-b", 9) // power 3
	vote2.Approve = false
	// Re-sign after flipping Approve so the stored vote verifies.
	data, err := vote2.CanonicalBytes()
	if err != nil {
		t.Fatalf("CanonicalBytes failed: %v", err)
	}
	sig, err := signer2.Sign(data)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	vote2.Signature = sig
	if _, err := e.SubmitVote(vote2); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	m, err := e.GetVotingMetrics()
	if err != nil {
		t.Fatalf("GetVotingMetrics failed: %v", err)
	}
	if m.TotalVotes != 2 {
		t.Fatalf("TotalVotes = %d, want 2", m.TotalVotes)
	}
	if m.ApproveCount != 1 || m.RejectCount != 1 {
		t.Fatalf("ApproveCount=%d RejectCount=%d, want 1 and 1", m.ApproveCount, m.RejectCount)
	}
	if m.TotalPower != 7 {
		t.Fatalf("TotalPower = %v, want 7 (4+3)", m.TotalPower)
	}

	// A second call should be served from the TTL cache and return the
	// same result without recomputing.
	m2, err := e.GetVotingMetrics()
	if err != nil {
		t.Fatalf("second GetVotingMetrics failed: %v", err)
	}
	if m2 != m {
		t.Fatalf("cached GetVotingMetrics = %+v, want %+v", m2, m)
	}
}

func TestGetVotingMetricsEmptyWithNoActivePeriod(t *testing.T) {
	e, _, _ := newTestEngine(t)

	m, err := e.GetVotingMetrics()
	if err != nil {
		t.Fatalf("GetVotingMetrics failed: %v", err)
	}
	if m.TotalVotes != 0 {
		t.Fatalf("TotalVotes = %d, want 0 with no active period", m.TotalVotes)
	}
}

func TestGetVotingScheduleReportsCurrentPeriod(t *testing.T) {
	e, _, _ := newTestEngine(t)
	openActivePeriod(t, e)

	sched, err := e.GetVotingSchedule()
	if err != nil {
		t.Fatalf("GetVotingSchedule failed: %v", err)
	}
	if sched.CurrentPeriod == nil || sched.CurrentPeriod.PeriodID != periodID(0) {
		t.Fatalf("CurrentPeriod = %+v, want %s", sched.CurrentPeriod, periodID(0))
	}
	if sched.NextVotingHeight != 10 {
		t.Fatalf("NextVotingHeight = %d, want 10 (period EndBlock+1)", sched.NextVotingHeight)
	}
}

func TestGetVotingScheduleNoActivePeriod(t *testing.T) {
	e, _, _ := newTestEngine(t)

	sched, err := e.GetVotingSchedule()
	if err != nil {
		t.Fatalf("GetVotingSchedule failed: %v", err)
	}
	if sched.CurrentPeriod != nil {
		t.Fatalf("CurrentPeriod = %+v, want nil with no active period", sched.CurrentPeriod)
	}
	if sched.NextVotingHeight != 0 {
		t.Fatalf("NextVotingHeight = %d, want 0 at chain height 0", sched.NextVotingHeight)
	}
}
