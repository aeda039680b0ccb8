// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"context"
	"fmt"
	"time"

	"github.com/decred/slog"

	"github.com/h3tag-network/h3tag-node/internal/audit"
	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/collab"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Validator runs the nine-rule acceptance pipeline of spec §4.2 against
// a candidate block. Every external dependency is held by interface,
// mirroring the teacher's own collaborator-injection pattern, so the
// pipeline can be exercised in tests without a live storage or mempool.
type Validator struct {
	UTXOs    UTXOSource
	Mempool  collab.Mempool
	Verifier crypto.Verifier
	Audit    audit.Logger
	Params   chaincfg.Params
	Timeout  time.Duration

	maxTarget [32]byte
}

// New constructs a Validator against params, decoding its
// MaxTargetHex once up front rather than per block. A zero Timeout
// defaults to params.ValidationTimeout, falling back to 30 seconds if
// that is also zero.
func New(utxos UTXOSource, mempool collab.Mempool, verifier crypto.Verifier, auditLogger audit.Logger, params chaincfg.Params, timeout time.Duration) (*Validator, error) {
	maxTarget, err := DecodeMaxTarget(params.MaxTargetHex)
	if err != nil {
		return nil, fmt.Errorf("blockvalidator: %w", err)
	}
	if timeout <= 0 {
		timeout = params.ValidationTimeout
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &Validator{
		UTXOs:     utxos,
		Mempool:   mempool,
		Verifier:  verifier,
		Audit:     auditLogger,
		Params:    params,
		Timeout:   timeout,
		maxTarget: maxTarget,
	}, nil
}

// Inputs carries the per-call context the pipeline needs beyond the
// candidate block itself: the current tip (nil for genesis), its
// serialized size, and the network-observed factors behind the
// dynamic block-size target.
type Inputs struct {
	Previous      *chaintypes.Block
	PrevSizeBytes uint64
	SizeFactors   SizeFactors
	Now           time.Time
}

// Validate runs every rule of spec §4.2 in order, aborting at the
// first failure, and enforces the overall wall-clock timeout. A
// successful validation triggers validator-set cleanup: every
// validator whose proof or signature failed but whose reputation
// still cleared the block is reported to the mempool collaborator for
// reputation handling.
func (v *Validator) Validate(ctx context.Context, block *chaintypes.Block, in Inputs) error {
	cctx, cancel := context.WithTimeout(ctx, v.Timeout)
	defer cancel()

	type result struct {
		invalid []*chaintypes.Validator
		err     error
	}
	done := make(chan result, 1)

	go func() {
		invalid, err := v.runPipeline(block, in)
		done <- result{invalid: invalid, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			v.logFailure(block, r.err)
			return r.err
		}
		v.cleanupValidatorSet(r.invalid)
		log.Debugf("blockvalidator: accepted block %s at height %d", block.Header.Hash, block.Header.Height)
		return nil
	case <-cctx.Done():
		err := ruleErr(ValidationTimeout, "block %s: %v", block.Header.Hash, cctx.Err())
		v.logFailure(block, err)
		return err
	}
}

func (v *Validator) runPipeline(block *chaintypes.Block, in Inputs) ([]*chaintypes.Validator, error) {
	if err := checkStructure(block); err != nil {
		return nil, err
	}
	if err := checkSize(block, in.PrevSizeBytes, in.SizeFactors, v.Params); err != nil {
		return nil, err
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	if err := checkTimestamp(block, now, v.Params); err != nil {
		return nil, err
	}

	// The declared header hash is untrusted input until it is checked
	// against the canonical hash of the header's own fields; proof of
	// work is only meaningful over that recomputed value, per spec §8's
	// invariant that every persisted block's hash is the canonical hash
	// of its own header.
	recomputed, err := block.Header.ComputeHash()
	if err != nil {
		return nil, ruleErr(InvalidBlockHash, "block %s: %v", block.Header.Hash, err)
	}
	if recomputed != block.Header.Hash {
		return nil, ruleErr(InvalidBlockHash, "declared hash %s does not match canonical hash %s", block.Header.Hash, recomputed)
	}

	if !CheckProofOfWork(recomputed, block.Header.Difficulty, v.maxTarget) {
		return nil, ruleErr(InvalidPow, "block %s does not meet target for difficulty %d", recomputed, block.Header.Difficulty)
	}
	if err := checkVotes(block.Votes, v.Verifier); err != nil {
		return nil, err
	}
	invalid, err := checkValidatorSet(block.Validators, block.Header.ValidatorMerkleRoot, v.Verifier, v.Params)
	if err != nil {
		return nil, err
	}
	if err := checkPrevBlock(block, in.Previous); err != nil {
		return nil, err
	}
	if err := checkMerkleRoot(block); err != nil {
		return nil, err
	}
	if err := checkTransactions(block.Transactions, block.Header.Height, v.UTXOs, v.Verifier, v.Params); err != nil {
		return nil, err
	}
	return invalid, nil
}

func (v *Validator) cleanupValidatorSet(invalid []*chaintypes.Validator) {
	if v.Mempool == nil {
		return
	}
	for _, val := range invalid {
		v.Mempool.HandleValidationFailure("proof or signature did not verify", val)
	}
}

func (v *Validator) logFailure(block *chaintypes.Block, err error) {
	v.Audit.LogEvent(audit.Event{
		Type:     "block_validation",
		Action:   "reject",
		Severity: audit.SeverityWarning,
		Source:   "blockvalidator",
		Details: map[string]interface{}{
			"hash":  block.Header.Hash.String(),
			"error": err.Error(),
		},
	})
}
