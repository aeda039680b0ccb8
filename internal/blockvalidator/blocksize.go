// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import "github.com/h3tag-network/h3tag-node/internal/chaincfg"

// SizeFactors are the three multiplicative inputs to the dynamic
// block-size target, each already clamped to its named range.
type SizeFactors struct {
	// Congestion reflects mempool fill ratio, clamped to [0.5, 2.0].
	Congestion float64
	// BlockTime reflects the target-to-observed block time ratio,
	// clamped to [0.8, 1.2].
	BlockTime float64
	// Propagation reflects 1000/medianPropagationMillis, clamped to
	// [0.7, 1.3].
	Propagation float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NewSizeFactors derives a SizeFactors from raw network observations,
// clamping each term to the range spec §4.2 rule 2 names.
func NewSizeFactors(mempoolFillRatio, targetBlockTimeSeconds, observedBlockTimeSeconds, medianPropagationMillis float64) SizeFactors {
	congestion := clamp(0.5+1.5*mempoolFillRatio, 0.5, 2.0)

	blockTime := 1.0
	if observedBlockTimeSeconds > 0 {
		blockTime = targetBlockTimeSeconds / observedBlockTimeSeconds
	}
	blockTime = clamp(blockTime, 0.8, 1.2)

	propagation := 1.3
	if medianPropagationMillis > 0 {
		propagation = 1000.0 / medianPropagationMillis
	}
	propagation = clamp(propagation, 0.7, 1.3)

	return SizeFactors{Congestion: congestion, BlockTime: blockTime, Propagation: propagation}
}

// ComputeBlockSizeLimit calculates the block at this height's
// permitted byte-size ceiling: a nominal target derived from
// prevSizeBytes and the three named factors, then clamped first to a
// ±params.BlockSizeChangeCap step from prevSizeBytes and finally to the
// [params.MinBlockSize, params.MaxBlockSize] corridor. This mirrors the
// teacher's "calculate a nominal allocation, then clamp it to a
// bounded corridor" shape, repurposed from space allocation between
// coin types to size-limit evolution between blocks.
func ComputeBlockSizeLimit(prevSizeBytes uint64, factors SizeFactors, params chaincfg.Params) uint64 {
	if prevSizeBytes == 0 {
		prevSizeBytes = params.MinBlockSize
	}

	nominal := float64(prevSizeBytes) * factors.Congestion * factors.BlockTime * factors.Propagation

	minStep := float64(prevSizeBytes) * (1 - params.BlockSizeChangeCap)
	maxStep := float64(prevSizeBytes) * (1 + params.BlockSizeChangeCap)
	nominal = clamp(nominal, minStep, maxStep)

	nominal = clamp(nominal, float64(params.MinBlockSize), float64(params.MaxBlockSize))
	return uint64(nominal)
}
