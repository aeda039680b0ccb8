// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/math/uint256"

	"github.com/h3tag-network/h3tag-node/internal/chainhash"
)

// DecodeMaxTarget decodes a chaincfg.Params.MaxTargetHex string into
// the big-endian 256-bit array CheckProofOfWork divides by difficulty.
// Called once at Validator construction rather than per block.
func DecodeMaxTarget(hexTarget string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(hexTarget)
	if err != nil {
		return out, fmt.Errorf("max target %q is not valid hex: %w", hexTarget, err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("max target must decode to %d bytes, got %d", len(out), len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// CheckProofOfWork reports whether hash, interpreted as a big-endian
// 256-bit integer, is at or below the target implied by difficulty:
// maxTarget / difficulty. A difficulty of 0 is treated as 1, the
// easiest possible target, since a zero divisor is undefined.
func CheckProofOfWork(hash chainhash.Hash, difficulty uint32, maxTarget [32]byte) bool {
	if difficulty == 0 {
		difficulty = 1
	}

	var target uint256.Uint256
	target.SetBytes(&maxTarget)

	var divisor uint256.Uint256
	divisor.SetUint64(uint64(difficulty))
	target.Div(&divisor)

	hashBytes := [32]byte(hash)
	var candidate uint256.Uint256
	candidate.SetBytes(&hashBytes)

	return candidate.Lt(&target) || candidate.Eq(&target)
}
