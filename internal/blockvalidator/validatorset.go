// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"encoding/hex"

	"github.com/jrick/bitset"

	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chainhash"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
	"github.com/h3tag-network/h3tag-node/internal/merkle"
)

// checkValidatorSet implements spec §4.2 rule 6: at least
// params.MinValidators validators are present; each one's merkle proof
// checks out against validatorMerkleRoot and its own signature checks
// out over its validationData; and the reputation-weighted sum of
// valid validators clears params.ValidatorWeightQuorum. Modeled on the
// composite-formula shape of the teacher's utilization scoring: several
// weighted terms summed and compared to a threshold, here collapsed to
// a single weighted sum. The returned slice holds every validator
// whose merkle proof or signature failed to verify, so a caller can
// feed them back to the mempool's reputation handling as part of the
// block's post-success validator-set cleanup even though the block as
// a whole was accepted.
func checkValidatorSet(validators []*chaintypes.Validator, validatorMerkleRoot chainhash.Hash, verifier crypto.Verifier, params chaincfg.Params) ([]*chaintypes.Validator, error) {
	if len(validators) < params.MinValidators {
		return nil, ruleErr(InsufficientValidators, "got %d, want at least %d", len(validators), params.MinValidators)
	}

	// validBits marks, by position in validators, which ones have both a
	// verifying merkle proof and a verifying signature, the same packed
	// participation bitmap internal/voting/validate.go uses for its
	// structurally identical expected/active/present problem.
	validBits := bitset.NewBytes(len(validators))
	for i, v := range validators {
		if validatorMerkleProofValid(v, validatorMerkleRoot) && validatorSignatureValid(v, verifier) {
			validBits.Set(i)
		}
	}

	var weighted float64
	var invalid []*chaintypes.Validator
	for i, v := range validators {
		isValid := validBits.Get(i)
		if !isValid {
			invalid = append(invalid, v)
		}
		weighted += v.WeightedScore(isValid)
	}

	if weighted < params.ValidatorWeightQuorum {
		return invalid, ruleErr(InsufficientValidatorWeight, "weighted score %.4f below threshold %.2f", weighted, params.ValidatorWeightQuorum)
	}
	return invalid, nil
}

func validatorMerkleProofValid(v *chaintypes.Validator, root chainhash.Hash) bool {
	leafData := hex.EncodeToString(v.ValidationData)
	leafHash := crypto.Hash256("merkle-leaf", []byte(leafData))
	proof := &merkle.Proof{
		Index:    v.MerkleIndex,
		Hash:     leafHash,
		Siblings: v.MerkleProof,
	}
	return merkle.VerifyProof(proof, leafData, root)
}

func validatorSignatureValid(v *chaintypes.Validator, verifier crypto.Verifier) bool {
	return verifier.Verify(v.ValidationData, v.Signature, v.PublicKey)
}
