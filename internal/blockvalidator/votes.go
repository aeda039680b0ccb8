// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
	"github.com/h3tag-network/h3tag-node/internal/crypto"
)

// checkVotes verifies every embedded vote's signature against its
// declared public key, per spec §4.2 rule 5. An empty vote list is not
// itself a failure; absence of votes is a validator-set concern, not a
// vote-signature concern.
func checkVotes(votes []*chaintypes.Vote, verifier crypto.Verifier) error {
	for _, v := range votes {
		ok, err := v.VerifySignature(verifier)
		if err != nil {
			return ruleErr(InvalidVotes, "vote %s: %v", v.VoteID, err)
		}
		if !ok {
			return ruleErr(InvalidVotes, "vote %s: signature does not verify", v.VoteID)
		}
	}
	return nil
}
