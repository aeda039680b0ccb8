// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import "github.com/h3tag-network/h3tag-node/internal/chaintypes"

// checkPrevBlock implements spec §4.2 rule 7: the candidate's
// previousHash must equal the tip's hash, and its timestamp must
// strictly exceed the tip's. A nil previous block means candidate is
// the genesis block and this rule is skipped entirely.
func checkPrevBlock(candidate, previous *chaintypes.Block) error {
	if previous == nil {
		return nil
	}
	if candidate.Header.PreviousHash != previous.Header.Hash {
		return ruleErr(InvalidPrevBlock, "header.previousHash %s does not match tip %s",
			candidate.Header.PreviousHash, previous.Header.Hash)
	}
	if !candidate.Header.Timestamp.After(previous.Header.Timestamp) {
		return ruleErr(InvalidTimestampOrder, "timestamp %s does not exceed previous block's %s",
			candidate.Header.Timestamp, previous.Header.Timestamp)
	}
	return nil
}
