// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"time"

	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
	"github.com/h3tag-network/h3tag-node/internal/chaintypes"
)

// checkTimestamp implements the wall-clock half of spec §4.2 rule 3:
// the header's timestamp must fall within params.TimestampFutureTolerance
// of now in either direction. The predecessor-ordering half of rule 3
// overlaps exactly with rule 7's own timestamp requirement and is
// enforced once, in checkPrevBlock, rather than duplicated here.
func checkTimestamp(block *chaintypes.Block, now time.Time, params chaincfg.Params) error {
	drift := block.Header.Timestamp.Sub(now)
	if drift < 0 {
		drift = -drift
	}
	if drift > params.TimestampFutureTolerance {
		return ruleErr(InvalidTimestamp, "timestamp %s is more than %s from wall clock %s",
			block.Header.Timestamp, params.TimestampFutureTolerance, now)
	}
	return nil
}
