// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockvalidator

import (
	"github.com/h3tag-network/h3tag-node/internal/amount"
	"github.com/h3tag-network/h3tag-node/internal/chaincfg"
)

// BlockReward returns the coinbase reward owed at height: a pure
// function of height and params, matching the ledger-driven shape of
// the teacher's subsidy calculators. The reward halves every
// params.HalvingInterval blocks starting from params.InitialReward and
// saturates at params.MinReward once params.MaxHalvings have elapsed,
// so the schedule never reaches zero.
func BlockReward(height uint64, params chaincfg.Params) amount.Amount {
	halvings := height / params.HalvingInterval
	if halvings >= params.MaxHalvings {
		return amount.FromUint64(params.MinReward)
	}

	reward := params.InitialReward
	for i := uint64(0); i < halvings; i++ {
		reward >>= 1
		if reward <= params.MinReward {
			return amount.FromUint64(params.MinReward)
		}
	}
	return amount.FromUint64(reward)
}
