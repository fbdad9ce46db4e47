// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
)

// Account is the stored state of one staker.
type Account struct {
	Staked     *uint256.Int // currently locked stake
	RewardDebt *uint256.Int // accumulator value at the last settlement
	Unclaimed  *uint256.Int // reward settled but not yet paid out
}

// NewAccount returns an empty account whose debt is based at the given accumulator.
func NewAccount(rewardPerShare *uint256.Int) *Account {
	return &Account{
		Staked:     new(uint256.Int),
		RewardDebt: new(uint256.Int).Set(rewardPerShare),
		Unclaimed:  new(uint256.Int),
	}
}

func (a *Account) IsEmpty() bool {
	return a.Staked.IsZero() && a.Unclaimed.IsZero()
}

// Clone returns a deep copy. Nil fields are copied as zero.
func (a *Account) Clone() *Account {
	return &Account{
		Staked:     common.CopyAmount(a.Staked),
		RewardDebt: common.CopyAmount(a.RewardDebt),
		Unclaimed:  common.CopyAmount(a.Unclaimed),
	}
}
