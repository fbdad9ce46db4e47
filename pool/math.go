// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"
)

// Scale is the fixed-point factor of the reward-per-share accumulator.
var Scale = uint256.NewInt(1e18)

// pendingReward returns staked * (rewardPerShare - debt) / Scale.
// The product is computed in 512 bits, so only a quotient above 2^256 overflows.
func pendingReward(staked, rewardPerShare, debt *uint256.Int) (*uint256.Int, error) {
	delta, underflow := new(uint256.Int).SubOverflow(rewardPerShare, debt)
	if underflow {
		// the accumulator never decreases
		return nil, ErrArithmeticOverflow
	}
	if staked.IsZero() || delta.IsZero() {
		return new(uint256.Int), nil
	}
	pending, overflow := new(uint256.Int).MulDivOverflow(staked, delta, Scale)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return pending, nil
}

// rewardIncrement returns amount * Scale / totalStaked, truncated.
func rewardIncrement(amount, totalStaked *uint256.Int) (*uint256.Int, error) {
	inc, overflow := new(uint256.Int).MulDivOverflow(amount, Scale, totalStaked)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return inc, nil
}
