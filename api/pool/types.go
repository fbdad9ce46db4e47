// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/engine"
	"github.com/vechain/stakepool/pool"
)

type Summary struct {
	Address        common.Address  `json:"address"`
	Initialized    bool            `json:"initialized"`
	StakeAsset     *common.Address `json:"stakeAsset"`
	RewardAsset    *common.Address `json:"rewardAsset"`
	TotalStaked    *uint256.Int    `json:"totalStaked"`
	RewardPerShare *uint256.Int    `json:"rewardPerShare"`
	Undistributed  *uint256.Int    `json:"undistributed"`
	TotalDeposited *uint256.Int    `json:"totalDeposited"`
	TotalPaid      *uint256.Int    `json:"totalPaid"`
	Stakers        uint64          `json:"stakers"`
}

func convertSummary(addr common.Address, s *pool.Summary) *Summary {
	out := &Summary{
		Address:        addr,
		Initialized:    s.Initialized,
		TotalStaked:    s.TotalStaked,
		RewardPerShare: s.RewardPerShare,
		Undistributed:  s.Undistributed,
		TotalDeposited: s.TotalDeposited,
		TotalPaid:      s.TotalPaid,
		Stakers:        s.StakerCount,
	}
	if s.Initialized {
		stake, reward := s.StakeAsset, s.RewardAsset
		out.StakeAsset = &stake
		out.RewardAsset = &reward
	}
	return out
}

type TotalStaked struct {
	Supply *uint256.Int `json:"supply"`
}

type Dust struct {
	Dust *uint256.Int `json:"dust"`
}

type Staker struct {
	Address    common.Address `json:"address"`
	Staked     *uint256.Int   `json:"staked"`
	RewardDebt *uint256.Int   `json:"rewardDebt"`
	Unclaimed  *uint256.Int   `json:"unclaimed"`
	Claimable  *uint256.Int   `json:"claimable"`
}

func convertStaker(addr common.Address, info *pool.StakerInfo) *Staker {
	return &Staker{
		Address:    addr,
		Staked:     info.Staked,
		RewardDebt: info.RewardDebt,
		Unclaimed:  info.Unclaimed,
		Claimable:  info.Claimable,
	}
}

func convertStakers(entries []engine.StakerEntry) []*Staker {
	out := make([]*Staker, 0, len(entries))
	for _, e := range entries {
		out = append(out, convertStaker(e.Address, e.Info))
	}
	return out
}

type InitializeRequest struct {
	StakeAsset  *common.Address `json:"stakeAsset"`
	RewardAsset *common.Address `json:"rewardAsset"`
}

type StakeRequest struct {
	Staker *common.Address `json:"staker"`
	Amount *uint256.Int    `json:"amount"`
}

type UnstakeRequest struct {
	Staker *common.Address `json:"staker"`
}

type DepositRequest struct {
	Depositor *common.Address `json:"depositor"`
	Amount    *uint256.Int    `json:"amount"`
}

type Result struct {
	Success bool `json:"success"`
}

type UnstakeResult struct {
	Success bool         `json:"success"`
	Stake   *uint256.Int `json:"stake"`
	Reward  *uint256.Int `json:"reward"`
}
