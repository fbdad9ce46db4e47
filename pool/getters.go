// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/pool/stakers"
)

// Summary is a snapshot of the pool aggregate.
type Summary struct {
	Initialized    bool
	StakeAsset     common.Address
	RewardAsset    common.Address
	TotalStaked    *uint256.Int
	RewardPerShare *uint256.Int
	Undistributed  *uint256.Int
	TotalDeposited *uint256.Int
	TotalPaid      *uint256.Int
	StakerCount    uint64
}

// StakerInfo is a snapshot of one staker, with the reward it would receive if it unstaked now.
type StakerInfo struct {
	Staked     *uint256.Int
	RewardDebt *uint256.Int
	Unclaimed  *uint256.Int
	Claimable  *uint256.Int
}

// TotalStaked returns the sum of every staker's stake.
func (p *Pool) TotalStaked() (*uint256.Int, error) {
	return p.globalStatsService.TotalStaked()
}

// Config returns the assets set by Initialize, or ErrNotInitialized.
func (p *Pool) Config() (Config, error) {
	return p.mustConfig()
}

func (p *Pool) Summary() (*Summary, error) {
	cfg, ok, err := p.config.Get()
	if err != nil {
		return nil, err
	}
	total, err := p.globalStatsService.TotalStaked()
	if err != nil {
		return nil, err
	}
	rewardPerShare, err := p.globalStatsService.RewardPerShare()
	if err != nil {
		return nil, err
	}
	undistributed, err := p.globalStatsService.Undistributed()
	if err != nil {
		return nil, err
	}
	deposited, paid, err := p.globalStatsService.Lifetime()
	if err != nil {
		return nil, err
	}
	count, err := p.stakersService.Count()
	if err != nil {
		return nil, err
	}

	return &Summary{
		Initialized:    ok,
		StakeAsset:     cfg.StakeAsset,
		RewardAsset:    cfg.RewardAsset,
		TotalStaked:    total,
		RewardPerShare: rewardPerShare,
		Undistributed:  undistributed,
		TotalDeposited: deposited,
		TotalPaid:      paid,
		StakerCount:    count,
	}, nil
}

func (p *Pool) stakerInfo(acc *stakers.Account, rewardPerShare *uint256.Int) (*StakerInfo, error) {
	pending, err := pendingReward(acc.Staked, rewardPerShare, acc.RewardDebt)
	if err != nil {
		return nil, err
	}
	claimable, overflow := new(uint256.Int).AddOverflow(acc.Unclaimed, pending)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return &StakerInfo{
		Staked:     acc.Staked,
		RewardDebt: acc.RewardDebt,
		Unclaimed:  acc.Unclaimed,
		Claimable:  claimable,
	}, nil
}

// Staker returns the state of a staker. A staker without an account is
// reported as the account it would start from.
func (p *Pool) Staker(staker common.Address) (*StakerInfo, error) {
	rewardPerShare, err := p.globalStatsService.RewardPerShare()
	if err != nil {
		return nil, err
	}
	acc, err := p.stakersService.Get(staker)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = stakers.NewAccount(rewardPerShare)
	}
	return p.stakerInfo(acc, rewardPerShare)
}

// Stakers calls fn for each staker holding stake, in the order they joined.
func (p *Pool) Stakers(fn func(common.Address, *StakerInfo) error) error {
	rewardPerShare, err := p.globalStatsService.RewardPerShare()
	if err != nil {
		return err
	}
	return p.stakersService.Iter(func(addr common.Address, acc *stakers.Account) error {
		info, err := p.stakerInfo(acc, rewardPerShare)
		if err != nil {
			return err
		}
		return fn(addr, info)
	})
}

// RewardDust returns the reward custodied by the pool that no staker will ever
// receive: the pool's reward balance minus every claimable reward and the escrow.
func (p *Pool) RewardDust() (*uint256.Int, error) {
	cfg, err := p.mustConfig()
	if err != nil {
		return nil, err
	}
	balance, err := p.ledger.BalanceOf(cfg.RewardAsset, p.addr)
	if err != nil {
		return nil, err
	}
	undistributed, err := p.globalStatsService.Undistributed()
	if err != nil {
		return nil, err
	}

	owed := new(uint256.Int).Set(undistributed)
	if err := p.Stakers(func(_ common.Address, info *StakerInfo) error {
		owed.Add(owed, info.Claimable)
		return nil
	}); err != nil {
		return nil, err
	}

	dust, underflow := new(uint256.Int).SubOverflow(balance, owed)
	if underflow {
		return nil, errors.Errorf("pool owes %s but holds %s", owed.Dec(), balance.Dec())
	}
	return dust, nil
}
