// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/slots"
)

var (
	slotTotalStaked    = common.BytesToBytes32([]byte("total-staked"))
	slotRewardPerShare = common.BytesToBytes32([]byte("reward-per-share"))
	slotUndistributed  = common.BytesToBytes32([]byte("undistributed"))
	slotDeposited      = common.BytesToBytes32([]byte("total-deposited"))
	slotPaid           = common.BytesToBytes32([]byte("total-paid"))
)

// Service manages pool-wide totals and the reward accumulator.
type Service struct {
	totalStaked    *slots.Uint256
	rewardPerShare *slots.Uint256
	undistributed  *slots.Uint256

	// lifetime counters, informational only
	deposited *slots.Uint256
	paid      *slots.Uint256
}

func New(sctx *slots.Context) *Service {
	return &Service{
		totalStaked:    slots.NewUint256(sctx, slotTotalStaked),
		rewardPerShare: slots.NewUint256(sctx, slotRewardPerShare),
		undistributed:  slots.NewUint256(sctx, slotUndistributed),
		deposited:      slots.NewUint256(sctx, slotDeposited),
		paid:           slots.NewUint256(sctx, slotPaid),
	}
}

// TotalStaked returns the sum of all stakers' stake.
func (s *Service) TotalStaked() (*uint256.Int, error) {
	return s.totalStaked.Get()
}

// RewardPerShare returns the accumulator, scaled.
func (s *Service) RewardPerShare() (*uint256.Int, error) {
	return s.rewardPerShare.Get()
}

// Undistributed returns the reward held in escrow while nothing was staked.
func (s *Service) Undistributed() (*uint256.Int, error) {
	return s.undistributed.Get()
}

// Lifetime returns the total reward ever deposited and paid out.
func (s *Service) Lifetime() (deposited *uint256.Int, paid *uint256.Int, err error) {
	if deposited, err = s.deposited.Get(); err != nil {
		return nil, nil, err
	}
	paid, err = s.paid.Get()
	return
}

func (s *Service) AddStake(amount *uint256.Int) error {
	return s.totalStaked.Add(amount)
}

func (s *Service) RemoveStake(amount *uint256.Int) error {
	return s.totalStaked.Sub(amount)
}

// Distribute advances the accumulator by increment.
func (s *Service) Distribute(increment *uint256.Int) error {
	return s.rewardPerShare.Add(increment)
}

// Escrow holds amount back until there is stake to attribute it to.
func (s *Service) Escrow(amount *uint256.Int) error {
	return s.undistributed.Add(amount)
}

// TakeUndistributed clears the escrow and returns what it held.
func (s *Service) TakeUndistributed() (*uint256.Int, error) {
	held, err := s.undistributed.Get()
	if err != nil {
		return nil, err
	}
	s.undistributed.Set(new(uint256.Int))
	return held, nil
}

// RecordDeposit and RecordPayout saturate instead of failing, since reward
// recycled through the pool can in theory exceed 256 bits over its lifetime.
func (s *Service) RecordDeposit(amount *uint256.Int) error {
	return saturatingAdd(s.deposited, amount)
}

func (s *Service) RecordPayout(amount *uint256.Int) error {
	return saturatingAdd(s.paid, amount)
}

func saturatingAdd(u *slots.Uint256, amount *uint256.Int) error {
	cur, err := u.Get()
	if err != nil {
		return err
	}
	if _, overflow := cur.AddOverflow(cur, amount); overflow {
		cur.SetAllOne()
	}
	u.Set(cur)
	return nil
}
