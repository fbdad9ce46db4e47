// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements proportional reward distribution over a shared stake.
//
// Every deposit advances a reward-per-share accumulator by amount*Scale/totalStaked.
// A staker is owed stake*(accumulator-debt)/Scale, where debt is the accumulator
// value at the staker's last settlement, plus any reward settled earlier.
package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool/globalstats"
	"github.com/vechain/stakepool/pool/stakers"
	"github.com/vechain/stakepool/slots"
	"github.com/vechain/stakepool/state"
)

var (
	logger = log.WithContext("pkg", "pool")

	// Address is the account holding the pool's storage and custody.
	Address = common.NameToAddress("StakingPool")

	slotConfig = common.BytesToBytes32([]byte("config"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Config is set once by Initialize.
type Config struct {
	StakeAsset  common.Address
	RewardAsset common.Address
}

// Pool implements the reward accounting engine.
// A Pool is not safe for concurrent use; callers serialize access.
type Pool struct {
	addr   common.Address
	state  *state.State
	ledger *ledger.Ledger
	opts   Options

	config             *slots.Value[Config]
	globalStatsService *globalstats.Service
	stakersService     *stakers.Service
}

// New create a new instance.
func New(addr common.Address, state *state.State, ledger *ledger.Ledger, opts Options) *Pool {
	if opts.ZeroStakePolicy == "" {
		opts.ZeroStakePolicy = PolicyEscrow
	}
	sctx := slots.NewContext(addr, state)
	return &Pool{
		addr:   addr,
		state:  state,
		ledger: ledger,
		opts:   opts,

		config:             slots.NewValue[Config](sctx, slotConfig),
		globalStatsService: globalstats.New(sctx),
		stakersService:     stakers.New(sctx),
	}
}

func (p *Pool) Address() common.Address {
	return p.addr
}

// atomic runs fn and reverts every state change made by fn, including
// ledger changes, if it fails.
func (p *Pool) atomic(fn func() error) error {
	revision := p.state.NewCheckpoint()
	if err := fn(); err != nil {
		p.state.RevertTo(revision)
		return err
	}
	return nil
}

func (p *Pool) mustConfig() (Config, error) {
	cfg, ok, err := p.config.Get()
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Config{}, ErrNotInitialized
	}
	return cfg, nil
}

//
// Setters - state change
//

// Initialize sets the stake and reward assets. It may only succeed once.
func (p *Pool) Initialize(stakeAsset, rewardAsset common.Address) error {
	logger.Debug("initializing", "stakeAsset", stakeAsset, "rewardAsset", rewardAsset)

	return p.atomic(func() error {
		_, ok, err := p.config.Get()
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyInitialized
		}
		if stakeAsset.IsZero() || rewardAsset.IsZero() || stakeAsset == rewardAsset {
			return ErrInvalidConfiguration
		}
		if err := p.config.Set(Config{StakeAsset: stakeAsset, RewardAsset: rewardAsset}); err != nil {
			return err
		}
		logger.Info("initialized", "stakeAsset", stakeAsset, "rewardAsset", rewardAsset)
		return nil
	})
}

// Stake settles the staker's pending reward and locks amount of the stake asset,
// pulled from the staker with the pool's allowance.
func (p *Pool) Stake(staker common.Address, amount *uint256.Int) error {
	logger.Debug("staking", "staker", staker, "amount", amount)

	err := p.atomic(func() error {
		if amount.IsZero() {
			return ErrZeroAmount
		}
		cfg, err := p.mustConfig()
		if err != nil {
			return err
		}
		rewardPerShare, err := p.globalStatsService.RewardPerShare()
		if err != nil {
			return err
		}
		totalBefore, err := p.globalStatsService.TotalStaked()
		if err != nil {
			return err
		}

		acc, err := p.stakersService.Get(staker)
		if err != nil {
			return err
		}
		if acc == nil {
			acc = stakers.NewAccount(rewardPerShare)
		}

		pending, err := pendingReward(acc.Staked, rewardPerShare, acc.RewardDebt)
		if err != nil {
			return err
		}
		if _, overflow := acc.Unclaimed.AddOverflow(acc.Unclaimed, pending); overflow {
			return ErrArithmeticOverflow
		}
		acc.RewardDebt.Set(rewardPerShare)
		if _, overflow := acc.Staked.AddOverflow(acc.Staked, amount); overflow {
			return ErrArithmeticOverflow
		}

		if err := p.globalStatsService.AddStake(amount); err != nil {
			return arith(err)
		}
		if err := p.stakersService.Set(staker, acc); err != nil {
			return err
		}
		if err := p.ledger.TransferFrom(cfg.StakeAsset, p.addr, staker, p.addr, amount); err != nil {
			return transferFailed(err)
		}

		if totalBefore.IsZero() {
			// the staker's debt is already based, so the escrow goes to this stake
			return p.releaseEscrow(amount)
		}
		return nil
	})
	if err != nil {
		logger.Info("stake failed", "staker", staker, "error", err)
		return err
	}

	logger.Info("staked", "staker", staker, "amount", amount)
	return nil
}

// releaseEscrow distributes reward held back while the pool was empty.
func (p *Pool) releaseEscrow(totalStaked *uint256.Int) error {
	held, err := p.globalStatsService.TakeUndistributed()
	if err != nil || held.IsZero() {
		return err
	}
	inc, err := rewardIncrement(held, totalStaked)
	if err != nil {
		return err
	}
	if err := p.globalStatsService.Distribute(inc); err != nil {
		return arith(err)
	}
	logger.Debug("released escrow", "amount", held, "increment", inc)
	return nil
}

// UnstakeAndClaim returns the staker's whole stake together with every reward owed,
// and resets the account.
func (p *Pool) UnstakeAndClaim(staker common.Address) (stake *uint256.Int, reward *uint256.Int, err error) {
	logger.Debug("unstaking", "staker", staker)

	err = p.atomic(func() error {
		acc, err := p.stakersService.Get(staker)
		if err != nil {
			return err
		}
		if acc == nil || acc.Staked.IsZero() {
			return ErrNothingStaked
		}
		cfg, err := p.mustConfig()
		if err != nil {
			return err
		}
		rewardPerShare, err := p.globalStatsService.RewardPerShare()
		if err != nil {
			return err
		}

		pending, err := pendingReward(acc.Staked, rewardPerShare, acc.RewardDebt)
		if err != nil {
			return err
		}
		owed, overflow := new(uint256.Int).AddOverflow(acc.Unclaimed, pending)
		if overflow {
			return ErrArithmeticOverflow
		}

		if err := p.globalStatsService.RemoveStake(acc.Staked); err != nil {
			return arith(err)
		}
		if err := p.ledger.Transfer(cfg.StakeAsset, p.addr, staker, acc.Staked); err != nil {
			return transferFailed(err)
		}
		if !owed.IsZero() {
			if err := p.ledger.Transfer(cfg.RewardAsset, p.addr, staker, owed); err != nil {
				return transferFailed(err)
			}
		}
		if err := p.globalStatsService.RecordPayout(owed); err != nil {
			return err
		}
		if err := p.stakersService.Remove(staker); err != nil {
			return err
		}

		stake, reward = acc.Staked, owed
		return nil
	})
	if err != nil {
		logger.Info("unstake failed", "staker", staker, "error", err)
		return nil, nil, err
	}

	logger.Info("unstaked", "staker", staker, "stake", stake, "reward", reward)
	return stake, reward, nil
}

// DepositReward pulls amount of the reward asset from depositor and distributes
// it over the current stake.
func (p *Pool) DepositReward(depositor common.Address, amount *uint256.Int) error {
	logger.Debug("depositing reward", "depositor", depositor, "amount", amount)

	err := p.atomic(func() error {
		if amount.IsZero() {
			return ErrZeroAmount
		}
		cfg, err := p.mustConfig()
		if err != nil {
			return err
		}
		total, err := p.globalStatsService.TotalStaked()
		if err != nil {
			return err
		}

		if total.IsZero() {
			if p.opts.ZeroStakePolicy == PolicyReject {
				return ErrNoStakers
			}
			if err := p.globalStatsService.Escrow(amount); err != nil {
				return arith(err)
			}
			logger.Debug("escrowed reward", "amount", amount)
		} else {
			inc, err := rewardIncrement(amount, total)
			if err != nil {
				return err
			}
			if inc.IsZero() {
				logger.Warn("reward too small to move the accumulator", "amount", amount, "totalStaked", total)
			}
			if err := p.globalStatsService.Distribute(inc); err != nil {
				return arith(err)
			}
		}

		if err := p.ledger.TransferFrom(cfg.RewardAsset, p.addr, depositor, p.addr, amount); err != nil {
			return transferFailed(err)
		}
		return p.globalStatsService.RecordDeposit(amount)
	})
	if err != nil {
		logger.Info("deposit failed", "depositor", depositor, "error", err)
		return err
	}

	logger.Info("deposited reward", "depositor", depositor, "amount", amount)
	return nil
}
