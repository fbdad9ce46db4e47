// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine serializes pool and ledger operations and makes each
// successful one durable before the next begins.
package engine

import (
	"math"
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/reverts"
	"github.com/vechain/stakepool/state"
)

var (
	logger = log.WithContext("pkg", "engine")

	metricOperations  = metrics.LazyLoadCounterVec("pool_operations_count", []string{"kind", "outcome"})
	metricTotalStaked = metrics.LazyLoadGauge("pool_total_staked")
	metricStakers     = metrics.LazyLoadGauge("pool_stakers")

	ErrReservedAccount = reverts.New("account is reserved by the pool")
)

const (
	stateBucket = kv.Bucket("s")
	metaBucket  = kv.Bucket("m")

	// schemaVersion is bumped whenever the stored layout changes incompatibly.
	schemaVersion = 1
)

var schemaVersionKey = []byte("schema-version")

type Options struct {
	CacheSize int
	Pool      pool.Options
}

// Engine owns the state and runs one operation at a time.
type Engine struct {
	mu     sync.Mutex
	state  *state.State
	ledger *ledger.Ledger
	pool   *pool.Pool
}

// New creates an engine over store. Existing pool and ledger data in store is picked up.
func New(store kv.Store, opts Options) (*Engine, error) {
	if err := checkSchema(metaBucket.NewStore(store)); err != nil {
		return nil, err
	}
	st, err := state.New(stateBucket.NewStore(store), opts.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create state")
	}
	l := ledger.New(ledger.Address, st)
	e := &Engine{
		state:  st,
		ledger: l,
		pool:   pool.New(pool.Address, st, l, opts.Pool),
	}
	e.updateGauges()
	return e, nil
}

// checkSchema stamps an empty store with the current schema version, and
// refuses a store written with another one.
func checkSchema(meta kv.Store) error {
	val, err := meta.Get(schemaVersionKey)
	if err != nil {
		if !meta.IsNotFound(err) {
			return errors.Wrap(err, "read schema version")
		}
		logger.Debug("stamping new store", "schema", schemaVersion)
		return errors.Wrap(meta.Put(schemaVersionKey, []byte{schemaVersion}), "write schema version")
	}
	if len(val) != 1 || val[0] != schemaVersion {
		return errors.Errorf("unsupported schema version %x, want %d", val, schemaVersion)
	}
	return nil
}

func (e *Engine) PoolAddress() common.Address {
	return e.pool.Address()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case reverts.IsRevertErr(err):
		return "revert"
	default:
		return "error"
	}
}

// write runs fn under the lock and commits its changes. Any failure, including
// a failed commit, discards every change fn made.
func (e *Engine) write(kind string, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := fn()
	if err == nil {
		if err = e.state.Commit(); err != nil {
			logger.Error("failed to commit", "kind", kind, "err", err)
			err = errors.Wrap(err, "commit")
		}
	}
	if err != nil {
		e.state.Discard()
	}
	metricOperations().AddWithLabel(1, map[string]string{"kind": kind, "outcome": outcome(err)})
	if err == nil {
		e.updateGauges()
	}
	return err
}

func (e *Engine) read(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

func (e *Engine) updateGauges() {
	summary, err := e.pool.Summary()
	if err != nil {
		logger.Warn("failed to read pool summary", "err", err)
		return
	}
	total := int64(math.MaxInt64)
	if summary.TotalStaked.IsUint64() && summary.TotalStaked.Uint64() <= math.MaxInt64 {
		total = int64(summary.TotalStaked.Uint64())
	}
	metricTotalStaked().Set(total)
	metricStakers().Set(int64(summary.StakerCount))
}

func (e *Engine) reserved(addrs ...common.Address) error {
	for _, a := range addrs {
		if a == e.pool.Address() {
			return ErrReservedAccount
		}
	}
	return nil
}

//
// Pool
//

func (e *Engine) Initialize(stakeAsset, rewardAsset common.Address) error {
	return e.write("initialize", func() error {
		return e.pool.Initialize(stakeAsset, rewardAsset)
	})
}

func (e *Engine) Stake(staker common.Address, amount *uint256.Int) error {
	return e.write("stake", func() error {
		return e.pool.Stake(staker, amount)
	})
}

// UnstakeAndClaim returns the stake and reward paid to staker.
func (e *Engine) UnstakeAndClaim(staker common.Address) (stake *uint256.Int, reward *uint256.Int, err error) {
	err = e.write("unstake", func() error {
		stake, reward, err = e.pool.UnstakeAndClaim(staker)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return stake, reward, nil
}

func (e *Engine) DepositReward(depositor common.Address, amount *uint256.Int) error {
	return e.write("deposit", func() error {
		return e.pool.DepositReward(depositor, amount)
	})
}

func (e *Engine) TotalStaked() (total *uint256.Int, err error) {
	err = e.read(func() error {
		total, err = e.pool.TotalStaked()
		return err
	})
	return
}

func (e *Engine) Pool() (summary *pool.Summary, err error) {
	err = e.read(func() error {
		summary, err = e.pool.Summary()
		return err
	})
	return
}

func (e *Engine) Staker(staker common.Address) (info *pool.StakerInfo, err error) {
	err = e.read(func() error {
		info, err = e.pool.Staker(staker)
		return err
	})
	return
}

// StakerEntry pairs a staker with its state.
type StakerEntry struct {
	Address common.Address
	Info    *pool.StakerInfo
}

// Stakers lists every staker holding stake, in the order they joined.
func (e *Engine) Stakers() (entries []StakerEntry, err error) {
	err = e.read(func() error {
		return e.pool.Stakers(func(addr common.Address, info *pool.StakerInfo) error {
			entries = append(entries, StakerEntry{Address: addr, Info: info})
			return nil
		})
	})
	return
}

func (e *Engine) RewardDust() (dust *uint256.Int, err error) {
	err = e.read(func() error {
		dust, err = e.pool.RewardDust()
		return err
	})
	return
}

//
// Ledger
//

func (e *Engine) TotalSupply(asset common.Address) (supply *uint256.Int, err error) {
	err = e.read(func() error {
		supply, err = e.ledger.TotalSupply(asset)
		return err
	})
	return
}

func (e *Engine) BalanceOf(asset, account common.Address) (balance *uint256.Int, err error) {
	err = e.read(func() error {
		balance, err = e.ledger.BalanceOf(asset, account)
		return err
	})
	return
}

func (e *Engine) Allowance(asset, owner, spender common.Address) (remaining *uint256.Int, err error) {
	err = e.read(func() error {
		remaining, err = e.ledger.Allowance(asset, owner, spender)
		return err
	})
	return
}

// Approve lets spender move up to amount of owner's asset. The pool cannot grant allowances.
func (e *Engine) Approve(asset, owner, spender common.Address, amount *uint256.Int) error {
	return e.write("approve", func() error {
		if err := e.reserved(owner); err != nil {
			return err
		}
		return e.ledger.Approve(asset, owner, spender, amount)
	})
}

// Transfer moves asset between accounts other than the pool, whose custody
// must only change through pool operations.
func (e *Engine) Transfer(asset, from, to common.Address, amount *uint256.Int) error {
	return e.write("transfer", func() error {
		if err := e.reserved(from, to); err != nil {
			return err
		}
		return e.ledger.Transfer(asset, from, to, amount)
	})
}

func (e *Engine) Mint(asset, to common.Address, amount *uint256.Int) error {
	return e.write("mint", func() error {
		if err := e.reserved(to); err != nil {
			return err
		}
		return e.ledger.Mint(asset, to, amount)
	})
}
