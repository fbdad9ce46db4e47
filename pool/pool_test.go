// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/reverts"
	"github.com/vechain/stakepool/state"
)

var (
	stk   = common.NameToAddress("STK")
	rwd   = common.NameToAddress("RWD")
	owner = common.NameToAddress("owner")
	alice = common.NameToAddress("alice")
	bob   = common.NameToAddress("bob")
)

type testEnv struct {
	t      *testing.T
	state  *state.State
	ledger *ledger.Ledger
	pool   *Pool
}

func u(n uint64) *uint256.Int { return uint256.NewInt(n) }

// newTestEnv mirrors the usual setup: 1000 of each asset minted to owner,
// 100 stake handed to alice and bob, and everybody approved the pool for 1000.
func newTestEnv(t *testing.T, opts Options) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st, err := state.New(db, 0)
	require.NoError(t, err)

	l := ledger.New(ledger.Address, st)
	env := &testEnv{t: t, state: st, ledger: l, pool: New(Address, st, l, opts)}

	require.NoError(t, l.Mint(stk, owner, u(1000)))
	require.NoError(t, l.Mint(rwd, owner, u(1000)))
	require.NoError(t, l.Transfer(stk, owner, alice, u(100)))
	require.NoError(t, l.Transfer(stk, owner, bob, u(100)))
	for _, acc := range []common.Address{owner, alice, bob} {
		require.NoError(t, l.Approve(stk, acc, Address, u(1000)))
	}
	require.NoError(t, l.Approve(rwd, owner, Address, u(1000)))
	return env
}

func newInitializedEnv(t *testing.T) *testEnv {
	env := newTestEnv(t, Options{})
	require.NoError(t, env.pool.Initialize(stk, rwd))
	return env
}

func (e *testEnv) balance(asset, account common.Address) uint64 {
	b, err := e.ledger.BalanceOf(asset, account)
	require.NoError(e.t, err)
	return b.Uint64()
}

func (e *testEnv) totalStaked() uint64 {
	total, err := e.pool.TotalStaked()
	require.NoError(e.t, err)
	return total.Uint64()
}

func (e *testEnv) unstake(staker common.Address) (uint64, uint64) {
	stake, reward, err := e.pool.UnstakeAndClaim(staker)
	require.NoError(e.t, err)
	return stake.Uint64(), reward.Uint64()
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.pool.Config()
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, env.pool.Initialize(stk, stk), ErrInvalidConfiguration)
	assert.ErrorIs(t, env.pool.Initialize(common.Address{}, rwd), ErrInvalidConfiguration)

	require.NoError(t, env.pool.Initialize(stk, rwd))
	err = env.pool.Initialize(stk, rwd)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.True(t, reverts.IsRevertErr(err))

	cfg, err := env.pool.Config()
	require.NoError(t, err)
	assert.Equal(t, Config{StakeAsset: stk, RewardAsset: rwd}, cfg)

	summary, err := env.pool.Summary()
	require.NoError(t, err)
	assert.True(t, summary.Initialized)
	assert.True(t, summary.TotalStaked.IsZero())
	assert.True(t, summary.RewardPerShare.IsZero())
}

func TestNotInitialized(t *testing.T) {
	env := newTestEnv(t, Options{})

	assert.ErrorIs(t, env.pool.Stake(alice, u(10)), ErrNotInitialized)
	assert.ErrorIs(t, env.pool.DepositReward(owner, u(10)), ErrNotInitialized)
	// a zero amount is rejected before the pool state is read
	assert.ErrorIs(t, env.pool.Stake(alice, u(0)), ErrZeroAmount)
	assert.ErrorIs(t, env.pool.DepositReward(owner, u(0)), ErrZeroAmount)
	_, _, err := env.pool.UnstakeAndClaim(alice)
	assert.ErrorIs(t, err, ErrNothingStaked)
	assert.Equal(t, uint64(100), env.balance(stk, alice))
}

func TestStake(t *testing.T) {
	env := newInitializedEnv(t)

	assert.Equal(t, uint64(0), env.totalStaked())
	require.NoError(t, env.pool.Stake(alice, u(10)))
	assert.Equal(t, uint64(90), env.balance(stk, alice))
	assert.Equal(t, uint64(10), env.balance(stk, Address))
	assert.Equal(t, uint64(10), env.totalStaked())

	allowance, err := env.ledger.Allowance(stk, alice, Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), allowance.Uint64())

	assert.ErrorIs(t, env.pool.Stake(alice, u(0)), ErrZeroAmount)
}

func TestDepositAndClaim(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.Stake(alice, u(10)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))
	assert.Equal(t, uint64(900), env.balance(rwd, owner))
	assert.Equal(t, uint64(100), env.balance(rwd, Address))

	info, err := env.pool.Staker(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), info.Claimable.Uint64())

	stake, reward := env.unstake(alice)
	assert.Equal(t, uint64(10), stake)
	assert.Equal(t, uint64(100), reward)
	assert.Equal(t, uint64(100), env.balance(rwd, alice))
	assert.Equal(t, uint64(100), env.balance(stk, alice))
	assert.Equal(t, uint64(0), env.totalStaked())

	// no double claim
	_, _, err = env.pool.UnstakeAndClaim(alice)
	assert.ErrorIs(t, err, ErrNothingStaked)
	assert.Equal(t, uint64(100), env.balance(rwd, alice))

	assert.ErrorIs(t, env.pool.DepositReward(owner, u(0)), ErrZeroAmount)
}

func TestProportionalRewards(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.Stake(alice, u(1)))
	require.NoError(t, env.pool.Stake(bob, u(4)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))

	_, rewardA := env.unstake(alice)
	_, rewardB := env.unstake(bob)
	assert.Equal(t, uint64(20), rewardA)
	assert.Equal(t, uint64(80), rewardB)

	dust, err := env.pool.RewardDust()
	require.NoError(t, err)
	assert.True(t, dust.IsZero())
}

func TestProportionalRewardsOverTime(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.Stake(alice, u(1)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))
	require.NoError(t, env.pool.Stake(bob, u(1)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))

	_, rewardA := env.unstake(alice)
	_, rewardB := env.unstake(bob)
	assert.Equal(t, uint64(150), rewardA)
	assert.Equal(t, uint64(50), rewardB)
	assert.Equal(t, uint64(150), env.balance(rwd, alice))
	assert.Equal(t, uint64(50), env.balance(rwd, bob))
}

func TestRestakeSettlesPending(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.Stake(alice, u(1)))
	require.NoError(t, env.pool.Stake(bob, u(1)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))

	// alice's 50 must survive the debt re-base
	require.NoError(t, env.pool.Stake(alice, u(2)))
	info, err := env.pool.Staker(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), info.Unclaimed.Uint64())
	assert.Equal(t, uint64(50), info.Claimable.Uint64())

	require.NoError(t, env.pool.DepositReward(owner, u(100)))
	_, rewardA := env.unstake(alice)
	_, rewardB := env.unstake(bob)
	assert.Equal(t, uint64(50+75), rewardA)
	assert.Equal(t, uint64(50+25), rewardB)
}

func TestRestakeEquivalence(t *testing.T) {
	split := newInitializedEnv(t)
	require.NoError(t, split.pool.Stake(alice, u(3)))
	require.NoError(t, split.pool.Stake(alice, u(4)))
	require.NoError(t, split.pool.Stake(bob, u(5)))
	require.NoError(t, split.pool.DepositReward(owner, u(97)))

	single := newInitializedEnv(t)
	require.NoError(t, single.pool.Stake(alice, u(7)))
	require.NoError(t, single.pool.Stake(bob, u(5)))
	require.NoError(t, single.pool.DepositReward(owner, u(97)))

	stakeSplit, rewardSplit := split.unstake(alice)
	stakeSingle, rewardSingle := single.unstake(alice)
	assert.Equal(t, stakeSingle, stakeSplit)
	assert.Equal(t, rewardSingle, rewardSplit)
}

func TestRoundingDust(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.Stake(alice, u(1)))
	require.NoError(t, env.pool.Stake(bob, u(2)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))

	_, rewardA := env.unstake(alice)
	_, rewardB := env.unstake(bob)
	assert.Equal(t, uint64(33), rewardA)
	assert.Equal(t, uint64(66), rewardB)

	dust, err := env.pool.RewardDust()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), dust.Uint64())
	assert.Equal(t, uint64(1), env.balance(rwd, Address))
}

func TestStakeTransferFailedRollsBack(t *testing.T) {
	env := newInitializedEnv(t)
	require.NoError(t, env.pool.Stake(bob, u(5)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))
	before, err := env.pool.Summary()
	require.NoError(t, err)

	// more than alice holds
	err = env.pool.Stake(alice, u(101))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// more than alice approved
	require.NoError(t, env.ledger.Approve(stk, alice, Address, u(1)))
	err = env.pool.Stake(alice, u(2))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.ErrorIs(t, err, ledger.ErrInsufficientAllowance)

	after, err := env.pool.Summary()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	acc, err := env.pool.stakersService.Get(alice)
	require.NoError(t, err)
	assert.Nil(t, acc)
	assert.Equal(t, uint64(100), env.balance(stk, alice))
}

func TestDepositTransferFailedRollsBack(t *testing.T) {
	env := newInitializedEnv(t)
	require.NoError(t, env.pool.Stake(alice, u(5)))

	err := env.pool.DepositReward(alice, u(10))
	assert.ErrorIs(t, err, ErrTransferFailed)

	rewardPerShare, err := env.pool.globalStatsService.RewardPerShare()
	require.NoError(t, err)
	assert.True(t, rewardPerShare.IsZero())
}

func TestUnstakeTransferFailedRollsBack(t *testing.T) {
	env := newInitializedEnv(t)
	require.NoError(t, env.pool.Stake(alice, u(5)))
	require.NoError(t, env.pool.DepositReward(owner, u(100)))

	// drain the pool's reward custody behind its back
	require.NoError(t, env.ledger.Transfer(rwd, Address, owner, u(100)))

	_, _, err := env.pool.UnstakeAndClaim(alice)
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// the stake transfer that preceded the failure is undone too
	assert.Equal(t, uint64(95), env.balance(stk, alice))
	assert.Equal(t, uint64(5), env.balance(stk, Address))
	assert.Equal(t, uint64(5), env.totalStaked())
	info, err := env.pool.Staker(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), info.Claimable.Uint64())
}

func TestZeroStakeEscrow(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.DepositReward(owner, u(60)))
	summary, err := env.pool.Summary()
	require.NoError(t, err)
	assert.Equal(t, uint64(60), summary.Undistributed.Uint64())
	assert.True(t, summary.RewardPerShare.IsZero())
	assert.Equal(t, uint64(60), env.balance(rwd, Address))

	dust, err := env.pool.RewardDust()
	require.NoError(t, err)
	assert.True(t, dust.IsZero())

	// the first stake picks up the escrow, later ones do not
	require.NoError(t, env.pool.Stake(alice, u(3)))
	require.NoError(t, env.pool.Stake(bob, u(3)))
	summary, err = env.pool.Summary()
	require.NoError(t, err)
	assert.True(t, summary.Undistributed.IsZero())

	_, rewardA := env.unstake(alice)
	_, rewardB := env.unstake(bob)
	assert.Equal(t, uint64(60), rewardA)
	assert.Equal(t, uint64(0), rewardB)
}

func TestZeroStakeEscrowAfterEmptied(t *testing.T) {
	env := newInitializedEnv(t)

	require.NoError(t, env.pool.Stake(alice, u(1)))
	env.unstake(alice)
	require.NoError(t, env.pool.DepositReward(owner, u(10)))
	require.NoError(t, env.pool.Stake(bob, u(7)))

	_, reward := env.unstake(bob)
	// 10e18/7 truncates, so bob is one unit short
	assert.Equal(t, uint64(9), reward)
	dust, err := env.pool.RewardDust()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), dust.Uint64())
}

func TestZeroStakeReject(t *testing.T) {
	env := newTestEnv(t, Options{ZeroStakePolicy: PolicyReject})
	require.NoError(t, env.pool.Initialize(stk, rwd))

	err := env.pool.DepositReward(owner, u(60))
	assert.ErrorIs(t, err, ErrNoStakers)
	assert.Equal(t, uint64(1000), env.balance(rwd, owner))
	assert.Equal(t, uint64(0), env.balance(rwd, Address))
}

func TestLargeAmounts(t *testing.T) {
	env := newInitializedEnv(t)
	big := common.MustParseAmount("1000000000000000000000000000000000000000000000000000000000000000000000")

	require.NoError(t, env.ledger.Mint(stk, alice, big))
	require.NoError(t, env.ledger.Mint(rwd, owner, big))
	require.NoError(t, env.ledger.Approve(stk, alice, Address, big))
	require.NoError(t, env.ledger.Approve(rwd, owner, Address, big))

	// stake*Scale no longer fits 256 bits, the 512-bit intermediate keeps it exact
	require.NoError(t, env.pool.Stake(alice, big))
	require.NoError(t, env.pool.DepositReward(owner, big))
	stake, reward, err := env.pool.UnstakeAndClaim(alice)
	require.NoError(t, err)
	assert.Equal(t, big, stake)
	assert.Equal(t, big, reward)
}

func TestDepositOverflow(t *testing.T) {
	env := newInitializedEnv(t)
	require.NoError(t, env.pool.Stake(alice, u(1)))

	max := new(uint256.Int).SetAllOne()
	require.NoError(t, env.ledger.Mint(rwd, bob, new(uint256.Int).Sub(max, u(1000))))
	require.NoError(t, env.ledger.Approve(rwd, bob, Address, max))

	// max * Scale / 1 exceeds 256 bits
	err := env.pool.DepositReward(bob, u(1<<62))
	require.NoError(t, err)
	err = env.pool.DepositReward(bob, new(uint256.Int).Rsh(max, 1))
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestStakers(t *testing.T) {
	env := newInitializedEnv(t)
	require.NoError(t, env.pool.Stake(bob, u(2)))
	require.NoError(t, env.pool.Stake(alice, u(1)))

	var seen []common.Address
	require.NoError(t, env.pool.Stakers(func(addr common.Address, info *StakerInfo) error {
		seen = append(seen, addr)
		return nil
	}))
	assert.Equal(t, []common.Address{bob, alice}, seen)

	summary, err := env.pool.Summary()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), summary.StakerCount)

	info, err := env.pool.Staker(owner)
	require.NoError(t, err)
	assert.True(t, info.Staked.IsZero())
	assert.True(t, info.Claimable.IsZero())
}

func TestParseZeroStakePolicy(t *testing.T) {
	p, err := ParseZeroStakePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyEscrow, p)

	p, err = ParseZeroStakePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	_, err = ParseZeroStakePolicy("burn")
	assert.Error(t, err)
}
