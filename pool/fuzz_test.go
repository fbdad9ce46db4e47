// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/reverts"
)

type fuzzOp struct {
	Kind   uint8
	Who    uint8
	Amount uint16
}

// checkInvariants verifies conservation of stake and that the pool never owes
// more reward than it holds.
func checkInvariants(t *testing.T, env *testEnv) *uint256.Int {
	sum := new(uint256.Int)
	require.NoError(t, env.pool.Stakers(func(_ common.Address, info *StakerInfo) error {
		sum.Add(sum, info.Staked)
		return nil
	}))
	total, err := env.pool.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, total, sum)

	custody, err := env.ledger.BalanceOf(stk, Address)
	require.NoError(t, err)
	assert.Equal(t, total, custody)

	dust, err := env.pool.RewardDust()
	require.NoError(t, err)
	return dust
}

func TestFuzzOperations(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		var ops []fuzzOp
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(50, 200).Fuzz(&ops)

		policy := PolicyEscrow
		if seed%2 == 0 {
			policy = PolicyReject
		}
		env := newTestEnv(t, Options{ZeroStakePolicy: policy})
		require.NoError(t, env.pool.Initialize(stk, rwd))

		users := []common.Address{owner, alice, bob}
		for _, user := range users {
			require.NoError(t, env.ledger.Mint(stk, user, u(1<<20)))
			require.NoError(t, env.ledger.Mint(rwd, user, u(1<<20)))
			require.NoError(t, env.ledger.Approve(stk, user, Address, maxAmount()))
			require.NoError(t, env.ledger.Approve(rwd, user, Address, maxAmount()))
		}

		// every settlement, every deposit and every current staker's claim may
		// strand less than one unit
		var settlements, deposits uint64
		for _, op := range ops {
			who := users[int(op.Who)%len(users)]
			amount := u(uint64(op.Amount))

			before, err := env.pool.Summary()
			require.NoError(t, err)

			switch op.Kind % 3 {
			case 0:
				err = env.pool.Stake(who, amount)
				if err == nil && before.TotalStaked.Sign() > 0 {
					settlements++
				}
			case 1:
				_, _, err = env.pool.UnstakeAndClaim(who)
				if err == nil {
					settlements++
				}
			case 2:
				err = env.pool.DepositReward(who, amount)
				if err == nil {
					deposits++
				}
			}
			if err != nil {
				require.True(t, reverts.IsRevertErr(err), "seed %d: %v", seed, err)
				after, err := env.pool.Summary()
				require.NoError(t, err)
				assert.Equal(t, before, after)
			}

			dust := checkInvariants(t, env)
			// escrow release at the first stake truncates once more
			bound := settlements + 2*deposits + uint64(len(users))
			assert.LessOrEqual(t, dust.Uint64(), bound, "seed %d", seed)
		}
	}
}

func maxAmount() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}
