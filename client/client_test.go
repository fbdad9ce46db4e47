// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/engine"
	"github.com/vechain/stakepool/lvldb"
)

var (
	stk   = common.NameToAddress("STK")
	rwd   = common.NameToAddress("RWD")
	owner = common.NameToAddress("owner")
	alice = common.NameToAddress("alice")
	bob   = common.NameToAddress("bob")
)

func newNode(t *testing.T) (*Client, common.Address) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	eng, err := engine.New(db, engine.Options{})
	require.NoError(t, err)

	var level slog.LevelVar
	ts := httptest.NewServer(api.New(eng, api.Options{Faucet: true, LogLevel: &level}))
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})
	return New(ts.URL + "/"), eng.PoolAddress()
}

func TestClient(t *testing.T) {
	c, poolAddr := newNode(t)

	require.NoError(t, c.Initialize(stk, rwd))
	for _, acc := range []common.Address{alice, bob} {
		require.NoError(t, c.Mint(stk, acc, uint256.NewInt(1000)))
		require.NoError(t, c.Approve(stk, acc, poolAddr, uint256.NewInt(1000)))
	}
	require.NoError(t, c.Mint(rwd, owner, uint256.NewInt(100)))
	require.NoError(t, c.Approve(rwd, owner, poolAddr, uint256.NewInt(100)))

	allowance, err := c.Allowance(stk, alice, poolAddr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), allowance)

	require.NoError(t, c.Stake(alice, uint256.NewInt(150)))
	require.NoError(t, c.Stake(bob, uint256.NewInt(50)))
	require.NoError(t, c.DepositReward(owner, uint256.NewInt(100)))

	total, err := c.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(200), total)

	staker, err := c.Staker(alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(75), staker.Claimable)

	stakers, err := c.Stakers()
	require.NoError(t, err)
	assert.Len(t, stakers, 2)

	res, err := c.UnstakeAndClaim(alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(150), res.Stake)
	assert.Equal(t, uint256.NewInt(75), res.Reward)

	res, err = c.UnstakeAndClaim(bob)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(25), res.Reward)

	balance, err := c.Balance(rwd, alice)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(75), balance)

	supply, err := c.TotalSupply(stk)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(2000), supply)

	dust, err := c.Dust()
	require.NoError(t, err)
	assert.True(t, dust.IsZero())

	summary, err := c.Pool()
	require.NoError(t, err)
	assert.True(t, summary.Initialized)
	assert.Equal(t, uint256.NewInt(100), summary.TotalPaid)

	require.NoError(t, c.Transfer(rwd, alice, bob, uint256.NewInt(5)))

	level, err := c.SetLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, "warn", level)
	level, err = c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, "warn", level)
}

func TestClientReverts(t *testing.T) {
	c, _ := newNode(t)

	err := c.Stake(alice, uint256.NewInt(1))
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.NotEmpty(t, se.Message)
	assert.True(t, errors.Is(err, ErrNot200Status))
	assert.False(t, errors.Is(err, ErrNotFound))

	require.NoError(t, c.Initialize(stk, rwd))
	err = c.Initialize(stk, rwd)
	assert.ErrorIs(t, err, ErrNot200Status)

	_, err = c.UnstakeAndClaim(alice)
	assert.ErrorIs(t, err, ErrNot200Status)
}

func TestClientErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pool":
			w.Write([]byte("not json"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	c := New(ts.URL)

	_, err := c.Pool()
	assert.ErrorContains(t, err, "unable to unmarshal response")

	_, err = c.TotalStaked()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = New("http://127.0.0.1:0").Pool()
	assert.ErrorContains(t, err, "error performing request")
}
