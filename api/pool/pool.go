// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/engine"
)

type Pool struct {
	engine *engine.Engine
}

func New(engine *engine.Engine) *Pool {
	return &Pool{engine: engine}
}

func (p *Pool) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	summary, err := p.engine.Pool()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSummary(p.engine.PoolAddress(), summary))
}

func (p *Pool) handleGetTotalStaked(w http.ResponseWriter, _ *http.Request) error {
	total, err := p.engine.TotalStaked()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &TotalStaked{Supply: total})
}

func (p *Pool) handleGetDust(w http.ResponseWriter, _ *http.Request) error {
	dust, err := p.engine.RewardDust()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Dust{Dust: dust})
}

func (p *Pool) handleGetStakers(w http.ResponseWriter, _ *http.Request) error {
	entries, err := p.engine.Stakers()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStakers(entries))
}

func (p *Pool) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	info, err := p.engine.Staker(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStaker(addr, info))
}

func (p *Pool) handleInitialize(w http.ResponseWriter, req *http.Request) error {
	var body InitializeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.StakeAsset == nil || body.RewardAsset == nil {
		return utils.BadRequest(errors.New("body: stakeAsset and rewardAsset are required"))
	}
	if err := p.engine.Initialize(*body.StakeAsset, *body.RewardAsset); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Result{Success: true})
}

func (p *Pool) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Staker == nil {
		return utils.BadRequest(errors.New("body: staker is required"))
	}
	if err := p.engine.Stake(*body.Staker, amountOrZero(body.Amount)); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Result{Success: true})
}

func (p *Pool) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Staker == nil {
		return utils.BadRequest(errors.New("body: staker is required"))
	}
	stake, reward, err := p.engine.UnstakeAndClaim(*body.Staker)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &UnstakeResult{Success: true, Stake: stake, Reward: reward})
}

func (p *Pool) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Depositor == nil {
		return utils.BadRequest(errors.New("body: depositor is required"))
	}
	if err := p.engine.DepositReward(*body.Depositor, amountOrZero(body.Amount)); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Result{Success: true})
}

// amountOrZero lets a missing amount reach the engine, which rejects it as ZeroAmount.
func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("pool_get_summary").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetSummary))
	sub.Path("/total-staked").
		Methods(http.MethodGet).
		Name("pool_get_total_staked").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetTotalStaked))
	sub.Path("/dust").
		Methods(http.MethodGet).
		Name("pool_get_dust").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetDust))
	sub.Path("/stakers").
		Methods(http.MethodGet).
		Name("pool_get_stakers").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStakers))
	sub.Path("/stakers/{address}").
		Methods(http.MethodGet).
		Name("pool_get_staker").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStaker))
	sub.Path("/initialize").
		Methods(http.MethodPost).
		Name("pool_initialize").
		HandlerFunc(utils.WrapHandlerFunc(p.handleInitialize))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("pool_stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("pool_unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
	sub.Path("/rewards").
		Methods(http.MethodPost).
		Name("pool_deposit_reward").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDeposit))
}
