// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assets

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/engine"
)

type Assets struct {
	engine *engine.Engine
	faucet bool
}

// New creates the asset ledger api. Minting is only served when faucet is set.
func New(engine *engine.Engine, faucet bool) *Assets {
	return &Assets{
		engine: engine,
		faucet: faucet,
	}
}

func (a *Assets) handleGetSupply(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	supply, err := a.engine.TotalSupply(asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Supply{TotalSupply: supply})
}

func (a *Assets) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	account, err := utils.AddressVar(req, "account")
	if err != nil {
		return err
	}
	balance, err := a.engine.BalanceOf(asset, account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Balance: balance})
}

func (a *Assets) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	owner, err := utils.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(req, "spender")
	if err != nil {
		return err
	}
	remaining, err := a.engine.Allowance(asset, owner, spender)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{Remaining: remaining})
}

func (a *Assets) handleApprove(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Owner == nil || body.Spender == nil || body.Amount == nil {
		return utils.BadRequest(errors.New("body: owner, spender and amount are required"))
	}
	if err := a.engine.Approve(asset, *body.Owner, *body.Spender, body.Amount); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Result{Success: true})
}

func (a *Assets) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.From == nil || body.To == nil {
		return utils.BadRequest(errors.New("body: from and to are required"))
	}
	if err := a.engine.Transfer(asset, *body.From, *body.To, amountOrZero(body.Amount)); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Result{Success: true})
}

func (a *Assets) handleMint(w http.ResponseWriter, req *http.Request) error {
	if !a.faucet {
		return utils.Forbidden(errors.New("faucet is disabled"))
	}
	asset, err := utils.AddressVar(req, "asset")
	if err != nil {
		return err
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("body: to is required"))
	}
	if err := a.engine.Mint(asset, *body.To, amountOrZero(body.Amount)); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Result{Success: true})
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func (a *Assets) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{asset}").
		Methods(http.MethodGet).
		Name("assets_get_supply").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetSupply))
	sub.Path("/{asset}/balances/{account}").
		Methods(http.MethodGet).
		Name("assets_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetBalance))
	sub.Path("/{asset}/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("assets_get_allowance").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAllowance))
	sub.Path("/{asset}/approve").
		Methods(http.MethodPost).
		Name("assets_approve").
		HandlerFunc(utils.WrapHandlerFunc(a.handleApprove))
	sub.Path("/{asset}/transfer").
		Methods(http.MethodPost).
		Name("assets_transfer").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/{asset}/mint").
		Methods(http.MethodPost).
		Name("assets_mint").
		HandlerFunc(utils.WrapHandlerFunc(a.handleMint))
}
