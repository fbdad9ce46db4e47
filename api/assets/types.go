// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assets

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
)

type Supply struct {
	TotalSupply *uint256.Int `json:"totalSupply"`
}

type Balance struct {
	Balance *uint256.Int `json:"balance"`
}

type Allowance struct {
	Remaining *uint256.Int `json:"remaining"`
}

type ApproveRequest struct {
	Owner   *common.Address `json:"owner"`
	Spender *common.Address `json:"spender"`
	Amount  *uint256.Int    `json:"amount"`
}

type TransferRequest struct {
	From   *common.Address `json:"from"`
	To     *common.Address `json:"to"`
	Amount *uint256.Int    `json:"amount"`
}

type MintRequest struct {
	To     *common.Address `json:"to"`
	Amount *uint256.Int    `json:"amount"`
}

type Result struct {
	Success bool `json:"success"`
}
