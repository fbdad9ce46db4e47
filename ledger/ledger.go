// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps balances, allowances and supply of fungible assets.
// An asset is identified by an address; any non-zero address names a valid
// asset, which starts with zero supply until minted.
package ledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/reverts"
	"github.com/vechain/stakepool/slots"
	"github.com/vechain/stakepool/state"
)

var (
	logger = log.WithContext("pkg", "ledger")

	// Address is the account owning the ledger storage.
	Address = common.NameToAddress("AssetLedger")

	slotBalances   = common.BytesToBytes32([]byte("balances"))
	slotAllowances = common.BytesToBytes32([]byte("allowances"))
	slotSupply     = common.BytesToBytes32([]byte("total-supply"))

	ErrInsufficientBalance   = reverts.New("insufficient balance")
	ErrInsufficientAllowance = reverts.New("insufficient allowance")
	ErrZeroAddress           = reverts.New("zero address")
	ErrOverflow              = reverts.New("amount overflow")
)

func SetLogger(l log.Logger) {
	logger = l
}

// holding identifies the balance of one account in one asset.
type holding struct {
	asset, account common.Address
}

func (h holding) Bytes() []byte {
	return append(h.asset.Bytes(), h.account.Bytes()...)
}

// grant identifies the allowance of a spender over an owner's asset.
type grant struct {
	asset, owner, spender common.Address
}

func (g grant) Bytes() []byte {
	b := append(g.asset.Bytes(), g.owner.Bytes()...)
	return append(b, g.spender.Bytes()...)
}

// Ledger implements the asset ledger.
type Ledger struct {
	balances   *slots.Mapping[holding, *uint256.Int]
	allowances *slots.Mapping[grant, *uint256.Int]
	supply     *slots.Mapping[common.Address, *uint256.Int]
}

// New create a new instance.
func New(addr common.Address, state *state.State) *Ledger {
	sctx := slots.NewContext(addr, state)
	return &Ledger{
		balances:   slots.NewMapping[holding, *uint256.Int](sctx, slotBalances),
		allowances: slots.NewMapping[grant, *uint256.Int](sctx, slotAllowances),
		supply:     slots.NewMapping[common.Address, *uint256.Int](sctx, slotSupply),
	}
}

func nonZero(addrs ...common.Address) error {
	for _, a := range addrs {
		if a.IsZero() {
			return ErrZeroAddress
		}
	}
	return nil
}

// TotalSupply returns the amount of asset minted so far.
func (l *Ledger) TotalSupply(asset common.Address) (*uint256.Int, error) {
	return l.supply.Get(asset)
}

// BalanceOf returns the balance of account in asset.
func (l *Ledger) BalanceOf(asset, account common.Address) (*uint256.Int, error) {
	return l.balances.Get(holding{asset, account})
}

// Allowance returns the amount spender may still move out of owner's balance.
func (l *Ledger) Allowance(asset, owner, spender common.Address) (*uint256.Int, error) {
	return l.allowances.Get(grant{asset, owner, spender})
}

func (l *Ledger) setBalance(h holding, v *uint256.Int) error {
	if v.IsZero() {
		l.balances.Delete(h)
		return nil
	}
	return l.balances.Set(h, v)
}

func (l *Ledger) setAllowance(g grant, v *uint256.Int) error {
	if v.IsZero() {
		l.allowances.Delete(g)
		return nil
	}
	return l.allowances.Set(g, v)
}

// Approve sets the allowance of spender over owner's balance, replacing any previous value.
func (l *Ledger) Approve(asset, owner, spender common.Address, amount *uint256.Int) error {
	if err := nonZero(asset, owner, spender); err != nil {
		return err
	}
	logger.Debug("approve", "asset", asset, "owner", owner, "spender", spender, "amount", amount)
	return l.setAllowance(grant{asset, owner, spender}, amount)
}

// Transfer moves amount of asset from one account to another.
func (l *Ledger) Transfer(asset, from, to common.Address, amount *uint256.Int) error {
	if err := nonZero(asset, from, to); err != nil {
		return err
	}

	fromBal, err := l.BalanceOf(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBal, err := l.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	if _, overflow := toBal.AddOverflow(toBal, amount); overflow {
		return ErrOverflow
	}
	fromBal.Sub(fromBal, amount)

	if err := l.setBalance(holding{asset, from}, fromBal); err != nil {
		return err
	}
	if err := l.setBalance(holding{asset, to}, toBal); err != nil {
		return err
	}
	logger.Debug("transfer", "asset", asset, "from", from, "to", to, "amount", amount)
	return nil
}

// TransferFrom moves amount of asset out of from's balance on behalf of spender,
// consuming spender's allowance. An allowance of MaxUint256 is never consumed.
func (l *Ledger) TransferFrom(asset, spender, from, to common.Address, amount *uint256.Int) error {
	if err := nonZero(asset, spender, from, to); err != nil {
		return err
	}

	g := grant{asset, from, spender}
	allowance, err := l.allowances.Get(g)
	if err != nil {
		return err
	}
	if allowance.Lt(amount) {
		return ErrInsufficientAllowance
	}

	if err := l.Transfer(asset, from, to, amount); err != nil {
		return err
	}
	if allowance.Eq(maxUint256) {
		return nil
	}
	return l.setAllowance(g, allowance.Sub(allowance, amount))
}

// Mint creates amount of asset in the to account.
func (l *Ledger) Mint(asset, to common.Address, amount *uint256.Int) error {
	if err := nonZero(asset, to); err != nil {
		return err
	}

	supply, err := l.supply.Get(asset)
	if err != nil {
		return err
	}
	if _, overflow := supply.AddOverflow(supply, amount); overflow {
		return ErrOverflow
	}
	// balances never exceed supply, so this cannot overflow
	bal, err := l.BalanceOf(asset, to)
	if err != nil {
		return err
	}
	bal.Add(bal, amount)

	if err := l.supply.Set(asset, supply); err != nil {
		return err
	}
	if err := l.setBalance(holding{asset, to}, bal); err != nil {
		return err
	}
	logger.Debug("mint", "asset", asset, "to", to, "amount", amount)
	return nil
}

var maxUint256 = new(uint256.Int).SetAllOne()
