// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
)

var (
	ErrOverflow  = errors.New("uint256 overflow")
	ErrUnderflow = errors.New("uint256 underflow")
)

// Uint256 stores a 256-bit unsigned integer as its minimal big-endian bytes.
// Zero clears the slot.
type Uint256 struct {
	context *Context
	pos     common.Bytes32
}

func NewUint256(context *Context, pos common.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	raw, err := u.context.state.GetRawStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(raw), nil
}

func (u *Uint256) Set(value *uint256.Int) {
	var raw []byte
	if !value.IsZero() {
		raw = value.Bytes()
	}
	u.context.state.SetRawStorage(u.context.address, u.pos, raw)
}

// Add increases the stored value, failing instead of wrapping around.
func (u *Uint256) Add(value *uint256.Int) error {
	cur, err := u.Get()
	if err != nil {
		return err
	}
	if _, overflow := cur.AddOverflow(cur, value); overflow {
		return ErrOverflow
	}
	u.Set(cur)
	return nil
}

// Sub decreases the stored value, failing if it would go below zero.
func (u *Uint256) Sub(value *uint256.Int) error {
	cur, err := u.Get()
	if err != nil {
		return err
	}
	if _, underflow := cur.SubOverflow(cur, value); underflow {
		return ErrUnderflow
	}
	u.Set(cur)
	return nil
}
