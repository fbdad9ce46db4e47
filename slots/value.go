// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/common"
)

// Value is a single RLP encoded value stored at a fixed position.
type Value[V any] struct {
	context *Context
	pos     common.Bytes32
}

func NewValue[V any](context *Context, pos common.Bytes32) *Value[V] {
	return &Value[V]{context: context, pos: pos}
}

// Get decodes the stored value. ok is false if nothing was stored.
func (v *Value[V]) Get() (value V, ok bool, err error) {
	err = v.context.state.DecodeStorage(v.context.address, v.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		ok = true
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (v *Value[V]) Set(value V) error {
	return v.context.state.EncodeStorage(v.context.address, v.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
