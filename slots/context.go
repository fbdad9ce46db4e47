// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/state"
)

// Context binds typed slots to the storage of one account.
type Context struct {
	address common.Address
	state   *state.State
}

func NewContext(address common.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() common.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
