// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"fmt"
)

// ZeroStakePolicy decides what happens to a reward deposited while nothing is staked.
type ZeroStakePolicy string

const (
	// PolicyEscrow keeps the reward in the pool and hands it to the next stake
	// that brings the pool out of the empty state.
	PolicyEscrow ZeroStakePolicy = "escrow"
	// PolicyReject refuses the deposit with ErrNoStakers.
	PolicyReject ZeroStakePolicy = "reject"
)

func ParseZeroStakePolicy(s string) (ZeroStakePolicy, error) {
	switch p := ZeroStakePolicy(s); p {
	case PolicyEscrow, PolicyReject:
		return p, nil
	case "":
		return PolicyEscrow, nil
	default:
		return "", fmt.Errorf("unknown zero-stake policy %q", s)
	}
}

type Options struct {
	ZeroStakePolicy ZeroStakePolicy
}
