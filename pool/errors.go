// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/reverts"
	"github.com/vechain/stakepool/slots"
)

var (
	ErrAlreadyInitialized   = reverts.New("pool already initialized")
	ErrNotInitialized       = reverts.New("pool not initialized")
	ErrInvalidConfiguration = reverts.New("invalid configuration")
	ErrZeroAmount           = reverts.New("amount must be greater than zero")
	ErrNothingStaked        = reverts.New("nothing staked")
	ErrNoStakers            = reverts.New("no stake to distribute reward to")
	ErrTransferFailed       = reverts.New("transfer failed")
	ErrArithmeticOverflow   = reverts.New("arithmetic overflow")
)

// arith turns storage arithmetic failures into reverts and leaves other errors as they are.
func arith(err error) error {
	if errors.Is(err, slots.ErrOverflow) || errors.Is(err, slots.ErrUnderflow) {
		return reverts.Wrap(ErrArithmeticOverflow, err)
	}
	return err
}

// transferFailed marks a ledger rejection. Internal ledger failures are passed through.
func transferFailed(err error) error {
	if reverts.IsRevertErr(err) {
		return reverts.Wrap(ErrTransferFailed, err)
	}
	return errors.WithMessage(err, "ledger")
}
