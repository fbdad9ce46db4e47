// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a failure caused by the caller's input or the current state,
// as opposed to an internal storage failure. A revert created by Wrap keeps
// the kind it was derived from, so errors.Is matches both the kind and the cause.
type ErrRevert struct {
	message string
	kind    *ErrRevert
	cause   error
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Wrap derives a revert of the given kind caused by err.
func Wrap(kind *ErrRevert, err error) *ErrRevert {
	return &ErrRevert{
		message: kind.message + ": " + err.Error(),
		kind:    kind,
		cause:   err,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && e.kind != nil && e.kind == t
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
