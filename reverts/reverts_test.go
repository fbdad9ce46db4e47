// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)

	assert.True(t, IsRevertErr(revert))
	assert.True(t, IsRevertErr(errors.Wrap(revert, "context")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_Wrap(t *testing.T) {
	kind := New("transfer failed")
	cause := New("insufficient balance")
	other := New("transfer failed")

	err := Wrap(kind, cause)
	assert.Equal(t, "transfer failed: insufficient balance", err.Error())
	assert.ErrorIs(t, err, kind)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, other)
	assert.NotErrorIs(t, kind, cause)

	plain := fmt.Errorf("io")
	assert.ErrorIs(t, Wrap(kind, plain), plain)
}
