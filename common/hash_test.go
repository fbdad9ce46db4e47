// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("foobar")), Blake2b([]byte("foo"), []byte("bar")))
	assert.NotEqual(t, Blake2b([]byte("foo")), Blake2b([]byte("bar")))
	// blake2b-256 of the empty input
	assert.Equal(t, "0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", Blake2b([]byte{}).String())
}

func TestKeccak256(t *testing.T) {
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256().String())
	assert.Equal(t, Keccak256([]byte("foobar")), Keccak256([]byte("foo"), []byte("bar")))

	addr := NameToAddress("StakingPool")
	h := Keccak256([]byte("StakingPool"))
	assert.Equal(t, h[12:], addr.Bytes())
}
