// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr string
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", ""},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", "invalid prefix"},
		{"0x7567d83b", "invalid length"},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", "encoding/hex: invalid byte: U+007A 'z'"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			addr, err := ParseAddress(tt.in)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	data, err := json.Marshal(&addr)
	require.NoError(t, err)
	assert.Equal(t, `"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"`, string(data))

	var decoded Address
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"0x01"`), &decoded))
}

func TestNameToAddress(t *testing.T) {
	a := NameToAddress("StakingPool")
	b := NameToAddress("StakingPool")
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())
	assert.NotEqual(t, a, NameToAddress("AssetLedger"))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("100")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), v.Uint64())

	v, err = ParseAmount("0x64")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), v.Uint64())

	_, err = ParseAmount("")
	assert.Error(t, err)
	_, err = ParseAmount("-1")
	assert.Error(t, err)
	_, err = ParseAmount("abc")
	assert.Error(t, err)

	assert.True(t, CopyAmount(nil).IsZero())
}
