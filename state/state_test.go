// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/lvldb"
)

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := New(db, 16)
	require.NoError(t, err)
	return st, db
}

func TestStateCheckpoint(t *testing.T) {
	st, _ := newTestState(t)
	addr := common.NameToAddress("acc")
	key := common.Bytes32{1}

	v, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, v)

	st.SetRawStorage(addr, key, []byte("v1"))
	cp := st.NewCheckpoint()
	st.SetRawStorage(addr, key, []byte("v2"))

	v, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	st.RevertTo(cp)
	v, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	st.Discard()
	v, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, v)

	// writes are still accepted after a full discard
	st.SetRawStorage(addr, key, []byte("v3"))
	v, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v3"), v)
}

func TestStateCommit(t *testing.T) {
	st, db := newTestState(t)
	addr := common.NameToAddress("acc")

	st.SetRawStorage(addr, common.Bytes32{1}, []byte("a"))
	st.SetRawStorage(addr, common.Bytes32{2}, []byte("b"))
	st.SetRawStorage(addr, common.Bytes32{2}, []byte("c"))
	assert.Equal(t, 2, st.Stage().Len())
	require.NoError(t, st.Commit())
	assert.Equal(t, 0, st.Stage().Len())

	// a fresh state over the same store sees committed values
	st2, err := New(db, 0)
	require.NoError(t, err)
	v, err := st2.GetRawStorage(addr, common.Bytes32{2})
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), v)

	// clearing deletes the key
	st.SetRawStorage(addr, common.Bytes32{1}, nil)
	require.NoError(t, st.Commit())
	has, err := db.Has(storageKey{addr, common.Bytes32{1}}.bytes())
	require.NoError(t, err)
	assert.False(t, has)

	v, err = st.GetRawStorage(addr, common.Bytes32{1})
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestStateCommitFailure(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	writeErr := errors.New("disk full")
	store := &struct {
		kv.Getter
		kv.Putter
		kv.BulkFunc
	}{db, db, func() kv.Bulk {
		return &struct {
			kv.PutFunc
			kv.DeleteFunc
			kv.LenFunc
			kv.WriteFunc
		}{
			func(_, _ []byte) error { return nil },
			func([]byte) error { return nil },
			func() int { return 0 },
			func() error { return writeErr },
		}
	}}

	st, err := New(store, 0)
	require.NoError(t, err)
	addr := common.NameToAddress("acc")

	st.SetRawStorage(addr, common.Bytes32{1}, []byte("a"))
	err = st.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)

	var stateErr *Error
	assert.ErrorAs(t, err, &stateErr)

	// journal is kept until discarded
	assert.Equal(t, 1, st.Stage().Len())
	st.Discard()
	assert.Equal(t, 0, st.Stage().Len())
}

func TestStateLoadError(t *testing.T) {
	loadErr := errors.New("io error")
	store := &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.Putter
		kv.BulkFunc
	}{
		func([]byte) ([]byte, error) { return nil, loadErr },
		func([]byte) (bool, error) { return false, loadErr },
		func(error) bool { return false },
		nil,
		nil,
	}
	st, err := New(store, 0)
	require.NoError(t, err)

	_, err = st.GetRawStorage(common.Address{}, common.Bytes32{})
	assert.ErrorIs(t, err, loadErr)
}
