// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr common.Address
	key  common.Bytes32
}

// bytes returns the key under which the value is persisted.
func (k storageKey) bytes() []byte {
	b := make([]byte, 0, common.AddressLength+32)
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State is the working copy of every storage slot owned by builtin accounts.
// Writes are journaled so they can be reverted to a checkpoint, and become
// durable only when committed to the backing store.
type State struct {
	store kv.Store
	cache *cache.LRU
	sm    *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object on top of store.
// A positive cacheSize enables an LRU cache of committed values.
func New(store kv.Store, cacheSize int) (*State, error) {
	s := &State{store: store}
	if cacheSize > 0 {
		c, err := cache.NewLRU(cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
	return s, nil
}

// load implements stackedmap.MapGetter. Absent keys are reported as empty values.
func (s *State) load(key storageKey) ([]byte, bool, error) {
	read := func(any) (any, error) {
		v, err := s.store.Get(key.bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		return v, nil
	}

	var (
		v   any
		err error
	)
	if s.cache != nil {
		v, err = s.cache.GetOrLoad(key, read)
	} else {
		v, err = read(key)
	}
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), true, nil
}

// GetRawStorage returns the raw storage value for given address and key.
// An empty value means the slot was never set.
func (s *State) GetRawStorage(addr common.Address, key common.Bytes32) ([]byte, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// SetRawStorage sets the raw storage value. An empty value clears the slot.
func (s *State) SetRawStorage(addr common.Address, key common.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr common.Address, key common.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr common.Address, key common.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Discard drops every uncommitted change.
func (s *State) Discard() {
	s.RevertTo(0)
}

// Stage collapses the journal into the set of changed slots.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	var order []storageKey
	for _, e := range s.sm.Journal() {
		if _, ok := changes[e.Key]; !ok {
			order = append(order, e.Key)
		}
		changes[e.Key] = e.Value
	}
	return &Stage{state: s, changes: changes, order: order}
}

// Commit writes all uncommitted changes to the backing store atomically.
// On failure the journal is kept, so the caller decides whether to Discard.
func (s *State) Commit() error {
	if err := s.Stage().Commit(); err != nil {
		return err
	}
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
