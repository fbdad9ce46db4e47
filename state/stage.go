// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/pkg/errors"

// Stage abstracts the pending changes of a state.
type Stage struct {
	state   *State
	changes map[storageKey][]byte
	order   []storageKey
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes all changes into the backing store in a single bulk.
func (s *Stage) Commit() error {
	if len(s.order) == 0 {
		return nil
	}
	bulk := s.state.store.Bulk()
	for _, k := range s.order {
		v := s.changes[k]
		if len(v) == 0 {
			if err := bulk.Delete(k.bytes()); err != nil {
				return &Error{errors.Wrap(err, "delete")}
			}
			continue
		}
		if err := bulk.Put(k.bytes(), v); err != nil {
			return &Error{errors.Wrap(err, "put")}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{errors.Wrap(err, "write bulk")}
	}

	if c := s.state.cache; c != nil {
		for _, k := range s.order {
			c.Add(k, s.changes[k])
		}
	}
	return nil
}
