// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/slots"
)

// list is a storage backed doubly linked list of addresses, kept in insertion order.
type list struct {
	head  *slots.Value[common.Address]
	tail  *slots.Value[common.Address]
	count *slots.Uint256
	next  *slots.Mapping[common.Address, common.Address]
	prev  *slots.Mapping[common.Address, common.Address]
}

func newList(sctx *slots.Context, headPos, tailPos, countPos common.Bytes32) *list {
	return &list{
		head:  slots.NewValue[common.Address](sctx, headPos),
		tail:  slots.NewValue[common.Address](sctx, tailPos),
		count: slots.NewUint256(sctx, countPos),
		next:  slots.NewMapping[common.Address, common.Address](sctx, headPos),
		prev:  slots.NewMapping[common.Address, common.Address](sctx, tailPos),
	}
}

func (l *list) setLink(m *slots.Mapping[common.Address, common.Address], from, to common.Address) error {
	if to.IsZero() {
		m.Delete(from)
		return nil
	}
	return m.Set(from, to)
}

// Add appends address to the end of the list. The caller must not add an address twice.
func (l *list) Add(address common.Address) error {
	oldTail, _, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.IsZero() {
		if err := l.head.Set(address); err != nil {
			return err
		}
	} else {
		if err := l.setLink(l.next, oldTail, address); err != nil {
			return err
		}
		if err := l.setLink(l.prev, address, oldTail); err != nil {
			return err
		}
	}
	if err := l.tail.Set(address); err != nil {
		return err
	}
	return l.count.Add(uint256.NewInt(1))
}

// Remove unlinks address from anywhere in the list. Unknown addresses are ignored.
func (l *list) Remove(address common.Address) error {
	if address.IsZero() {
		return nil
	}

	prev, err := l.prev.Get(address)
	if err != nil {
		return err
	}
	next, err := l.next.Get(address)
	if err != nil {
		return err
	}
	head, _, err := l.head.Get()
	if err != nil {
		return err
	}
	if prev.IsZero() && head != address {
		return nil
	}

	if prev.IsZero() {
		if err := l.head.Set(next); err != nil {
			return err
		}
	} else if err := l.setLink(l.next, prev, next); err != nil {
		return err
	}

	if next.IsZero() {
		if err := l.tail.Set(prev); err != nil {
			return err
		}
	} else if err := l.setLink(l.prev, next, prev); err != nil {
		return err
	}

	l.next.Delete(address)
	l.prev.Delete(address)

	return l.count.Sub(uint256.NewInt(1))
}

// Len returns the number of addresses in the list.
func (l *list) Len() (uint64, error) {
	n, err := l.count.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Iter traverses the list in insertion order until completion or error.
func (l *list) Iter(callback func(common.Address) error) error {
	ptr, _, err := l.head.Get()
	if err != nil {
		return err
	}

	for !ptr.IsZero() {
		// read the successor first so callback may remove ptr
		next, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		if err := callback(ptr); err != nil {
			return err
		}
		ptr = next
	}
	return nil
}
