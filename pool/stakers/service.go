// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/common"
	"github.com/vechain/stakepool/slots"
)

var (
	slotAccounts  = common.BytesToBytes32([]byte("stakers"))
	slotListHead  = common.BytesToBytes32([]byte("stakers-head"))
	slotListTail  = common.BytesToBytes32([]byte("stakers-tail"))
	slotListCount = common.BytesToBytes32([]byte("stakers-count"))
)

// Service stores staker accounts and keeps an index of the addresses holding one.
type Service struct {
	accounts *slots.Mapping[common.Address, *Account]
	index    *list
}

func New(sctx *slots.Context) *Service {
	return &Service{
		accounts: slots.NewMapping[common.Address, *Account](sctx, slotAccounts),
		index:    newList(sctx, slotListHead, slotListTail, slotListCount),
	}
}

// Get returns the account of staker, or nil if the staker holds none.
func (s *Service) Get(staker common.Address) (*Account, error) {
	ok, err := s.accounts.Exists(staker)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	acc, err := s.accounts.Get(staker)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staker")
	}
	return acc, nil
}

// Set stores the account, indexing the staker on first write.
func (s *Service) Set(staker common.Address, acc *Account) error {
	ok, err := s.accounts.Exists(staker)
	if err != nil {
		return err
	}
	if !ok {
		if err := s.index.Add(staker); err != nil {
			return errors.Wrap(err, "failed to index staker")
		}
	}
	return s.accounts.Set(staker, acc)
}

// Remove drops the account. A later Set starts from a fresh account.
func (s *Service) Remove(staker common.Address) error {
	ok, err := s.accounts.Exists(staker)
	if err != nil || !ok {
		return err
	}
	if err := s.index.Remove(staker); err != nil {
		return errors.Wrap(err, "failed to unindex staker")
	}
	s.accounts.Delete(staker)
	return nil
}

// Count returns the number of stakers holding an account.
func (s *Service) Count() (uint64, error) {
	return s.index.Len()
}

// Iter calls fn for every account in the order stakers first joined.
func (s *Service) Iter(fn func(common.Address, *Account) error) error {
	return s.index.Iter(func(staker common.Address) error {
		acc, err := s.accounts.Get(staker)
		if err != nil {
			return err
		}
		return fn(staker, acc)
	})
}
