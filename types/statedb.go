// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"math/big"
	"sync"
)

// StateDB is the native-currency ledger the settlement engine mutates.
// Snapshot/Revert gives the engine all-or-nothing semantics per call.
type StateDB struct {
	mu           sync.RWMutex
	accounts     map[Address]*Account
	snapshots    map[uint64]map[Address]*Account
	nextSnapshot uint64
}

// NewStateDB creates a new empty state database.
func NewStateDB() *StateDB {
	return &StateDB{
		accounts:  make(map[Address]*Account),
		snapshots: make(map[uint64]map[Address]*Account),
	}
}

// internal: caller must hold lock.
func (s *StateDB) getOrCreate(addr Address) *Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = NewAccount(addr)
		s.accounts[addr] = acc
	}
	return acc
}

// GetAccount returns a copy for read-only usage.
func (s *StateDB) GetAccount(addr Address) *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[addr]
	if !ok {
		return NewAccount(addr)
	}
	return acc.Copy()
}

// CreateAccount ensures an account record exists for addr.
func (s *StateDB) CreateAccount(addr Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(addr)
	return nil
}

// GetBalance returns the current balance of an address.
func (s *StateDB) GetBalance(addr Address) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[addr]
	if !ok || acc.Balance == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(acc.Balance)
}

// GetNonce returns the current nonce of an address.
func (s *StateDB) GetNonce(addr Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[addr]
	if !ok {
		return 0
	}
	return acc.Nonce
}

// Mint credits new supply to an address (genesis / faucet only).
func (s *StateDB) Mint(addr Address, amount *big.Int) error {
	return s.AddBalance(addr, amount)
}

// AddBalance adds amount to an address balance.
func (s *StateDB) AddBalance(addr Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreate(addr)
	return acc.AddBalance(amount)
}

// SubBalance subtracts amount from an address balance.
func (s *StateDB) SubBalance(addr Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreate(addr)
	return acc.SubBalance(amount)
}

// Transfer moves amount from one address to another.
func (s *StateDB) Transfer(from, to Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}
	if amount.Sign() == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.getOrCreate(from)
	if err := src.SubBalance(amount); err != nil {
		return err
	}
	dst := s.getOrCreate(to)
	return dst.AddBalance(amount)
}

// IncrementNonce increments account nonce.
func (s *StateDB) IncrementNonce(addr Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreate(addr)
	return acc.IncrementNonce()
}

// Snapshot creates a deep copy snapshot and returns its id.
func (s *StateDB) Snapshot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSnapshot
	s.nextSnapshot++

	snap := make(map[Address]*Account, len(s.accounts))
	for addr, acc := range s.accounts {
		snap[addr] = acc.Copy()
	}

	s.snapshots[id] = snap
	return id
}

// RevertToSnapshot restores the state to a previous snapshot.
func (s *StateDB) RevertToSnapshot(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return
	}

	restore := make(map[Address]*Account, len(snap))
	for addr, acc := range snap {
		restore[addr] = acc.Copy()
	}

	s.accounts = restore

	delete(s.snapshots, id)
}

// CommitSnapshot discards a snapshot, making the current state permanent.
func (s *StateDB) CommitSnapshot(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, id)
}
