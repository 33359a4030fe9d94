// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"math/big"
	"sync"
)

// Token is the pull-transfer interface the settlement engine uses when
// an assignment prices its fee in a token instead of native currency.
// The concrete token ledger is an external collaborator.
type Token interface {
	TransferFrom(from, to Address, amount *big.Int) error
	BalanceOf(addr Address) *big.Int
}

// LedgerToken is an in-process token ledger with ERC20-style allowances.
// Used for deployments where the fee token lives on the same ledger, and
// as the token collaborator in tests.
type LedgerToken struct {
	mu         sync.RWMutex
	balances   map[Address]*big.Int
	allowances map[Address]map[Address]*big.Int
}

func NewLedgerToken() *LedgerToken {
	return &LedgerToken{
		balances:   make(map[Address]*big.Int),
		allowances: make(map[Address]map[Address]*big.Int),
	}
}

// Mint credits new token supply to an address.
func (t *LedgerToken) Mint(addr Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bal, ok := t.balances[addr]
	if !ok {
		bal = big.NewInt(0)
		t.balances[addr] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// BalanceOf returns the token balance of an address.
func (t *LedgerToken) BalanceOf(addr Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	bal, ok := t.balances[addr]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(bal)
}

// Approve lets spender pull up to amount from owner's balance.
func (t *LedgerToken) Approve(owner, spender Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	byOwner, ok := t.allowances[owner]
	if !ok {
		byOwner = make(map[Address]*big.Int)
		t.allowances[owner] = byOwner
	}
	byOwner[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns how much spender may still pull from owner.
func (t *LedgerToken) Allowance(owner, spender Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byOwner, ok := t.allowances[owner]
	if !ok {
		return big.NewInt(0)
	}
	allowed, ok := byOwner[spender]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(allowed)
}

// TransferFrom pulls amount from `from` to `to`, consuming allowance.
// The settlement engine is the implicit spender; the engine address is
// modeled as the `to` party's puller, so allowance is keyed from->to.
func (t *LedgerToken) TransferFrom(from, to Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}
	if amount.Sign() == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	byOwner, ok := t.allowances[from]
	if !ok {
		return errors.New("no allowance")
	}
	allowed, ok := byOwner[to]
	if !ok || allowed.Cmp(amount) < 0 {
		return errors.New("allowance exceeded")
	}

	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return errors.New("insufficient token balance")
	}

	allowed.Sub(allowed, amount)
	bal.Sub(bal, amount)

	dst, ok := t.balances[to]
	if !ok {
		dst = big.NewInt(0)
		t.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}
