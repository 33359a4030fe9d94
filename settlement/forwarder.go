// SPDX-License-Identifier: MIT

package settlement

import (
	"fmt"
	"math/big"
	"sync"

	"provernet-core/types"
)

// DefaultForwardBudget is the default resource ceiling for value
// forwarded to externally-controlled recipients. Tunable via config;
// the constant has no derivation beyond matching deployed practice.
const DefaultForwardBudget uint64 = 200_000

// Budget meters the resources a recipient hook may consume while
// reacting to a forwarded payment.
type Budget struct {
	remaining uint64
}

func NewBudget(limit uint64) *Budget {
	return &Budget{remaining: limit}
}

// Consume deducts n units, reporting false once the ceiling is hit.
func (b *Budget) Consume(n uint64) bool {
	if n > b.remaining {
		b.remaining = 0
		return false
	}
	b.remaining -= n
	return true
}

// Remaining returns the unconsumed budget.
func (b *Budget) Remaining() uint64 {
	return b.remaining
}

// RecipientHook is untrusted code a recipient registers to observe
// incoming native payments. It runs under a bounded budget; exhausting
// the budget or returning an error aborts the whole settlement.
type RecipientHook interface {
	OnNativeReceived(from types.Address, amount *big.Int, b *Budget) error
}

// BoundedForwarder credits native value to recipients and runs any
// registered hook under a fixed resource ceiling.
type BoundedForwarder struct {
	mu     sync.RWMutex
	budget uint64
	hooks  map[types.Address]RecipientHook
}

func NewBoundedForwarder(budget uint64) *BoundedForwarder {
	if budget == 0 {
		budget = DefaultForwardBudget
	}
	return &BoundedForwarder{
		budget: budget,
		hooks:  make(map[types.Address]RecipientHook),
	}
}

// RegisterHook attaches recipient-controlled code to an address.
func (f *BoundedForwarder) RegisterHook(addr types.Address, hook RecipientHook) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[addr] = hook
}

// Forward credits amount to `to` on the ledger and invokes the
// recipient's hook, if any, under the configured budget.
func (f *BoundedForwarder) Forward(state *types.StateDB, from, to types.Address, amount *big.Int) error {
	if err := state.AddBalance(to, amount); err != nil {
		return err
	}

	f.mu.RLock()
	hook := f.hooks[to]
	f.mu.RUnlock()

	if hook == nil {
		return nil
	}

	b := NewBudget(f.budget)
	if err := hook.OnNativeReceived(from, amount, b); err != nil {
		return fmt.Errorf("recipient hook failed: %w", err)
	}
	return nil
}
