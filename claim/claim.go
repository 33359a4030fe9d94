// SPDX-License-Identifier: MIT

// Package claim implements one-time merkle-gated entitlement claims.
package claim

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"provernet-core/merkle"
	"provernet-core/types"
)

// ClaimDomainTag separates claim leaf hashes from every other hashed
// payload in the protocol.
const ClaimDomainTag = "AIRDROP_CLAIM"

// Failure kinds. Any failure leaves the claimed-set and all balances
// unchanged.
var (
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrInvalidProof   = errors.New("invalid merkle proof")
	ErrReentrantCall  = errors.New("reentrant claim call")
)

// Payload is the claimable entitlement: who receives how much.
type Payload struct {
	Recipient types.Address `json:"recipient"`
	Amount    *big.Int      `json:"amount"`
}

// Encode produces the canonical binary form used for leaf hashing.
func (p *Payload) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(p.Recipient[:])

	if p.Amount == nil || p.Amount.Sign() == 0 {
		buf.WriteByte(0)
	} else {
		b := p.Amount.Bytes()
		buf.WriteByte(uint8(len(b)))
		buf.Write(b)
	}
	return buf.Bytes()
}

// LeafHash computes the domain-separated hash keying this payload in
// the claimed-set and in the published merkle tree.
func (p *Payload) LeafHash() types.Hash {
	var out types.Hash
	copy(out[:], ethcrypto.Keccak256([]byte(ClaimDomainTag), p.Encode()))
	return out
}

// Executor is the injected claim-execution capability. It performs the
// actual entitlement transfer and must fail loudly: a returned error
// aborts the claim so the hash is never marked consumed without effect.
type Executor interface {
	Execute(p *Payload) error
}

// Reverter is implemented by executors that can undo a payout. The
// verifier uses it when the claimed mark fails to persist after the
// payout already ran, so the entitlement stays claimable without
// paying twice. Pull-based token payouts cannot implement it: pulling
// the amount back would need an allowance from the recipient.
type Reverter interface {
	Revert(p *Payload) error
}

// Set is the persistent claimed-set the verifier consults.
// MarkWith must make the mark and fn atomic: fn failing means the mark
// does not persist.
type Set interface {
	Seen(h types.Hash) (bool, error)
	MarkWith(h types.Hash, fn func() error) error
}

// Verifier gates one-time claims behind a published merkle root.
type Verifier struct {
	mu   sync.RWMutex
	root types.Hash

	set  Set
	exec Executor
	sink types.EventSink

	entered atomic.Bool
}

// NewVerifier wires a claim verifier. sink may be nil.
func NewVerifier(root types.Hash, set Set, exec Executor, sink types.EventSink) *Verifier {
	return &Verifier{
		root: root,
		set:  set,
		exec: exec,
		sink: sink,
	}
}

// Root returns the currently published merkle root.
func (v *Verifier) Root() types.Hash {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.root
}

// SetRoot installs a newly published merkle root.
func (v *Verifier) SetRoot(root types.Hash) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.root = root
}

// Claim consumes a one-time entitlement: replay check, proof check,
// irreversible mark, then delegation to the execution capability. The
// mark and the execution are one atomic unit.
func (v *Verifier) Claim(p *Payload, proof []types.Hash) (types.Hash, error) {
	if !v.entered.CompareAndSwap(false, true) {
		return types.Hash{}, ErrReentrantCall
	}
	defer v.entered.Store(false)

	if p == nil {
		return types.Hash{}, errors.New("nil claim payload")
	}
	if p.Amount != nil && p.Amount.Sign() < 0 {
		return types.Hash{}, errors.New("negative claim amount")
	}

	h := p.LeafHash()

	seen, err := v.set.Seen(h)
	if err != nil {
		return h, fmt.Errorf("claimed-set read failed: %w", err)
	}
	if seen {
		return h, ErrAlreadyClaimed
	}

	if !merkle.Verify(h, proof, v.Root()) {
		return h, ErrInvalidProof
	}

	executed := false
	if err := v.set.MarkWith(h, func() error {
		if err := v.exec.Execute(p); err != nil {
			return err
		}
		executed = true
		return nil
	}); err != nil {
		// An error after a successful execution means the mark itself
		// failed to persist; undo the payout so a retry pays once.
		if executed {
			if rv, ok := v.exec.(Reverter); ok {
				if rerr := rv.Revert(p); rerr != nil {
					return h, fmt.Errorf("claim mark failed, payout revert failed (%v): %w", rerr, err)
				}
			}
		}
		return h, fmt.Errorf("claim execution failed: %w", err)
	}

	if v.sink != nil {
		v.sink.Emit(types.Event{Kind: types.EventClaimed, Claim: &types.ClaimedEvent{Hash: h}})
	}

	return h, nil
}
