// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"sync"
)

// SignerAuthority decides whether sig is a valid authorization by some
// signer over hash h. Implementations cover both plain keypairs and
// contract-style accounts that define their own validity predicate.
type SignerAuthority interface {
	Authorize(h Hash, sig []byte) error
}

// KeyAuthority accepts a signature iff ECDSA recovery over h yields
// exactly the bound address.
type KeyAuthority struct {
	Address Address
}

func (k KeyAuthority) Authorize(h Hash, sig []byte) error {
	recovered, err := RecoverSigner(h, sig)
	if err != nil {
		return err
	}
	if recovered != k.Address {
		return errors.New("signer mismatch")
	}
	return nil
}

// ProgramAuthority wraps an arbitrary validity predicate supplied by a
// contract-style account.
type ProgramAuthority struct {
	Check func(h Hash, sig []byte) error
}

func (p ProgramAuthority) Authorize(h Hash, sig []byte) error {
	if p.Check == nil {
		return errors.New("program authority has no predicate")
	}
	return p.Check(h, sig)
}

// AuthorityRegistry resolves the signer capability for an address.
// Addresses with a registered program authority use it; every other
// address falls back to plain key recovery.
type AuthorityRegistry struct {
	mu       sync.RWMutex
	programs map[Address]SignerAuthority
}

func NewAuthorityRegistry() *AuthorityRegistry {
	return &AuthorityRegistry{
		programs: make(map[Address]SignerAuthority),
	}
}

// Register binds a program authority to an address.
func (r *AuthorityRegistry) Register(addr Address, auth SignerAuthority) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[addr] = auth
}

// Resolve returns the authority for addr.
func (r *AuthorityRegistry) Resolve(addr Address) SignerAuthority {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if auth, ok := r.programs[addr]; ok {
		return auth
	}
	return KeyAuthority{Address: addr}
}
