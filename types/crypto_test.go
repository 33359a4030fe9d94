// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func baseAssignment() Assignment {
	return Assignment{
		FeeToken:      Address{},
		Expiry:        1_900_000_000,
		MaxBlockID:    500,
		MaxProposedIn: 9_000,
		MetaHash:      Hash{0x01},
		TierFees: []TierFee{
			{Tier: 1, Fee: big.NewInt(100)},
			{Tier: 2, Fee: big.NewInt(250)},
		},
	}
}

func TestCommitmentHashDeterministic(t *testing.T) {
	a := baseAssignment()
	engine := Address{0x10}
	blob := Hash{0xbb}

	h1 := ComputeCommitmentHash(&a, engine, blob)
	h2 := ComputeCommitmentHash(&a, engine, blob)
	require.Equal(t, h1, h2)
	require.False(t, h1.IsZero())
}

func TestCommitmentHashFieldSensitivity(t *testing.T) {
	engine := Address{0x10}
	blob := Hash{0xbb}
	base := baseAssignment()
	baseHash := ComputeCommitmentHash(&base, engine, blob)

	mutations := map[string]func(a *Assignment){
		"feeToken":      func(a *Assignment) { a.FeeToken = Address{0x01} },
		"expiry":        func(a *Assignment) { a.Expiry++ },
		"maxBlockId":    func(a *Assignment) { a.MaxBlockID++ },
		"maxProposedIn": func(a *Assignment) { a.MaxProposedIn++ },
		"metaHash":      func(a *Assignment) { a.MetaHash = Hash{0x02} },
		"tierId":        func(a *Assignment) { a.TierFees[0].Tier = 3 },
		"tierFee":       func(a *Assignment) { a.TierFees[0].Fee = big.NewInt(101) },
		"tierAppended":  func(a *Assignment) { a.TierFees = append(a.TierFees, TierFee{Tier: 9, Fee: big.NewInt(1)}) },
	}

	for name, mutate := range mutations {
		a := baseAssignment()
		mutate(&a)
		require.NotEqual(t, baseHash, ComputeCommitmentHash(&a, engine, blob), "mutation %q must change the hash", name)
	}

	// Different verifying engine or blob also changes the hash.
	a := baseAssignment()
	require.NotEqual(t, baseHash, ComputeCommitmentHash(&a, Address{0x11}, blob))
	require.NotEqual(t, baseHash, ComputeCommitmentHash(&a, engine, Hash{0xcc}))

	// The signature itself is NOT part of the hash.
	a = baseAssignment()
	a.Signature = []byte{1, 2, 3}
	require.Equal(t, baseHash, ComputeCommitmentHash(&a, engine, blob))
}

func TestSignAndRecover(t *testing.T) {
	priv, addr, err := GenerateKey()
	require.NoError(t, err)

	a := baseAssignment()
	engine := Address{0x10}
	blob := Hash{0xbb}

	require.NoError(t, SignAssignment(&a, engine, blob, priv))
	require.Len(t, a.Signature, 65)

	h := ComputeCommitmentHash(&a, engine, blob)
	recovered, err := RecoverSigner(h, a.Signature)
	require.NoError(t, err)
	require.Equal(t, addr, recovered)
}

func TestRecoverSignerAcceptsFreshKeys(t *testing.T) {
	engine := Address{0x10}
	blob := Hash{0xbb}

	// Recovery must accept every well-formed signature, not only
	// reject forged ones.
	for i := 0; i < 4; i++ {
		priv, addr, err := GenerateKey()
		require.NoError(t, err)

		a := baseAssignment()
		a.Expiry += uint64(i)
		require.NoError(t, SignAssignment(&a, engine, blob, priv))

		h := ComputeCommitmentHash(&a, engine, blob)
		recovered, err := RecoverSigner(h, a.Signature)
		require.NoError(t, err)
		require.Equal(t, addr, recovered)
	}
}

func TestSignatureInvalidatedByMutation(t *testing.T) {
	priv, addr, err := GenerateKey()
	require.NoError(t, err)

	a := baseAssignment()
	engine := Address{0x10}
	blob := Hash{0xbb}
	require.NoError(t, SignAssignment(&a, engine, blob, priv))

	a.Expiry++ // any single-field mutation invalidates the signature

	h := ComputeCommitmentHash(&a, engine, blob)
	recovered, err := RecoverSigner(h, a.Signature)
	if err == nil {
		require.NotEqual(t, addr, recovered)
	}
}

func TestAuthorityRegistryDispatch(t *testing.T) {
	reg := NewAuthorityRegistry()

	priv, addr, err := GenerateKey()
	require.NoError(t, err)

	// Unregistered addresses use key recovery.
	a := baseAssignment()
	engine := Address{0x10}
	blob := Hash{0xbb}
	require.NoError(t, SignAssignment(&a, engine, blob, priv))

	h := ComputeCommitmentHash(&a, engine, blob)
	require.NoError(t, reg.Resolve(addr).Authorize(h, a.Signature))

	other := Address{0xab}
	require.Error(t, reg.Resolve(other).Authorize(h, a.Signature))

	// A registered program authority overrides key recovery.
	magic := []byte("open sesame")
	reg.Register(other, ProgramAuthority{Check: func(h Hash, sig []byte) error {
		if string(sig) == string(magic) {
			return nil
		}
		return errors.New("program rejected signature")
	}})

	require.NoError(t, reg.Resolve(other).Authorize(h, magic))
	require.Error(t, reg.Resolve(other).Authorize(h, []byte("wrong")))
}
