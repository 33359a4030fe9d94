// SPDX-License-Identifier: MIT

package merkle

import (
	"fmt"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"provernet-core/types"
)

func makeLeaves(n int) []types.Hash {
	leaves := make([]types.Hash, n)
	for i := range leaves {
		copy(leaves[i][:], ethcrypto.Keccak256([]byte(fmt.Sprintf("leaf-%d", i))))
	}
	return leaves
}

func TestVerifyAllLeaves(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		leaves := makeLeaves(n)
		tree := NewTree(leaves)
		root := tree.Root()

		for i, leaf := range leaves {
			proof, ok := tree.Prove(leaf)
			require.True(t, ok, "n=%d leaf=%d", n, i)
			require.True(t, Verify(leaf, proof, root), "n=%d leaf=%d", n, i)
		}
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	leaves := makeLeaves(5)
	tree := NewTree(leaves)
	root := tree.Root()

	proof, ok := tree.Prove(leaves[2])
	require.True(t, ok)

	if len(proof) > 0 {
		proof[0][0] ^= 0xff
		require.False(t, Verify(leaves[2], proof, root))
	}
}

func TestVerifyRejectsWrongLeaf(t *testing.T) {
	leaves := makeLeaves(4)
	tree := NewTree(leaves)
	root := tree.Root()

	proof, ok := tree.Prove(leaves[0])
	require.True(t, ok)

	var outsider types.Hash
	copy(outsider[:], ethcrypto.Keccak256([]byte("outsider")))
	require.False(t, Verify(outsider, proof, root))
}

func TestSingleLeafTree(t *testing.T) {
	leaves := makeLeaves(1)
	tree := NewTree(leaves)

	require.Equal(t, leaves[0], tree.Root())

	proof, ok := tree.Prove(leaves[0])
	require.True(t, ok)
	require.Empty(t, proof)
	require.True(t, Verify(leaves[0], proof, tree.Root()))
}

func TestProveUnknownLeaf(t *testing.T) {
	tree := NewTree(makeLeaves(3))

	var outsider types.Hash
	copy(outsider[:], ethcrypto.Keccak256([]byte("outsider")))
	_, ok := tree.Prove(outsider)
	require.False(t, ok)
}

func TestSortedPairOrderIndependence(t *testing.T) {
	a := types.Hash{0x01}
	b := types.Hash{0x02}
	require.Equal(t, hashPair(a, b), hashPair(b, a))
}
