// SPDX-License-Identifier: MIT

// Package merkle implements the pairwise-sorted keccak256 merkle scheme
// used for airdrop membership proofs. Verification is the on-ledger
// side; tree construction and proof generation exist for the off-ledger
// root publisher and for tests.
package merkle

import (
	"bytes"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"provernet-core/types"
)

// hashPair hashes two nodes in sorted order, so a proof does not need
// to carry left/right position bits.
func hashPair(a, b types.Hash) types.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	var out types.Hash
	copy(out[:], ethcrypto.Keccak256(a[:], b[:]))
	return out
}

// Verify folds the proof path from leaf upward and compares the result
// against root.
func Verify(leaf types.Hash, proof []types.Hash, root types.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}

// Tree is a full in-memory merkle tree over a fixed leaf set.
type Tree struct {
	levels [][]types.Hash // levels[0] = leaves, last level = root
}

// NewTree builds a tree from the given leaves. Odd-sized levels
// duplicate their last node.
func NewTree(leaves []types.Hash) *Tree {
	if len(leaves) == 0 {
		return &Tree{levels: [][]types.Hash{{types.ZeroHash()}}}
	}

	levels := make([][]types.Hash, 0, 8)
	level := make([]types.Hash, len(leaves))
	copy(level, leaves)
	levels = append(levels, level)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
			levels[len(levels)-1] = level
		}
		next := make([]types.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels}
}

// Root returns the tree root.
func (t *Tree) Root() types.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Prove returns the sibling path for the first occurrence of leaf.
// The second return is false when leaf is not in the tree.
func (t *Tree) Prove(leaf types.Hash) ([]types.Hash, bool) {
	idx := -1
	for i, l := range t.levels[0] {
		if l == leaf {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	proof := make([]types.Hash, 0, len(t.levels)-1)
	for depth := 0; depth < len(t.levels)-1; depth++ {
		level := t.levels[depth]
		sibling := idx ^ 1
		if sibling >= len(level) {
			sibling = idx // odd level, duplicated last node
		}
		proof = append(proof, level[sibling])
		idx /= 2
	}
	return proof, true
}
