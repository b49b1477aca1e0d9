// Package merkle computes the standard balanced Merkle root used for a
// block's transactions-root, generalized from the incremental tree used
// for withdrawals: a one-shot tree built fresh over a fixed list of
// leaves, rather than an append-only structure retained across blocks.
package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EmptyRoot is the root of a zero-leaf list, by convention the zero hash.
// verify_block and seal must agree on this convention.
var EmptyRoot common.Hash

// Tree is a balanced binary Merkle tree built once over a fixed slice of
// leaf hashes. Odd levels duplicate their last node rather than pad with a
// zero hash, matching the duplicate-last convention documented in
// DESIGN.md.
type Tree struct {
	leaves []common.Hash
	root   common.Hash
}

// New builds a Tree over leaves, computing its root immediately.
func New(leaves []common.Hash) *Tree {
	cpy := make([]common.Hash, len(leaves))
	copy(cpy, leaves)

	return &Tree{
		leaves: cpy,
		root:   Root(cpy),
	}
}

// Leaves returns the leaves this tree was built from, in order.
func (t *Tree) Leaves() []common.Hash {
	return t.leaves
}

// Root returns the tree's Merkle root.
func (t *Tree) Root() common.Hash {
	return t.root
}

// Root computes the balanced Merkle root of leaves using the
// duplicate-last-leaf convention for odd-sized levels. An empty leaf list
// yields EmptyRoot.
func Root(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return EmptyRoot
	}

	level := make([]common.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([]common.Hash, len(level)/2)
		for i := range next {
			next[i] = crypto.Keccak256Hash(level[2*i].Bytes(), level[2*i+1].Bytes())
		}
		level = next
	}

	return level[0]
}
