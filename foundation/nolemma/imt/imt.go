// Package imt implements the incremental Merkle tree used as the
// withdrawal exit commitment: an append-only, fixed-depth binary Merkle
// tree with zero-hash padding and a cached frontier, so both appends and
// root derivation cost O(depth) hashes rather than O(count).
package imt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultDepth is the depth used when the environment does not configure
// one explicitly.
const DefaultDepth = 32

// ErrTreeFull is returned by Append once a tree of depth D has accepted
// 2^D leaves.
var ErrTreeFull = fmt.Errorf("incremental merkle tree is full")

// Leaf is a committed withdrawal leaf together with its position.
type Leaf struct {
	Index uint64
	Hash  common.Hash
}

// Proof is the sibling path for a leaf at Index, bottom to top. Verifying
// it against a root is outside this package's scope; the protocol
// advertises L2->L1 finality via such proofs without specifying the L1
// verifier.
type Proof struct {
	Leaf     common.Hash
	Index    uint64
	Siblings []common.Hash
}

// Tree is an append-only, fixed-depth binary Merkle tree.
type Tree struct {
	depth      uint
	count      uint64
	frontier   []common.Hash
	zeroHashes []common.Hash
	leaves     []common.Hash
}

// New constructs an empty tree of the given depth. Its root is z_D, the
// zero-hash at the tree's full depth.
func New(depth uint) *Tree {
	return &Tree{
		depth:      depth,
		frontier:   make([]common.Hash, depth+1),
		zeroHashes: zeroHashes(depth),
	}
}

// zeroHashes precomputes z_0 = keccak(32 zero bytes), z_{k+1} =
// keccak(z_k || z_k), for k in [0, depth].
func zeroHashes(depth uint) []common.Hash {
	zh := make([]common.Hash, depth+1)
	zh[0] = crypto.Keccak256Hash(make([]byte, 32))
	for k := uint(1); k <= depth; k++ {
		zh[k] = crypto.Keccak256Hash(zh[k-1].Bytes(), zh[k-1].Bytes())
	}
	return zh
}

// Clone returns a deep copy of the tree, sharing no backing storage with
// the original — callers can append to the clone speculatively and
// discard it without affecting the source.
func (t *Tree) Clone() *Tree {
	clone := &Tree{
		depth:      t.depth,
		count:      t.count,
		frontier:   make([]common.Hash, len(t.frontier)),
		zeroHashes: t.zeroHashes,
		leaves:     make([]common.Hash, len(t.leaves)),
	}
	copy(clone.frontier, t.frontier)
	copy(clone.leaves, t.leaves)

	return clone
}

// Depth returns the tree's fixed depth.
func (t *Tree) Depth() uint {
	return t.depth
}

// Count returns the number of leaves appended so far.
func (t *Tree) Count() uint64 {
	return t.count
}

// Append adds leaf at the next position, updating the frontier in O(depth)
// hashes. Fails with ErrTreeFull once the tree holds 2^depth leaves.
func (t *Tree) Append(leaf common.Hash) error {
	if t.depth < 64 && t.count >= uint64(1)<<t.depth {
		return ErrTreeFull
	}

	cur := leaf
	var level uint
	for level = 0; level < t.depth && (t.count>>level)&1 == 1; level++ {
		cur = crypto.Keccak256Hash(t.frontier[level].Bytes(), cur.Bytes())
	}
	t.frontier[level] = cur

	t.leaves = append(t.leaves, leaf)
	t.count++

	return nil
}

// Root computes the current root in O(depth) hashes from the frontier and
// the precomputed zero-hashes: starting from z_0, fold upward through each
// level, combining with the populated frontier slot when the
// corresponding bit of count is set, or with that level's zero-hash
// otherwise. A full tree's root is the node its last append stored at
// frontier[depth].
func (t *Tree) Root() common.Hash {
	if t.depth < 64 && t.count == uint64(1)<<t.depth {
		return t.frontier[t.depth]
	}

	acc := t.zeroHashes[0]
	for level := uint(0); level < t.depth; level++ {
		if (t.count>>level)&1 == 1 {
			acc = crypto.Keccak256Hash(t.frontier[level].Bytes(), acc.Bytes())
		} else {
			acc = crypto.Keccak256Hash(acc.Bytes(), t.zeroHashes[level].Bytes())
		}
	}
	return acc
}

// Proof returns the sibling path for the leaf at index, rebuilding the
// necessary internal nodes on demand rather than retaining a full tree.
// Subtrees entirely beyond the current leaf count collapse to the
// precomputed zero-hash for their level, so this costs O(count + depth)
// hashes rather than O(2^depth).
func (t *Tree) Proof(index uint64) (Proof, error) {
	if index >= t.count {
		return Proof{}, fmt.Errorf("imt: index %d out of range (count=%d)", index, t.count)
	}

	siblings := make([]common.Hash, t.depth)
	pos := index
	for level := uint(0); level < t.depth; level++ {
		siblingPos := pos ^ 1
		siblings[level] = t.subtreeRoot(siblingPos<<level, level)
		pos >>= 1
	}

	return Proof{Leaf: t.leaves[index], Index: index, Siblings: siblings}, nil
}

// subtreeRoot returns the root of the subtree of 2^level leaves starting
// at leaf position lo, treating any leaf at or beyond count as the zero
// leaf.
func (t *Tree) subtreeRoot(lo uint64, level uint) common.Hash {
	if lo >= t.count {
		return t.zeroHashes[level]
	}
	if level == 0 {
		return t.leaves[lo]
	}

	half := uint64(1) << (level - 1)
	left := t.subtreeRoot(lo, level-1)
	right := t.subtreeRoot(lo+half, level-1)

	return crypto.Keccak256Hash(left.Bytes(), right.Bytes())
}
