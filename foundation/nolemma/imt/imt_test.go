package imt_test

import (
	"testing"

	"github.com/ardanlabs/nolemma/foundation/nolemma/imt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	success = "✓"
	failed  = "✗"
)

func leaf(s string) common.Hash {
	return crypto.Keccak256Hash([]byte(s))
}

// fullTreeRoot recomputes the root of a depth-D tree from scratch by
// padding leaves with zero-hashes up to 2^depth and reducing pairwise, to
// check the frontier-based Root() against a naive implementation.
func fullTreeRoot(depth uint, leaves []common.Hash) common.Hash {
	size := uint64(1) << depth
	level := make([]common.Hash, size)

	zero := crypto.Keccak256Hash(make([]byte, 32))
	for i := range level {
		if uint64(i) < uint64(len(leaves)) {
			level[i] = leaves[i]
		} else {
			level[i] = zero
		}
	}

	for len(level) > 1 {
		next := make([]common.Hash, len(level)/2)
		for i := range next {
			next[i] = crypto.Keccak256Hash(level[2*i].Bytes(), level[2*i+1].Bytes())
		}
		level = next
	}

	return level[0]
}

func Test_EmptyTreeRootIsFullDepthZeroHash(t *testing.T) {
	t.Log("Given a fresh tree of depth 4.")
	{
		tr := imt.New(4)
		got := tr.Root()
		want := fullTreeRoot(4, nil)

		if got != want {
			t.Fatalf("%s\tEmpty tree root should equal the full-depth zero-hash.", failed)
		}
		t.Logf("%s\tEmpty tree root should equal the full-depth zero-hash.", success)
	}
}

func Test_FrontierRootMatchesFullTreeRecomputation(t *testing.T) {
	t.Log("Given a depth-4 tree with a handful of leaves appended one at a time.")
	{
		const depth = 4
		tr := imt.New(depth)

		var leaves []common.Hash
		for i, s := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			l := leaf(s)
			if err := tr.Append(l); err != nil {
				t.Fatalf("%s\tAppend %d should succeed: %s", failed, i, err)
			}
			leaves = append(leaves, l)

			got := tr.Root()
			want := fullTreeRoot(depth, leaves)
			if got != want {
				t.Fatalf("%s\tRoot after %d leaves should match full-tree recomputation.", failed, i+1)
			}
		}
		t.Logf("%s\tFrontier root should match full-tree recomputation after every append.", success)
	}
}

func Test_TreeFullRejectsOverflow(t *testing.T) {
	t.Log("Given a depth-2 tree filled to capacity.")
	{
		tr := imt.New(2)
		for i := 0; i < 4; i++ {
			if err := tr.Append(leaf("x")); err != nil {
				t.Fatalf("%s\tAppend %d of 4 should succeed: %s", failed, i, err)
			}
		}

		if err := tr.Append(leaf("overflow")); err != imt.ErrTreeFull {
			t.Fatalf("%s\tA fifth append should fail with ErrTreeFull, got %v.", failed, err)
		}
		t.Logf("%s\tShould reject appends beyond 2^depth leaves.", success)
	}
}

func Test_ProofSiblingsMatchFullTree(t *testing.T) {
	t.Log("Given a depth-3 tree with five leaves.")
	{
		const depth = 3
		tr := imt.New(depth)

		var leaves []common.Hash
		for _, s := range []string{"a", "b", "c", "d", "e"} {
			l := leaf(s)
			if err := tr.Append(l); err != nil {
				t.Fatalf("%s\tAppend should succeed: %s", failed, err)
			}
			leaves = append(leaves, l)
		}

		index := uint64(2)
		proof, err := tr.Proof(index)
		if err != nil {
			t.Fatalf("%s\tProof should succeed: %s", failed, err)
		}

		if proof.Leaf != leaves[index] {
			t.Fatalf("%s\tProof leaf should match the committed leaf.", failed)
		}
		if len(proof.Siblings) != depth {
			t.Fatalf("%s\tProof should carry exactly depth siblings.", failed)
		}

		cur := proof.Leaf
		pos := index
		for _, sib := range proof.Siblings {
			if pos%2 == 0 {
				cur = crypto.Keccak256Hash(cur.Bytes(), sib.Bytes())
			} else {
				cur = crypto.Keccak256Hash(sib.Bytes(), cur.Bytes())
			}
			pos /= 2
		}

		want := fullTreeRoot(depth, leaves)
		if cur != want {
			t.Fatalf("%s\tRecombining leaf with siblings should reproduce the root.", failed)
		}
		t.Logf("%s\tProof siblings should recombine into the tree's root.", success)
	}
}

func Test_ProofRejectsOutOfRangeIndex(t *testing.T) {
	t.Log("Given a tree with two leaves.")
	{
		tr := imt.New(4)
		tr.Append(leaf("a"))
		tr.Append(leaf("b"))

		if _, err := tr.Proof(2); err == nil {
			t.Fatalf("%s\tProof for an unappended index should fail.", failed)
		}
		t.Logf("%s\tShould reject proofs for indices beyond count.", success)
	}
}
