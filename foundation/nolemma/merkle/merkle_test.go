package merkle_test

import (
	"testing"

	"github.com/ardanlabs/nolemma/foundation/nolemma/merkle"
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

func Test_EmptyRoot(t *testing.T) {
	t.Log("Given no transactions.")
	{
		got := merkle.Root(nil)
		if got != merkle.EmptyRoot {
			t.Fatalf("%s\tShould return the defined empty-list root.", failed)
		}
		t.Logf("%s\tShould return the defined empty-list root.", success)
	}
}

func Test_SingleLeafRoot(t *testing.T) {
	t.Log("Given a single transaction.")
	{
		l := leaf("a")
		got := merkle.Root([]common.Hash{l})
		if got != l {
			t.Fatalf("%s\tA single leaf tree's root should be the leaf itself.", failed)
		}
		t.Logf("%s\tA single leaf tree's root should be the leaf itself.", success)
	}
}

func Test_OddLeafDuplication(t *testing.T) {
	t.Log("Given three transactions.")
	{
		a, b, c := leaf("a"), leaf("b"), leaf("c")

		got := merkle.Root([]common.Hash{a, b, c})

		left := crypto.Keccak256Hash(a.Bytes(), b.Bytes())
		right := crypto.Keccak256Hash(c.Bytes(), c.Bytes())
		exp := crypto.Keccak256Hash(left.Bytes(), right.Bytes())

		if got != exp {
			t.Fatalf("%s\tShould duplicate the last leaf for an odd-sized level.", failed)
		}
		t.Logf("%s\tShould duplicate the last leaf for an odd-sized level.", success)
	}
}

func Test_OrderSensitive(t *testing.T) {
	t.Log("Given two transactions in two different orders.")
	{
		a, b := leaf("a"), leaf("b")

		r1 := merkle.Root([]common.Hash{a, b})
		r2 := merkle.Root([]common.Hash{b, a})

		if r1 == r2 {
			t.Fatalf("%s\tShould produce different roots for different orders.", failed)
		}
		t.Logf("%s\tShould produce different roots for different orders.", success)
	}
}

func Test_TreeWrapsRootAndLeaves(t *testing.T) {
	t.Log("Given a tree constructed from a leaf slice.")
	{
		a, b := leaf("a"), leaf("b")
		tr := merkle.New([]common.Hash{a, b})

		if tr.Root() != merkle.Root([]common.Hash{a, b}) {
			t.Fatalf("%s\tTree.Root() should match the free function.", failed)
		}
		if len(tr.Leaves()) != 2 {
			t.Fatalf("%s\tTree.Leaves() should return the original leaves.", failed)
		}
		t.Logf("%s\tTree should wrap the root and leaves consistently.", success)
	}
}
