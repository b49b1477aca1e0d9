package mempool_test

import (
	"testing"

	"github.com/ardanlabs/nolemma/foundation/nolemma/mempool"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
	"github.com/holiman/uint256"
)

const (
	success = "✓"
	failed  = "✗"
)

func signedWithdrawal(t *testing.T, nonce uint64) (txn.SignedTx, signature.Hash) {
	kp, err := signature.GenerateKeypair()
	if err != nil {
		t.Fatalf("%s\tShould generate keypair: %s", failed, err)
	}

	tx, err := txn.SignWithdrawal(kp, txn.Withdrawal{
		Nonce:     nonce,
		Recipient: kp.Address,
		Value:     uint256.NewInt(1),
	})
	if err != nil {
		t.Fatalf("%s\tShould sign: %s", failed, err)
	}

	hash, err := tx.Hash()
	if err != nil {
		t.Fatalf("%s\tShould hash: %s", failed, err)
	}

	return tx, hash
}

func Test_InsertRejectsDuplicateHash(t *testing.T) {
	t.Log("Given a mempool with one inserted transaction.")
	{
		mp := mempool.New()
		tx, hash := signedWithdrawal(t, 1)

		if err := mp.Insert(tx, hash); err != nil {
			t.Fatalf("%s\tFirst insert should succeed: %s", failed, err)
		}
		t.Logf("%s\tFirst insert should succeed.", success)

		if err := mp.Insert(tx, hash); err != mempool.ErrDuplicate {
			t.Fatalf("%s\tSecond insert of the same hash should be rejected, got %v.", failed, err)
		}
		t.Logf("%s\tSecond insert of the same hash should be rejected.", success)

		if mp.Count() != 1 {
			t.Fatalf("%s\tMempool should still contain exactly one transaction.", failed)
		}
		t.Logf("%s\tMempool should contain exactly one transaction.", success)
	}
}

func Test_DrainPreservesInsertionOrderAndEmpties(t *testing.T) {
	t.Log("Given three transactions inserted in order.")
	{
		mp := mempool.New()

		tx1, h1 := signedWithdrawal(t, 1)
		tx2, h2 := signedWithdrawal(t, 2)
		tx3, h3 := signedWithdrawal(t, 3)

		for _, pair := range []struct {
			tx   txn.SignedTx
			hash signature.Hash
		}{{tx1, h1}, {tx2, h2}, {tx3, h3}} {
			if err := mp.Insert(pair.tx, pair.hash); err != nil {
				t.Fatalf("%s\tInsert should succeed: %s", failed, err)
			}
		}

		drained := mp.Drain()
		if len(drained) != 3 {
			t.Fatalf("%s\tShould drain all three transactions.", failed)
		}

		got1, _ := drained[0].Hash()
		got2, _ := drained[1].Hash()
		got3, _ := drained[2].Hash()
		if got1 != h1 || got2 != h2 || got3 != h3 {
			t.Fatalf("%s\tDrained order should match insertion order.", failed)
		}
		t.Logf("%s\tDrain should preserve insertion order.", success)

		if mp.Count() != 0 {
			t.Fatalf("%s\tMempool should be empty after drain.", failed)
		}
		t.Logf("%s\tMempool should be empty after drain.", success)
	}
}

func Test_DrainResetsDuplicateTracking(t *testing.T) {
	t.Log("Given a transaction that was drained once.")
	{
		mp := mempool.New()
		tx, hash := signedWithdrawal(t, 1)

		if err := mp.Insert(tx, hash); err != nil {
			t.Fatalf("%s\tInsert should succeed: %s", failed, err)
		}
		mp.Drain()

		if err := mp.Insert(tx, hash); err != nil {
			t.Fatalf("%s\tRe-inserting after drain should not be treated as a duplicate: %s", failed, err)
		}
		t.Logf("%s\tRe-inserting the same hash after a drain should succeed.", success)
	}
}
