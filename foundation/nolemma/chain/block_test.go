package chain_test

import (
	"testing"

	"github.com/ardanlabs/nolemma/foundation/nolemma/chain"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	success = "✓"
	failed  = "✗"
)

func mustKeypair(t *testing.T) signature.Keypair {
	kp, err := signature.GenerateKeypair()
	if err != nil {
		t.Fatalf("%s\tShould be able to generate a keypair: %s", failed, err)
	}
	return kp
}

func Test_GenesisHeaderHasNoParent(t *testing.T) {
	t.Log("Given a genesis header with no parent digest.")
	{
		kp := mustKeypair(t)

		header := chain.Header{
			Sequencer:  kp.Address,
			Number:     0,
			Timestamp:  1000,
			ParentDigest: nil,
		}

		sh, err := chain.SignHeader(kp, header)
		if err != nil {
			t.Fatalf("%s\tShould be able to sign: %s", failed, err)
		}

		if !sh.Verify(kp.Address) {
			t.Fatalf("%s\tGenesis header signature should verify.", failed)
		}
		t.Logf("%s\tGenesis header signature should verify.", success)

		enc, err := sh.Header.Digest()
		if err != nil {
			t.Fatalf("%s\tShould be able to compute a digest: %s", failed, err)
		}
		if enc == (signature.Hash{}) {
			t.Fatalf("%s\tDigest should not be the zero hash.", failed)
		}
		t.Logf("%s\tDigest should be non-zero.", success)
	}
}

func Test_BlockEncodeDecodeRoundTrip(t *testing.T) {
	t.Log("Given a signed block with two transactions.")
	{
		kp := mustKeypair(t)

		tx1, err := txn.SignWithdrawal(kp, txn.Withdrawal{
			Nonce:     1,
			Recipient: common.HexToAddress("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"),
			Value:     uint256.NewInt(1),
		})
		if err != nil {
			t.Fatalf("%s\tShould sign withdrawal: %s", failed, err)
		}

		tx2, err := txn.SignDynamic(kp, txn.Dynamic{
			ChainID:              83479,
			Nonce:                2,
			MaxPriorityFeePerGas: uint256.NewInt(1),
			MaxFeePerGas:         uint256.NewInt(2),
			GasLimit:             21000,
			Value:                uint256.NewInt(0),
		})
		if err != nil {
			t.Fatalf("%s\tShould sign dynamic: %s", failed, err)
		}

		txs := []txn.SignedTx{tx1, tx2}

		var parent *signature.Hash

		header := chain.Header{
			Sequencer:    kp.Address,
			Number:       0,
			Timestamp:    1000,
			ParentDigest: parent,
		}

		block := chain.Block{Txs: txs}
		root, err := block.TransactionsRoot()
		if err != nil {
			t.Fatalf("%s\tShould compute a transactions root: %s", failed, err)
		}
		header.TransactionsRoot = root

		sh, err := chain.SignHeader(kp, header)
		if err != nil {
			t.Fatalf("%s\tShould sign header: %s", failed, err)
		}
		block.Header = sh

		enc, err := block.Encode()
		if err != nil {
			t.Fatalf("%s\tShould encode block: %s", failed, err)
		}

		got, err := chain.Decode(enc)
		if err != nil {
			t.Fatalf("%s\tShould decode block: %s", failed, err)
		}

		if len(got.Txs) != 2 {
			t.Fatalf("%s\tShould round-trip both transactions.", failed)
		}
		if got.Header.Header.ParentDigest != nil {
			t.Fatalf("%s\tGenesis block should round-trip with no parent digest.", failed)
		}
		if !got.Header.Verify(kp.Address) {
			t.Fatalf("%s\tDecoded header signature should still verify.", failed)
		}
		t.Logf("%s\tShould round-trip a signed block.", success)
	}
}
