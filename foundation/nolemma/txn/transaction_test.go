package txn_test

import (
	"testing"

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

func Test_SignDynamicRecoversToSigner(t *testing.T) {
	t.Log("Given a dynamic transaction signed by a generated keypair.")
	{
		kp := mustKeypair(t)
		to := common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")

		tx, err := txn.SignDynamic(kp, txn.Dynamic{
			ChainID:              83479,
			Nonce:                1,
			MaxPriorityFeePerGas: uint256.NewInt(1),
			MaxFeePerGas:         uint256.NewInt(2),
			GasLimit:             21000,
			To:                   &to,
			Value:                uint256.NewInt(5),
		})
		if err != nil {
			t.Fatalf("%s\tShould be able to sign: %s", failed, err)
		}
		t.Logf("%s\tShould be able to sign.", success)

		sender, err := tx.Sender()
		if err != nil {
			t.Fatalf("%s\tShould be able to recover a sender: %s", failed, err)
		}
		if sender != kp.Address {
			t.Fatalf("%s\tRecovered sender should equal the signer's address.", failed)
		}
		t.Logf("%s\tRecovered sender should equal the signer's address.", success)
	}
}

func Test_EncodeDecodeRoundTrip(t *testing.T) {
	t.Log("Given a signed withdrawal transaction.")
	{
		kp := mustKeypair(t)

		tx, err := txn.SignWithdrawal(kp, txn.Withdrawal{
			Nonce:     4,
			Recipient: common.HexToAddress("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"),
			Value:     uint256.NewInt(1000),
		})
		if err != nil {
			t.Fatalf("%s\tShould be able to sign: %s", failed, err)
		}

		enc, err := tx.Encode()
		if err != nil {
			t.Fatalf("%s\tShould be able to encode: %s", failed, err)
		}

		got, err := txn.Decode(enc)
		if err != nil {
			t.Fatalf("%s\tShould be able to decode: %s", failed, err)
		}

		if got.Kind != txn.KindWithdrawal || got.Withdrawal.Nonce != 4 {
			t.Fatalf("%s\tShould round-trip the withdrawal body.", failed)
		}
		t.Logf("%s\tShould round-trip the withdrawal body.", success)

		gotHash, err := got.Hash()
		if err != nil {
			t.Fatalf("%s\tShould be able to hash: %s", failed, err)
		}
		wantHash, err := tx.Hash()
		if err != nil {
			t.Fatalf("%s\tShould be able to hash: %s", failed, err)
		}
		if gotHash != wantHash {
			t.Fatalf("%s\tDecoded transaction should hash identically to the original.", failed)
		}
		t.Logf("%s\tDecoded transaction should hash identically to the original.", success)
	}
}

func Test_TamperedSignatureFailsRecovery(t *testing.T) {
	t.Log("Given a signed transaction with a zeroed r value.")
	{
		kp := mustKeypair(t)

		tx, err := txn.SignWithdrawal(kp, txn.Withdrawal{
			Nonce:     1,
			Recipient: common.HexToAddress("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"),
			Value:     uint256.NewInt(1),
		})
		if err != nil {
			t.Fatalf("%s\tShould be able to sign: %s", failed, err)
		}

		tx.Sig.R = [32]byte{}

		if _, err := tx.Sender(); err == nil {
			t.Fatalf("%s\tRecovering a zero-r signature should fail.", failed)
		}
		t.Logf("%s\tRecovering a zero-r signature should fail.", success)
	}
}

func Test_IsWithdrawalDistinguishesVariants(t *testing.T) {
	t.Log("Given one dynamic and one withdrawal transaction.")
	{
		kp := mustKeypair(t)

		dyn, err := txn.SignDynamic(kp, txn.Dynamic{
			ChainID:              83479,
			Nonce:                1,
			MaxPriorityFeePerGas: uint256.NewInt(1),
			MaxFeePerGas:         uint256.NewInt(2),
			GasLimit:             21000,
			Value:                uint256.NewInt(0),
		})
		if err != nil {
			t.Fatalf("%s\tShould be able to sign dynamic: %s", failed, err)
		}

		wd, err := txn.SignWithdrawal(kp, txn.Withdrawal{
			Nonce:     2,
			Recipient: common.HexToAddress("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"),
			Value:     uint256.NewInt(1),
		})
		if err != nil {
			t.Fatalf("%s\tShould be able to sign withdrawal: %s", failed, err)
		}

		if dyn.IsWithdrawal() {
			t.Fatalf("%s\tA dynamic transaction should not be a withdrawal.", failed)
		}
		if !wd.IsWithdrawal() {
			t.Fatalf("%s\tA withdrawal transaction should be a withdrawal.", failed)
		}
		t.Logf("%s\tShould correctly distinguish transaction variants.", success)
	}
}
