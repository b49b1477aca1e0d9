package signature_test

import (
	"testing"

	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func Test_SignRecoverVerify(t *testing.T) {
	t.Log("Given the need to sign and recover a digest.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("%s\tShould be able to parse the private key: %s", failed, err)
		}
		t.Logf("%s\tShould be able to parse the private key.", success)

		kp := signature.NewKeypair(pk)
		digest := signature.Keccak256([]byte("block digest material"))

		sig, err := kp.Sign(digest)
		if err != nil {
			t.Fatalf("%s\tShould be able to sign a digest: %s", failed, err)
		}
		t.Logf("%s\tShould be able to sign a digest.", success)

		addr, err := signature.Recover(sig, digest)
		if err != nil {
			t.Fatalf("%s\tShould be able to recover the address: %s", failed, err)
		}
		t.Logf("%s\tShould be able to recover the address.", success)

		if addr != kp.Address {
			t.Fatalf("%s\tShould recover the signer's address: got %s, exp %s", failed, addr, kp.Address)
		}
		t.Logf("%s\tShould recover the signer's address.", success)

		if !signature.Verify(kp.Address, sig, digest) {
			t.Fatalf("%s\tShould verify the signature against the signer's address.", failed)
		}
		t.Logf("%s\tShould verify the signature against the signer's address.", success)
	}
}

func Test_InvalidSignatureRejected(t *testing.T) {
	t.Log("Given a signature whose r component is zero.")
	{
		digest := signature.Keccak256([]byte("some digest"))

		var sig signature.Signature
		// r and s are left as zero, an invalid scalar for secp256k1.

		if _, err := signature.Recover(sig, digest); err == nil {
			t.Fatalf("%s\tShould fail to recover from a zero r/s signature.", failed)
		}
		t.Logf("%s\tShould fail to recover from a zero r/s signature.", success)
	}
}

func Test_DifferentDigestsSameAddressSameKey(t *testing.T) {
	t.Log("Given the same key signing two different digests.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("%s\tShould be able to parse the private key: %s", failed, err)
		}
		kp := signature.NewKeypair(pk)

		d1 := signature.Keccak256([]byte("one"))
		d2 := signature.Keccak256([]byte("two"))

		sig1, err := kp.Sign(d1)
		if err != nil {
			t.Fatalf("%s\tShould be able to sign digest one: %s", failed, err)
		}
		sig2, err := kp.Sign(d2)
		if err != nil {
			t.Fatalf("%s\tShould be able to sign digest two: %s", failed, err)
		}

		addr1, err := signature.Recover(sig1, d1)
		if err != nil {
			t.Fatalf("%s\tShould be able to recover address one: %s", failed, err)
		}
		addr2, err := signature.Recover(sig2, d2)
		if err != nil {
			t.Fatalf("%s\tShould be able to recover address two: %s", failed, err)
		}

		if addr1 != addr2 {
			t.Fatalf("%s\tShould recover the same address for both digests: got %s and %s", failed, addr1, addr2)
		}
		t.Logf("%s\tShould recover the same address for both digests.", success)

		// A signature for one digest must not verify against the other.
		if signature.Verify(addr1, sig1, d2) {
			t.Fatalf("%s\tShould not verify sig1 against d2.", failed)
		}
		t.Logf("%s\tShould not verify sig1 against d2.", success)
	}
}
