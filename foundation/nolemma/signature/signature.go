// Package signature provides the cryptographic identity and signing
// primitives used throughout the sequencer: Keccak-256 hashing,
// secp256k1 ECDSA sign/recover, and Ethereum-style address derivation.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Hash is a 32 byte Keccak-256 digest.
type Hash = common.Hash

// Address is a 20 byte Ethereum-style account address, the rightmost 20
// bytes of the Keccak-256 hash of the uncompressed public key.
type Address = common.Address

// ZeroHash represents the absence of a digest.
var ZeroHash Hash

// ErrInvalidSignature is returned when a signature's r/s values are out of
// range or recovery against the claimed digest fails.
var ErrInvalidSignature = errors.New("invalid signature")

// Keccak256 hashes the concatenation of the given byte slices.
func Keccak256(data ...[]byte) Hash {
	return crypto.Keccak256Hash(data...)
}

// =============================================================================

// Signature is the (r, s, v) envelope produced by signing a 32 byte digest.
// V is the recovery id, either 0 or 1 (pre-EIP-155; chain-id folding is not
// needed for this toy protocol). Some source material calls this field
// recovery_id; we keep V since that's what the signing routine below
// produces directly off the wire.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// bytes returns the 65 byte [R|S|V] wire representation expected by the
// underlying secp256k1 library.
func (s Signature) bytes() []byte {
	b := make([]byte, 65)
	copy(b[0:32], s.R[:])
	copy(b[32:64], s.S[:])
	b[64] = s.V
	return b
}

func fromBytes(sig []byte) Signature {
	var s Signature
	copy(s.R[:], sig[0:32])
	copy(s.S[:], sig[32:64])
	s.V = sig[64]
	return s
}

// Sign uses the specified private key to sign a 32 byte digest, producing a
// low-s normalized secp256k1 signature with recovery id. Signing a message
// directly is not offered; callers must hash first.
func Sign(secret *ecdsa.PrivateKey, digest Hash) (Signature, error) {
	sig, err := crypto.Sign(digest.Bytes(), secret)
	if err != nil {
		return Signature{}, err
	}

	return fromBytes(sig), nil
}

// Recover recovers the public key using v and derives the address that
// produced the signature over the given digest.
func Recover(sig Signature, digest Hash) (Address, error) {
	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])

	if sig.V > 1 {
		return Address{}, ErrInvalidSignature
	}

	if !crypto.ValidateSignatureValues(sig.V, r, s, false) {
		return Address{}, ErrInvalidSignature
	}

	pub, err := crypto.SigToPub(digest.Bytes(), sig.bytes())
	if err != nil {
		return Address{}, ErrInvalidSignature
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether sig recovers to address over digest.
func Verify(address Address, sig Signature, digest Hash) bool {
	got, err := Recover(sig, digest)
	return err == nil && got == address
}

// DeriveAddress computes the address for a public key.
func DeriveAddress(pub *ecdsa.PublicKey) Address {
	return crypto.PubkeyToAddress(*pub)
}

// =============================================================================

// Keypair is the sequencer's signing identity: a secret scalar plus the
// derived public key and address. The sequencer holds exactly one,
// generated or loaded at startup, and it is immutable thereafter.
type Keypair struct {
	Secret  *ecdsa.PrivateKey
	Public  *ecdsa.PublicKey
	Address Address
}

// NewKeypair builds a Keypair from an existing secret key.
func NewKeypair(secret *ecdsa.PrivateKey) Keypair {
	pub := &secret.PublicKey

	return Keypair{
		Secret:  secret,
		Public:  pub,
		Address: DeriveAddress(pub),
	}
}

// GenerateKeypair creates a new random Keypair.
func GenerateKeypair() (Keypair, error) {
	secret, err := crypto.GenerateKey()
	if err != nil {
		return Keypair{}, err
	}

	return NewKeypair(secret), nil
}

// KeypairFromHex loads a Keypair from a hex-encoded secret key seed, with or
// without the 0x prefix.
func KeypairFromHex(seed string) (Keypair, error) {
	secret, err := crypto.HexToECDSA(trim0x(seed))
	if err != nil {
		return Keypair{}, err
	}

	return NewKeypair(secret), nil
}

// Sign signs digest with this keypair's secret key.
func (k Keypair) Sign(digest Hash) (Signature, error) {
	return Sign(k.Secret, digest)
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
