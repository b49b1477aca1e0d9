// Package txn implements the sequencer's transaction variant type: its
// two kinds (dynamic and withdrawal), their canonical signing digest and
// hash, and the signing/recovery plumbing that turns an unsigned body into
// a SignedTx.
package txn

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/nolemma/foundation/nolemma/codec"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Kind identifies which of the two transaction variants a SignedTx carries.
type Kind byte

// The two transaction variants. Values match the codec package's
// discriminator bytes so a Kind can be used directly as one.
const (
	KindDynamic    Kind = Kind(codec.KindDynamicTx)
	KindWithdrawal Kind = Kind(codec.KindWithdrawalTx)
)

// ErrUnknownKind is returned when a SignedTx's Kind is neither Dynamic nor
// Withdrawal.
var ErrUnknownKind = errors.New("txn: unknown transaction kind")

// AccessTuple mirrors codec.AccessTuple for callers that don't want to
// import the codec package directly.
type AccessTuple = codec.AccessTuple

// Dynamic is the unsigned body of an EIP-1559-shaped transaction.
type Dynamic struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             uint64
	To                   *common.Address
	Value                *uint256.Int
	Data                 []byte
	AccessList           []AccessTuple
}

// Withdrawal is the unsigned body of a transaction committing a future L1
// exit.
type Withdrawal struct {
	Nonce     uint64
	Recipient common.Address
	Value     *uint256.Int
}

func (d Dynamic) body() codec.DynamicBody {
	return codec.DynamicBody{
		ChainID:              d.ChainID,
		Nonce:                d.Nonce,
		MaxPriorityFeePerGas: d.MaxPriorityFeePerGas,
		MaxFeePerGas:         d.MaxFeePerGas,
		GasLimit:             d.GasLimit,
		To:                   d.To,
		Value:                d.Value,
		Data:                 d.Data,
		AccessList:           d.AccessList,
	}
}

func (w Withdrawal) body() codec.WithdrawalBody {
	return codec.WithdrawalBody{
		Nonce:     w.Nonce,
		Recipient: w.Recipient,
		Value:     w.Value,
	}
}

// =============================================================================

// SignedTx is a fully assembled, signed transaction of either variant.
// Exactly one of Dynamic or Withdrawal is populated, per Kind.
type SignedTx struct {
	Kind       Kind
	Dynamic    Dynamic
	Withdrawal Withdrawal
	Sig        signature.Signature
}

// IsWithdrawal reports whether this transaction is a withdrawal, the
// variant the sequencer commits to the incremental tree during sealing.
func (tx SignedTx) IsWithdrawal() bool {
	return tx.Kind == KindWithdrawal
}

// SigningDigest returns the Keccak-256 digest signed at construction time:
// the canonical encoding of the body alone, excluding the signature.
func (tx SignedTx) SigningDigest() (signature.Hash, error) {
	enc, err := tx.unsignedEncoding()
	if err != nil {
		return signature.Hash{}, err
	}

	return signature.Keccak256(enc), nil
}

// Hash returns the transaction hash: the Keccak-256 of the full canonical
// encoding including the signature. Two transactions are equal iff their
// hashes are equal.
func (tx SignedTx) Hash() (signature.Hash, error) {
	enc, err := tx.signedEncoding()
	if err != nil {
		return signature.Hash{}, err
	}

	return signature.Keccak256(enc), nil
}

// Sender recovers the address that produced Sig over this transaction's
// signing digest.
func (tx SignedTx) Sender() (signature.Address, error) {
	digest, err := tx.SigningDigest()
	if err != nil {
		return signature.Address{}, err
	}

	return signature.Recover(tx.Sig, digest)
}

func (tx SignedTx) unsignedEncoding() ([]byte, error) {
	switch tx.Kind {
	case KindDynamic:
		return codec.EncodeUnsigned(codec.KindDynamicTx, tx.Dynamic.body())
	case KindWithdrawal:
		return codec.EncodeUnsigned(codec.KindWithdrawalTx, tx.Withdrawal.body())
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, tx.Kind)
	}
}

func (tx SignedTx) signedEncoding() ([]byte, error) {
	sig := codec.SigWire{R: tx.Sig.R, S: tx.Sig.S, V: tx.Sig.V}

	switch tx.Kind {
	case KindDynamic:
		return codec.EncodeSigned(codec.KindDynamicTx, tx.Dynamic.body(), sig)
	case KindWithdrawal:
		return codec.EncodeSigned(codec.KindWithdrawalTx, tx.Withdrawal.body(), sig)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, tx.Kind)
	}
}

// Encode returns the full canonical encoding of tx, including its
// signature — the wire format used by the submission interface.
func (tx SignedTx) Encode() ([]byte, error) {
	return tx.signedEncoding()
}

// =============================================================================

// SignDynamic computes the signing digest of an unsigned dynamic body and
// signs it with secret, returning the assembled SignedTx.
func SignDynamic(secret signature.Keypair, body Dynamic) (SignedTx, error) {
	tx := SignedTx{Kind: KindDynamic, Dynamic: body}

	digest, err := tx.SigningDigest()
	if err != nil {
		return SignedTx{}, err
	}

	sig, err := secret.Sign(digest)
	if err != nil {
		return SignedTx{}, err
	}
	tx.Sig = sig

	return tx, nil
}

// SignWithdrawal computes the signing digest of an unsigned withdrawal
// body and signs it with secret, returning the assembled SignedTx.
func SignWithdrawal(secret signature.Keypair, body Withdrawal) (SignedTx, error) {
	tx := SignedTx{Kind: KindWithdrawal, Withdrawal: body}

	digest, err := tx.SigningDigest()
	if err != nil {
		return SignedTx{}, err
	}

	sig, err := secret.Sign(digest)
	if err != nil {
		return SignedTx{}, err
	}
	tx.Sig = sig

	return tx, nil
}

// Decode parses the canonical encoding produced by Encode, dispatching on
// the leading discriminator byte.
func Decode(data []byte) (SignedTx, error) {
	kind, err := codec.PeekKind(data)
	if err != nil {
		return SignedTx{}, err
	}

	var sig codec.SigWire

	switch kind {
	case codec.KindDynamicTx:
		var body codec.DynamicBody
		if err := codec.DecodeSigned(data, codec.KindDynamicTx, &body, &sig); err != nil {
			return SignedTx{}, err
		}
		return SignedTx{
			Kind: KindDynamic,
			Dynamic: Dynamic{
				ChainID:              body.ChainID,
				Nonce:                body.Nonce,
				MaxPriorityFeePerGas: body.MaxPriorityFeePerGas,
				MaxFeePerGas:         body.MaxFeePerGas,
				GasLimit:             body.GasLimit,
				To:                   body.To,
				Value:                body.Value,
				Data:                 body.Data,
				AccessList:           body.AccessList,
			},
			Sig: signature.Signature{R: sig.R, S: sig.S, V: sig.V},
		}, nil

	case codec.KindWithdrawalTx:
		var body codec.WithdrawalBody
		if err := codec.DecodeSigned(data, codec.KindWithdrawalTx, &body, &sig); err != nil {
			return SignedTx{}, err
		}
		return SignedTx{
			Kind: KindWithdrawal,
			Withdrawal: Withdrawal{
				Nonce:     body.Nonce,
				Recipient: body.Recipient,
				Value:     body.Value,
			},
			Sig: signature.Signature{R: sig.R, S: sig.S, V: sig.V},
		}, nil

	default:
		return SignedTx{}, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}
