// Package codec implements the canonical byte encoding used both for
// hashing and for signing: fixed field order (matching the data model),
// RLP for deterministic length-prefixed serialization, and a leading
// discriminator byte so no header encoding can collide with any
// transaction encoding, and no transaction kind can collide with another.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Discriminator bytes lead every canonical encoding. Headers and
// transactions are domain-separated from each other, and transaction
// variants are domain-separated from one another.
const (
	KindDynamicTx    byte = 0x01
	KindWithdrawalTx byte = 0x02
	KindHeader       byte = 0x10
)

// ErrMalformedEncoding is returned when a canonical decoder rejects input,
// either because the discriminator byte is unexpected or the RLP payload
// does not match the expected shape.
var ErrMalformedEncoding = errors.New("malformed canonical encoding")

// AccessTuple mirrors the EIP-2930 access list entry carried by dynamic
// transactions.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// DynamicBody is the signing/hashing preimage of a dynamic transaction.
// Field order matches the data model exactly: chain_id, nonce,
// max_priority_fee_per_gas, max_fee_per_gas, gas_limit, to, value, data,
// access_list.
type DynamicBody struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             uint64
	To                   *common.Address `rlp:"nil"`
	Value                *uint256.Int
	Data                 []byte
	AccessList           []AccessTuple
}

// WithdrawalBody is the signing/hashing preimage of a withdrawal
// transaction. Field order: nonce, recipient, value.
type WithdrawalBody struct {
	Nonce     uint64
	Recipient common.Address
	Value     *uint256.Int
}

// SigWire is the wire shape of a signature envelope.
type SigWire struct {
	R [32]byte
	S [32]byte
	V uint8
}

// HeaderBody is the canonical encoding of a block header. Field order:
// sequencer, number, timestamp, parent_digest, withdrawals_root,
// transactions_root. HasParent disambiguates a genesis header (number 0,
// no parent) from any header whose parent digest happens to be the zero
// hash, keeping the encoding injective.
type HeaderBody struct {
	Sequencer        common.Address
	Number           uint64
	Timestamp        uint64
	HasParent        bool
	ParentDigest     common.Hash
	WithdrawalsRoot  common.Hash
	TransactionsRoot common.Hash
}

// =============================================================================

// EncodeUnsigned prepends the discriminator byte to the RLP encoding of
// body. This is used for the signing digest, which must never include the
// signature.
func EncodeUnsigned(kind byte, body any) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(body)
	if err != nil {
		return nil, fmt.Errorf("rlp encode: %w", err)
	}

	out := make([]byte, 0, 1+len(enc))
	out = append(out, kind)
	out = append(out, enc...)

	return out, nil
}

// EncodeSigned appends the RLP encoding of sig after the RLP encoding of
// body, both prefixed by the discriminator byte. Because every RLP value
// is self-length-delimited, the two encodings can be read back
// sequentially without ambiguity.
func EncodeSigned(kind byte, body any, sig SigWire) ([]byte, error) {
	bodyEnc, err := rlp.EncodeToBytes(body)
	if err != nil {
		return nil, fmt.Errorf("rlp encode body: %w", err)
	}

	sigEnc, err := rlp.EncodeToBytes(sig)
	if err != nil {
		return nil, fmt.Errorf("rlp encode signature: %w", err)
	}

	out := make([]byte, 0, 1+len(bodyEnc)+len(sigEnc))
	out = append(out, kind)
	out = append(out, bodyEnc...)
	out = append(out, sigEnc...)

	return out, nil
}

// DecodeSigned reverses EncodeSigned, validating the leading discriminator
// byte matches kind before decoding the body and signature in order.
func DecodeSigned(data []byte, kind byte, bodyOut any, sigOut *SigWire) error {
	if len(data) == 0 || data[0] != kind {
		return ErrMalformedEncoding
	}

	stream := rlp.NewStream(bytes.NewReader(data[1:]), 0)

	if err := stream.Decode(bodyOut); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrMalformedEncoding, err)
	}

	if err := stream.Decode(sigOut); err != nil {
		return fmt.Errorf("%w: decode signature: %v", ErrMalformedEncoding, err)
	}

	return nil
}

// DecodeUnsigned reverses EncodeUnsigned.
func DecodeUnsigned(data []byte, kind byte, bodyOut any) error {
	if len(data) == 0 || data[0] != kind {
		return ErrMalformedEncoding
	}

	if err := rlp.DecodeBytes(data[1:], bodyOut); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}

	return nil
}

// PeekKind returns the leading discriminator byte of a canonical encoding.
func PeekKind(data []byte) (byte, error) {
	if len(data) == 0 {
		return 0, ErrMalformedEncoding
	}

	return data[0], nil
}

// =============================================================================

// blockWire is the canonical wire encoding of a full block: the signed
// header's raw encoding plus the ordered list of raw transaction
// encodings, each already self-describing via its own discriminator byte.
type blockWire struct {
	Header []byte
	Txs    [][]byte
}

// EncodeBlock assembles a block's wire bytes from its already-encoded
// signed header and transactions.
func EncodeBlock(header []byte, txs [][]byte) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(blockWire{Header: header, Txs: txs})
	if err != nil {
		return nil, fmt.Errorf("rlp encode block: %w", err)
	}

	return enc, nil
}

// DecodeBlock reverses EncodeBlock, returning the raw signed header bytes
// and the raw transaction bytes in order.
func DecodeBlock(data []byte) (header []byte, txs [][]byte, err error) {
	var w blockWire
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}

	return w.Header, w.Txs, nil
}
