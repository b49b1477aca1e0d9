// Package chain implements the block header and block types, their
// canonical digest, and the signing/verification operations the sequencer
// and its observers share.
package chain

import (
	"fmt"

	"github.com/ardanlabs/nolemma/foundation/nolemma/codec"
	"github.com/ardanlabs/nolemma/foundation/nolemma/merkle"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
	"github.com/ethereum/go-ethereum/common"
)

// Header is a block header's unsigned fields, in the exact order the
// canonical encoding uses: sequencer, number, timestamp, parent digest,
// withdrawals root, transactions root.
type Header struct {
	Sequencer        signature.Address
	Number           uint64
	Timestamp        uint64
	ParentDigest     *signature.Hash
	WithdrawalsRoot  signature.Hash
	TransactionsRoot signature.Hash
}

// Digest computes the Keccak-256 digest of Header's canonical encoding.
func (h Header) Digest() (signature.Hash, error) {
	enc, err := h.encode()
	if err != nil {
		return signature.Hash{}, err
	}

	return signature.Keccak256(enc), nil
}

func (h Header) body() codec.HeaderBody {
	body := codec.HeaderBody{
		Sequencer:        h.Sequencer,
		Number:           h.Number,
		Timestamp:        h.Timestamp,
		WithdrawalsRoot:  h.WithdrawalsRoot,
		TransactionsRoot: h.TransactionsRoot,
	}

	if h.ParentDigest != nil {
		body.HasParent = true
		body.ParentDigest = *h.ParentDigest
	}

	return body
}

func (h Header) encode() ([]byte, error) {
	return codec.EncodeUnsigned(codec.KindHeader, h.body())
}

// SignedHeader is a Header together with the sequencer's signature over
// its digest.
type SignedHeader struct {
	Header Header
	Sig    signature.Signature
}

// SignHeader computes header's digest and signs it with secret.
func SignHeader(secret signature.Keypair, header Header) (SignedHeader, error) {
	digest, err := header.Digest()
	if err != nil {
		return SignedHeader{}, err
	}

	sig, err := secret.Sign(digest)
	if err != nil {
		return SignedHeader{}, err
	}

	return SignedHeader{Header: header, Sig: sig}, nil
}

// Verify reports whether Sig recovers to expectedSequencer over the
// header's digest.
func (sh SignedHeader) Verify(expectedSequencer signature.Address) bool {
	digest, err := sh.Header.Digest()
	if err != nil {
		return false
	}

	return signature.Verify(expectedSequencer, sh.Sig, digest)
}

// Encode returns the canonical encoding of the signed header, the same
// wire format used inside a block.
func (sh SignedHeader) Encode() ([]byte, error) {
	return sh.encode()
}

func (sh SignedHeader) encode() ([]byte, error) {
	sig := codec.SigWire{R: sh.Sig.R, S: sh.Sig.S, V: sh.Sig.V}
	return codec.EncodeSigned(codec.KindHeader, sh.Header.body(), sig)
}

// DecodeSignedHeader parses the canonical encoding produced by
// SignedHeader's Encode method (via Block.Encode).
func DecodeSignedHeader(data []byte) (SignedHeader, error) {
	var body codec.HeaderBody
	var sig codec.SigWire

	if err := codec.DecodeSigned(data, codec.KindHeader, &body, &sig); err != nil {
		return SignedHeader{}, err
	}

	h := Header{
		Sequencer:        body.Sequencer,
		Number:           body.Number,
		Timestamp:        body.Timestamp,
		WithdrawalsRoot:  body.WithdrawalsRoot,
		TransactionsRoot: body.TransactionsRoot,
	}
	if body.HasParent {
		pd := body.ParentDigest
		h.ParentDigest = &pd
	}

	return SignedHeader{
		Header: h,
		Sig:    signature.Signature{R: sig.R, S: sig.S, V: sig.V},
	}, nil
}

// =============================================================================

// Block is a signed header plus the ordered transactions it commits to.
type Block struct {
	Header SignedHeader
	Txs    []txn.SignedTx
}

// TransactionsRoot computes the standard balanced Merkle root over this
// block's transaction hashes, in order.
func (b Block) TransactionsRoot() (signature.Hash, error) {
	leaves := make([]common.Hash, len(b.Txs))
	for i, tx := range b.Txs {
		h, err := tx.Hash()
		if err != nil {
			return signature.Hash{}, fmt.Errorf("hash tx %d: %w", i, err)
		}
		leaves[i] = h
	}

	return merkle.Root(leaves), nil
}

// Encode assembles the block's wire bytes from its signed header and
// transactions.
func (b Block) Encode() ([]byte, error) {
	headerEnc, err := b.Header.encode()
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	txEncs := make([][]byte, len(b.Txs))
	for i, tx := range b.Txs {
		enc, err := tx.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode tx %d: %w", i, err)
		}
		txEncs[i] = enc
	}

	return codec.EncodeBlock(headerEnc, txEncs)
}

// Decode parses the wire bytes produced by Encode.
func Decode(data []byte) (Block, error) {
	headerEnc, txEncs, err := codec.DecodeBlock(data)
	if err != nil {
		return Block{}, err
	}

	header, err := DecodeSignedHeader(headerEnc)
	if err != nil {
		return Block{}, fmt.Errorf("decode header: %w", err)
	}

	txs := make([]txn.SignedTx, len(txEncs))
	for i, enc := range txEncs {
		tx, err := txn.Decode(enc)
		if err != nil {
			return Block{}, fmt.Errorf("decode tx %d: %w", i, err)
		}
		txs[i] = tx
	}

	return Block{Header: header, Txs: txs}, nil
}
