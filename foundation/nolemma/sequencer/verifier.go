package sequencer

import (
	"github.com/ardanlabs/nolemma/foundation/nolemma/chain"
	"github.com/ardanlabs/nolemma/foundation/nolemma/imt"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
)

// Verifier independently checks a stream of sealed blocks against an
// expected sequencer address, maintaining its own rolling withdrawal tree
// rather than rebuilding one from scratch on every call. It is the type
// an external driver holds to audit blocks as they're pushed.
type Verifier struct {
	sequencer   signature.Address
	withdrawals *imt.Tree
	lastDigest  *signature.Hash
	nextNumber  uint64
}

// NewVerifier constructs a Verifier expecting blocks signed by sequencer,
// rooted at a fresh withdrawal tree of the given depth.
func NewVerifier(sequencer signature.Address, depth uint) *Verifier {
	return &Verifier{
		sequencer:   sequencer,
		withdrawals: imt.New(depth),
	}
}

// VerifyBlock checks block against every condition in the sequencer's
// public verification contract, advancing the verifier's rolling state
// (expected parent digest, expected number, withdrawal tree) only if the
// block passes. Blocks must be presented in chain order; out-of-order
// presentation fails verification rather than silently resyncing.
func (v *Verifier) VerifyBlock(block chain.Block) bool {
	header := block.Header.Header

	if header.Sequencer != v.sequencer {
		return false
	}

	if !sameParent(header.ParentDigest, v.lastDigest) {
		return false
	}

	if header.Number != v.nextNumber {
		return false
	}

	txRoot, err := block.TransactionsRoot()
	if err != nil || txRoot != header.TransactionsRoot {
		return false
	}

	withdrawals, ok := v.foldWithdrawals(block)
	if !ok || withdrawals.Root() != header.WithdrawalsRoot {
		return false
	}

	for _, tx := range block.Txs {
		if _, err := tx.Sender(); err != nil {
			return false
		}
	}

	if !block.Header.Verify(v.sequencer) {
		return false
	}

	digest, err := header.Digest()
	if err != nil {
		return false
	}

	v.withdrawals = withdrawals
	v.lastDigest = &digest
	v.nextNumber++

	return true
}

// foldWithdrawals appends block's withdrawal-transaction hashes, in
// order, to a scratch copy of the tree and returns that copy. VerifyBlock
// commits it only once the whole block has passed, so a failed block
// never mutates the verifier's committed state.
func (v *Verifier) foldWithdrawals(block chain.Block) (*imt.Tree, bool) {
	scratch := v.withdrawals.Clone()

	for _, tx := range block.Txs {
		if !tx.IsWithdrawal() {
			continue
		}

		hash, err := tx.Hash()
		if err != nil {
			return nil, false
		}

		if err := scratch.Append(hash); err != nil {
			return nil, false
		}
	}

	return scratch, true
}

func sameParent(got, want *signature.Hash) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}

	return *got == *want
}
