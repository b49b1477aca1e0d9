// Package sequencer implements the core state machine: mempool
// admission, periodic sealing, parent-chaining, header signing, and block
// verification. It is the single permissioned writer of the chain.
package sequencer

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/nolemma/foundation/nolemma/chain"
	"github.com/ardanlabs/nolemma/foundation/nolemma/imt"
	"github.com/ardanlabs/nolemma/foundation/nolemma/mempool"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
)

// EventHandler is called with human-readable progress lines as the engine
// submits and seals transactions. The HTTP and CLI layers wire this to
// their structured loggers.
type EventHandler func(v string, args ...any)

// Config configures a new Engine.
type Config struct {
	Keypair    signature.Keypair
	SealPeriod time.Duration
	TreeDepth  uint
	EvHandler  EventHandler

	// Now returns the current time used for block timestamps. Defaults to
	// time.Now; a caller can override it to control the clock Seal reads.
	Now func() time.Time
}

// Engine is the sequencer's in-memory state machine. Chain and
// withdrawals are mutated only while mu is held, by Seal; Submit touches
// mu only to check and record transaction hashes, and otherwise defers to
// the mempool's own lock.
type Engine struct {
	keypair    signature.Keypair
	sealPeriod time.Duration
	evHandler  EventHandler
	now        func() time.Time

	mp *mempool.Mempool

	mu          sync.Mutex
	chain       []chain.Block
	withdrawals *imt.Tree
	seenHashes  map[signature.Hash]struct{}
}

// New constructs an Engine with an empty chain and withdrawal tree.
func New(cfg Config) *Engine {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	depth := cfg.TreeDepth
	if depth == 0 {
		depth = imt.DefaultDepth
	}

	return &Engine{
		keypair:     cfg.Keypair,
		sealPeriod:  cfg.SealPeriod,
		evHandler:   ev,
		now:         now,
		mp:          mempool.New(),
		withdrawals: imt.New(depth),
		seenHashes:  make(map[signature.Hash]struct{}),
	}
}

// Address returns the sequencer's signing address.
func (e *Engine) Address() signature.Address {
	return e.keypair.Address
}

// Submit validates tx's signature, rejects it if its hash has already
// been seen this process lifetime (pending or sealed), and otherwise
// admits it to the mempool in arrival order.
func (e *Engine) Submit(tx txn.SignedTx) error {
	digest, err := tx.SigningDigest()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}

	sender, err := signature.Recover(tx.Sig, digest)
	if err != nil {
		return ErrInvalidSignature
	}

	hash, err := tx.Hash()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}

	e.mu.Lock()
	if _, seen := e.seenHashes[hash]; seen {
		e.mu.Unlock()
		return ErrDuplicate
	}
	e.seenHashes[hash] = struct{}{}
	e.mu.Unlock()

	if err := e.mp.Insert(tx, hash); err != nil {
		return err
	}

	e.evHandler("sequencer: submit: accepted tx[%s] from[%s]", hash, sender)

	return nil
}

// MempoolLen reports the number of transactions currently pending.
func (e *Engine) MempoolLen() int {
	return e.mp.Count()
}

// Seal atomically drains the mempool, computes the transactions root,
// appends any withdrawal transactions to the withdrawal tree, assembles
// and signs the next header, and appends the resulting block to the
// chain. Sealing an empty mempool is permitted.
//
// An error here is fatal to the sequencer: withdrawal tree exhaustion or
// a signing failure in the underlying cryptographic library, neither of
// which the toy protocol can recover from mid-process.
func (e *Engine) Seal() (chain.Block, error) {
	txs := e.mp.Drain()

	e.mu.Lock()
	defer e.mu.Unlock()

	block := chain.Block{Txs: txs}

	txRoot, err := block.TransactionsRoot()
	if err != nil {
		return chain.Block{}, fmt.Errorf("transactions root: %w", err)
	}

	for _, tx := range txs {
		if !tx.IsWithdrawal() {
			continue
		}

		hash, err := tx.Hash()
		if err != nil {
			return chain.Block{}, fmt.Errorf("hash withdrawal tx: %w", err)
		}

		if err := e.withdrawals.Append(hash); err != nil {
			return chain.Block{}, err
		}
	}
	withdrawalsRoot := e.withdrawals.Root()

	var parentDigest *signature.Hash
	var number uint64
	timestamp := uint64(e.now().Unix())

	if n := len(e.chain); n > 0 {
		parent := e.chain[n-1].Header.Header

		pd, err := parent.Digest()
		if err != nil {
			return chain.Block{}, fmt.Errorf("parent digest: %w", err)
		}
		parentDigest = &pd
		number = parent.Number + 1

		if timestamp < parent.Timestamp {
			e.evHandler("sequencer: seal: WARNING: clock skew detected, correcting timestamp")
			timestamp = parent.Timestamp
		}
	}

	header := chain.Header{
		Sequencer:        e.keypair.Address,
		Number:           number,
		Timestamp:        timestamp,
		ParentDigest:     parentDigest,
		WithdrawalsRoot:  withdrawalsRoot,
		TransactionsRoot: txRoot,
	}

	signedHeader, err := chain.SignHeader(e.keypair, header)
	if err != nil {
		return chain.Block{}, fmt.Errorf("sign header: %w", err)
	}
	block.Header = signedHeader

	e.chain = append(e.chain, block)

	e.evHandler("sequencer: seal: sealed block[%d] txs[%d] withdrawals_root[%s]", number, len(txs), withdrawalsRoot)

	return block, nil
}

// Head returns the most recently sealed header, if any.
func (e *Engine) Head() (chain.SignedHeader, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.chain) == 0 {
		return chain.SignedHeader{}, false
	}

	return e.chain[len(e.chain)-1].Header, true
}

// GetBlock returns the sealed block at number, if any.
func (e *Engine) GetBlock(number uint64) (chain.Block, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if number >= uint64(len(e.chain)) {
		return chain.Block{}, false
	}

	return e.chain[number], true
}

// ChainLen reports the number of sealed blocks.
func (e *Engine) ChainLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.chain)
}
