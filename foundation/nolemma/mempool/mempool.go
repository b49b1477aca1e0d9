// Package mempool maintains the sequencer's pool of pending transactions
// awaiting the next seal.
package mempool

import (
	"errors"
	"sync"

	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
	"github.com/ardanlabs/nolemma/foundation/nolemma/txn"
)

// ErrDuplicate is returned by Insert when a transaction with the same
// hash is already pending.
var ErrDuplicate = errors.New("duplicate transaction")

// Mempool holds pending transactions in insertion order, deduplicated by
// transaction hash. Guarded by a single mutex; Drain copies out the
// pending list and resets the pool under the lock, leaving root
// computation and sealing work to run outside it.
type Mempool struct {
	mu    sync.Mutex
	order []txn.SignedTx
	known map[signature.Hash]struct{}
}

// New constructs an empty mempool.
func New() *Mempool {
	return &Mempool{
		known: make(map[signature.Hash]struct{}),
	}
}

// Count returns the number of pending transactions.
func (mp *Mempool) Count() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.order)
}

// Insert admits tx to the pool if its hash has not already been seen by
// this mempool. Callers are responsible for checking seen-in-chain
// duplicates separately (the sequencer engine tracks those).
func (mp *Mempool) Insert(tx txn.SignedTx, hash signature.Hash) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.known[hash]; exists {
		return ErrDuplicate
	}

	mp.known[hash] = struct{}{}
	mp.order = append(mp.order, tx)

	return nil
}

// Drain atomically removes and returns every pending transaction, in
// insertion order, resetting the pool to empty.
func (mp *Mempool) Drain() []txn.SignedTx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	drained := mp.order
	mp.order = nil
	mp.known = make(map[signature.Hash]struct{})

	return drained
}
