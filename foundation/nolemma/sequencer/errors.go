package sequencer

import (
	"errors"

	"github.com/ardanlabs/nolemma/foundation/nolemma/codec"
	"github.com/ardanlabs/nolemma/foundation/nolemma/imt"
	"github.com/ardanlabs/nolemma/foundation/nolemma/mempool"
	"github.com/ardanlabs/nolemma/foundation/nolemma/signature"
)

// The error kinds surfaced at the sequencer boundary. InvalidSignature,
// Duplicate, and MalformedEncoding are re-exported from the packages that
// originate them so callers can errors.Is against a single set of
// sentinels regardless of which layer detected the problem.
var (
	ErrInvalidSignature  = signature.ErrInvalidSignature
	ErrDuplicate         = mempool.ErrDuplicate
	ErrMalformedEncoding = codec.ErrMalformedEncoding
	ErrTreeFull          = imt.ErrTreeFull
)

// ErrSealing reports that a seal is in progress. Engine.Submit never
// returns it: a submit that races a seal simply blocks on the lock until
// the seal has drained the mempool.
var ErrSealing = errors.New("sequencer: sealing in progress")
