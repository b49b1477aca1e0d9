package web

import "errors"

// ErrWebValueMissing is returned by GetValues when called outside a
// request handled by this App (no Values were stashed in the context).
var ErrWebValueMissing = errors.New("web value missing from context")

// shutdownError is a special error that, when returned from a Handler,
// tells the App to begin shutting down the process rather than merely
// respond to the request. Used when a handler detects the sequencer's
// in-memory state can no longer be trusted.
type shutdownError struct {
	Message string
}

// NewShutdownError wraps message as a shutdownError.
func NewShutdownError(message string) error {
	return &shutdownError{message}
}

func (se *shutdownError) Error() string {
	return se.Message
}

// IsShutdown reports whether err is a shutdownError.
func IsShutdown(err error) bool {
	var se *shutdownError
	return errors.As(err, &se)
}
