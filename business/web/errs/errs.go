// Package errs provides the HTTP-layer error wrapper used to attach a
// status code to the sequencer's sentinel errors (InvalidSignature,
// Duplicate, MalformedEncoding) before they cross the API boundary.
package errs

import "errors"

// Response is the JSON shape returned to the client on a Trusted error.
type Response struct {
	Error string `json:"error"`
}

// Trusted carries an error through the application with an HTTP status
// code attached. Handlers wrap sentinel errors they understand with
// NewTrusted; anything left unwrapped is treated as a 500 by the errors
// middleware.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps err with an HTTP status code. Use this for expected
// errors — InvalidSignature, Duplicate, MalformedEncoding — never for
// unexpected ones.
func NewTrusted(err error, status int) error {
	return &Trusted{Err: err, Status: status}
}

// Error implements the error interface using the wrapped error's message.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// IsTrusted reports whether err (or something it wraps) is a Trusted.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted extracts the Trusted from err, or nil if it isn't one.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
