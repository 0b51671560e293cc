package signal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dispatch core.
var (
	// ErrInvalidSignal is returned when Dispatch is called with an empty
	// signal name.
	ErrInvalidSignal = errors.New("invalid signal name")

	// ErrMissingSender is returned when Dispatch is called with a nil or
	// empty sender identity. It is wrapped with the signal name.
	ErrMissingSender = errors.New("missing sender")

	// ErrNoLoader is recorded as a skip cause when a declarative receiver
	// fires on a dispatcher constructed without a ModuleLoader.
	ErrNoLoader = errors.New("no module loader configured")
)

// ReceiverError wraps an error a receiver raised during its own execution.
// Unlike resolution failures, these are not swallowed: they propagate to
// Dispatch's caller and abort the remaining receivers in the sequence.
type ReceiverError struct {
	// Signal is the signal being dispatched.
	Signal string

	// Index is the receiver's position in the signal's sequence.
	Index int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ReceiverError) Error() string {
	return fmt.Sprintf("receiver %d for signal %s: %v", e.Index, e.Signal, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReceiverError) Unwrap() error {
	return e.Err
}
