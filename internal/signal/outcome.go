package signal

import "time"

// SkipReason explains why a receiver was skipped without being invoked.
type SkipReason int

const (
	// SkipNone means the receiver was not skipped.
	SkipNone SkipReason = iota

	// SkipGuardHeld means a declarative receiver fired while another
	// declarative resolution was already in progress.
	SkipGuardHeld

	// SkipMissingPath means the descriptor had no filename or filepath.
	SkipMissingPath

	// SkipMissingModule means the module file does not exist on disk.
	SkipMissingModule

	// SkipNoFunction means the descriptor had an empty function name.
	SkipNoFunction

	// SkipSenderFilter means the sender's identity label did not match
	// the descriptor's sender filter.
	SkipSenderFilter

	// SkipResolveFailed means the module loaded but the class, method,
	// or function could not be resolved, or no loader was configured.
	SkipResolveFailed
)

// String returns the skip reason name.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipGuardHeld:
		return "guard-held"
	case SkipMissingPath:
		return "missing-path"
	case SkipMissingModule:
		return "missing-module"
	case SkipNoFunction:
		return "no-function"
	case SkipSenderFilter:
		return "sender-filter"
	case SkipResolveFailed:
		return "resolve-failed"
	default:
		return "unknown"
	}
}

// Outcome records what happened to a single receiver during one dispatch.
// The boolean Dispatch return collapses a slice of outcomes to "did the
// signal have any registered receivers"; callers that need per-receiver
// visibility use DispatchDetailed instead.
type Outcome struct {
	// Signal is the dispatched signal name.
	Signal string

	// Index is the receiver's position in the signal's sequence.
	Index int

	// Kind is the receiver descriptor kind.
	Kind Kind

	// Invoked reports whether the receiver actually ran.
	Invoked bool

	// Reason explains a skip; SkipNone when Invoked is true.
	Reason SkipReason

	// Err carries resolution failure detail for skipped receivers.
	Err error

	// Duration is the time spent on this receiver, including resolution.
	Duration time.Duration
}
