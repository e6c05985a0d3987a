// Package errs defines the error kinds exchanged between the core
// components and the Lambda entrypoint. Errors are sentinel values
// checked with errors.Is, the same way the processors package keys
// off ErrNotGzipped and ErrUnknownProcessor.
package errs

import "errors"

var (
	// ErrFetchFailed indicates object-store retrieval failed; the job
	// should be retried by the caller.
	ErrFetchFailed = errors.New("object fetch failed")

	// ErrUnknownFormat indicates magic-byte container classification
	// failed.
	ErrUnknownFormat = errors.New("unknown container format")

	// ErrBadTimestamp indicates the configured timestamp could not be
	// parsed for a record.
	ErrBadTimestamp = errors.New("could not parse timestamp")

	// ErrParseError indicates a regex/JSON/XML parse failure outside
	// the FireLens recoverable path.
	ErrParseError = errors.New("failed to parse record")

	// ErrShardDispatchFailed indicates the work queue returned a
	// non-success response while submitting shard continuations.
	ErrShardDispatchFailed = errors.New("shard dispatch to work queue failed")
)

// Ignored is an error-shaped marker carrying the reason an object or
// record was skipped; it is not a failure and callers should not retry
// on it. The pipeline itself records skips as reason strings
// (Inspection.IgnoredReason, Meta.IgnoredReason, Result.Reason) and
// does not return this type.
type Ignored struct {
	Reason string
}

func (i *Ignored) Error() string { return i.Reason }

// NewIgnored builds an Ignored marker with the given reason.
func NewIgnored(reason string) *Ignored {
	return &Ignored{Reason: reason}
}
