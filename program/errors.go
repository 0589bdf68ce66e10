package program

import "github.com/pkg/errors"

// Error classes for the whole lowering pipeline. Individual sites wrap
// these with errors.Wrapf so callers can classify with errors.Is while
// the message names the offending node or value.
var (
	// ErrMalformedInput marks errors caused by the caller's graph or data:
	// bad header bytes, symbolic shapes, in-place writes through an alias.
	// Surfaced immediately, never retried.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvariant marks internal contradictions that indicate a compiler
	// bug, such as aliasing a value whose lifetime has already closed.
	// Fatal for the compilation.
	ErrInvariant = errors.New("invariant violation")

	// ErrCapacity marks a configured memory-pool ceiling being exceeded.
	// Fatal for this compilation only.
	ErrCapacity = errors.New("capacity exceeded")
)
