package convert

import (
	"errors"
	"fmt"
)

// Failure taxonomy of the codecs. Archive-level and request-level conditions
// surface as distinct named failures so tooling can report specific
// remediation; recoverable conditions inside a codec (one bad page among
// many, one unresolved image) are absorbed into partial results instead.
var (
	// ErrInvalidContainer - the input is not a valid archive. Fatal, no
	// partial result.
	ErrInvalidContainer = errors.New("invalid container")

	// ErrMalformedPage - a page document cannot be parsed. Fatal for full
	// page decoding; wordlist extraction skips the page instead.
	ErrMalformedPage = errors.New("malformed page document")

	// ErrUnknownFormat - the requested codec is not registered. Raised
	// before any I/O.
	ErrUnknownFormat = errors.New("unknown format")
)

// GridNotFoundError names the grid a wordlist update was aimed at when the
// container has no page of that name.
type GridNotFoundError struct {
	Grid string
}

func (e *GridNotFoundError) Error() string {
	return fmt.Sprintf("grid %q not found in container", e.Grid)
}
