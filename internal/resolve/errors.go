package resolve

import (
	"fmt"

	"canlidizi/internal/extract"
	"canlidizi/internal/pattern"
)

// FetchError reports a page that could not be loaded. Only a failure on the
// primary page is fatal.
type FetchError struct {
	URL   string
	Fatal bool
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is reported by a strategy that could not parse its input.
type ParseError = pattern.ParseError

// DecodeError is reported by a host handler that could not decode a payload.
type DecodeError = extract.DecodeError
