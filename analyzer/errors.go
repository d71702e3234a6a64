package analyzer

import "errors"

// ErrMalformedURL is reported when the input URL cannot be decomposed
// into scheme, host, path and query. The run never starts rendering.
var ErrMalformedURL = errors.New("analyzer: malformed URL")

// ErrOriginalUnreachable is reported when the original page itself
// could not be rendered, leaving no reference to compare against.
var ErrOriginalUnreachable = errors.New("analyzer: original page could not be rendered")
