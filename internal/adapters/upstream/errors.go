package upstream

import "errors"

// Gateway errors.
var (
	ErrUpstreamRejected = errors.New("scoring service rejected the request")
	ErrTransport        = errors.New("scoring service unreachable")
	ErrMalformedBody    = errors.New("scoring service returned a malformed body")
)
