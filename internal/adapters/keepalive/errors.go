package keepalive

import "errors"

// Pinger errors.
var (
	ErrAlreadyStarted = errors.New("keep-alive pinger already started")
	ErrNotStarted     = errors.New("keep-alive pinger not started")
)
