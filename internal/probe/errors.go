package probe

import "errors"

var (
	// ErrUnhealthy is returned when a health check does not answer 200.
	ErrUnhealthy = errors.New("health check failed")
	// ErrRequest is returned when the front-end rejects a request.
	ErrRequest = errors.New("request failed")
)
