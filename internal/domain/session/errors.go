package session

import "errors"

// Session errors.
var (
	ErrStaleGeneration = errors.New("response belongs to a superseded submission")
	ErrNotSubmitting   = errors.New("session has no submission in flight")
)
