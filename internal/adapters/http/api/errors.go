package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrInvalidReport    = errors.New("invalid report payload")
	ErrReportSchema     = errors.New("report schema unavailable")
)
