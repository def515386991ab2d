package site

import "errors"

var (
	// ErrGenerate indicates a page could not be generated.
	ErrGenerate = errors.New("failed to generate page")
	// ErrServe indicates static content could not be served.
	ErrServe = errors.New("failed to serve static content")
	// ErrNoResult is returned when a report is requested before any
	// successful assessment.
	ErrNoResult = errors.New("no assessment result in this session")
)
