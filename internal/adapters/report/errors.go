package report

import "errors"

// ErrRender is returned when the PDF could not be produced.
var ErrRender = errors.New("render report")
