package api

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/report.schema.json
var reportSchemaJSON []byte

var loadReportSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) { //nolint:gochecknoglobals // compiled once
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(reportSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReportSchema, err)
	}
	return s, nil
})
