package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// ReportHandler renders PDF reports for callers that already hold a result.
type ReportHandler struct {
	renderer ReportRenderer
	logger   logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(renderer ReportRenderer, log logger.Logger) *ReportHandler {
	return &ReportHandler{renderer: renderer, logger: log}
}

// HandleReport handles POST /report. The body must match the embedded report
// schema; the response is a PDF attachment.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	schema, err := loadReportSchema()
	if err != nil {
		h.logger.Error(ctx, "report schema failed to compile", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "invalid_report",
			Message: ErrInvalidReport.Error(),
			Details: details,
		})
		return
	}

	var in report.Input
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_report", fmt.Errorf("%w: %w", ErrInvalidReport, err))
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, in); err != nil {
		h.logger.Error(ctx, "report rendering failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}
	metrics.RecordReportRendered("api")
	WritePDF(w, buf.Bytes())
}

// WritePDF sends pdf as a download named report.Filename.
func WritePDF(w http.ResponseWriter, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
