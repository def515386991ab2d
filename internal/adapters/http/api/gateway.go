package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// GatewayHandler relays browser calls to the scoring service.
type GatewayHandler struct {
	gateway Gateway
	logger  logger.Logger
}

// NewGatewayHandler creates a new gateway handler.
func NewGatewayHandler(gateway Gateway, log logger.Logger) *GatewayHandler {
	return &GatewayHandler{gateway: gateway, logger: log}
}

// HandlePredict handles POST /predict-proxy. The body is forwarded as is;
// duplicate submissions are neither merged nor cancelled.
func (h *GatewayHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil && !json.Valid(body) {
		err = fmt.Errorf("%w: request body is not valid JSON", ErrBadRequest)
	}
	if err != nil {
		h.logger.Error(ctx, "proxy error", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"detail": "Internal Proxy Error",
			"error":  err.Error(),
		})
		return
	}

	res := h.gateway.Predict(ctx, body)
	if pred, err := res.Prediction(); err == nil {
		metrics.RecordPrediction(string(pred.Verdict()))
	}
	status, payload := res.PredictResponse()
	writeJSON(w, status, payload)
}

// HandleHealth handles GET /health-proxy.
func (h *GatewayHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	status, payload := h.gateway.Health(r.Context()).HealthResponse()
	writeJSON(w, status, payload)
}
