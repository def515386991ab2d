// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/pkg/logger"
)

// maxBodyBytes bounds request bodies accepted by the JSON endpoints.
const maxBodyBytes = 64 << 10

// Gateway is the upstream scoring service as seen by the proxy routes.
type Gateway interface {
	Predict(ctx context.Context, body []byte) upstream.Result
	Health(ctx context.Context) upstream.Result
}

// ReportRenderer draws assessment reports.
type ReportRenderer interface {
	Render(w io.Writer, in report.Input) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Gateway
	ReportRenderer
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	gatewayHandler *GatewayHandler
	reportHandler  *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		gatewayHandler: NewGatewayHandler(deps, log.Named("gateway")),
		reportHandler:  NewReportHandler(deps, log.Named("report")),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict-proxy", MetricsMiddleware(s.gatewayHandler.HandlePredict, "predict_proxy"))
	mux.HandleFunc("/health-proxy", MetricsMiddleware(s.gatewayHandler.HandleHealth, "health_proxy"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
}
