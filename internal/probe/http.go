package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/internal/domain/encoding"
	"github.com/okian/riskterm/internal/domain/types"
)

// maxResponseBytes caps how much of a response is read.
const maxResponseBytes = 8 << 20

// Prober talks to a running front-end, or straight to the scoring service.
type Prober struct {
	cfg    Config
	client *http.Client
}

// New creates a Prober. Blank config fields take the defaults.
func New(cfg Config) *Prober {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = upstream.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Prober{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Health checks the front-end health proxy, or the scoring service itself
// when direct is set.
func (p *Prober) Health(ctx context.Context, direct bool) (HealthReport, error) {
	if direct {
		c := upstream.New(upstream.WithBaseURL(p.cfg.APIURL), upstream.WithTimeout(p.cfg.Timeout))
		res := c.Health(ctx)
		rep := HealthReport{Target: c.BaseURL() + "/health", Status: res.StatusCode, Latency: res.Latency, Payload: res.Body}
		if res.Failure != nil {
			return rep, fmt.Errorf("%w: %w", ErrUnhealthy, res.Failure)
		}
		return rep, nil
	}

	target := p.cfg.BaseURL + "/health-proxy"
	start := time.Now()
	status, raw, err := p.do(ctx, http.MethodGet, target, nil)
	rep := HealthReport{Target: target, Status: status, Latency: time.Since(start)}
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	var payload any
	if json.Unmarshal(raw, &payload) == nil {
		rep.Payload = payload
	} else {
		rep.Payload = string(raw)
	}
	if status != http.StatusOK {
		return rep, fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return rep, nil
}

// Predict submits the reference applicant through the prediction proxy.
func (p *Prober) Predict(ctx context.Context) (PredictReport, error) {
	rec := ReferenceApplicant()
	body, err := json.Marshal(types.PredictRequest{Features: encoding.Encode(rec)})
	if err != nil {
		return PredictReport{}, fmt.Errorf("encode request: %w", err)
	}

	start := time.Now()
	status, raw, err := p.do(ctx, http.MethodPost, p.cfg.BaseURL+"/predict-proxy", body)
	if err != nil {
		return PredictReport{}, err
	}
	if status < 200 || status > 299 {
		return PredictReport{}, fmt.Errorf("%w: predict-proxy status %d: %s", ErrRequest, status, bytes.TrimSpace(raw))
	}

	var res types.PredictionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return PredictReport{}, err
	}
	return PredictReport{Record: rec, Result: res, Latency: time.Since(start)}, nil
}

// Report predicts the reference applicant, then renders its report and
// writes the PDF to w.
func (p *Prober) Report(ctx context.Context, w io.Writer) (PredictReport, error) {
	pr, err := p.Predict(ctx)
	if err != nil {
		return pr, err
	}

	body, err := json.Marshal(report.Input{Result: pr.Result, Record: pr.Record})
	if err != nil {
		return pr, fmt.Errorf("encode report input: %w", err)
	}
	status, raw, err := p.do(ctx, http.MethodPost, p.cfg.BaseURL+"/report", body)
	if err != nil {
		return pr, err
	}
	if status != http.StatusOK {
		return pr, fmt.Errorf("%w: report status %d: %s", ErrRequest, status, bytes.TrimSpace(raw))
	}
	if _, err := w.Write(raw); err != nil {
		return pr, fmt.Errorf("write report: %w", err)
	}
	return pr, nil
}

func (p *Prober) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	return resp.StatusCode, raw, nil
}
