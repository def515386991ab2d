// Package upstream is the client for the external loan-default scoring service.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// Defaults.
const (
	DefaultBaseURL = "https://loan-default-backend-poad.onrender.com"
	DefaultTimeout = 60 * time.Second

	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 1 << 20
)

// Endpoint labels used in logs and metrics.
const (
	EndpointPredict = "predict"
	EndpointHealth  = "health"
)

// Client calls the scoring service. It is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     logger.Logger
}

// New creates a Client with configuration options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// BaseURL returns the configured scoring service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Predict forwards body unmodified to POST {base}/predict.
func (c *Client) Predict(ctx context.Context, body []byte) Result {
	return c.do(ctx, EndpointPredict, http.MethodPost, "/predict", body)
}

// Health calls GET {base}/health. Responses are never cached.
func (c *Client) Health(ctx context.Context) Result {
	return c.do(ctx, EndpointHealth, http.MethodGet, "/health", nil)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body []byte) Result {
	start := time.Now()
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return c.transportFailure(ctx, endpoint, start, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if endpoint == EndpointHealth {
		req.Header.Set("Cache-Control", "no-store")
	}

	c.log.Debug(ctx, "calling scoring service", logger.String("endpoint", endpoint), logger.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportFailure(ctx, endpoint, start, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.transportFailure(ctx, endpoint, start, fmt.Errorf("read body: %w", err))
	}

	res := Result{StatusCode: resp.StatusCode, Latency: time.Since(start)}
	res.Body, res.DecodeErr = decode(raw)

	outcome := metrics.OutcomeSuccess
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = metrics.OutcomeRejected
		res.Failure = &Failure{
			Kind:   FailureUpstream,
			Reason: http.StatusText(resp.StatusCode),
			Err:    fmt.Errorf("%w: %s returned %d", ErrUpstreamRejected, endpoint, resp.StatusCode),
		}
		c.log.Warn(ctx, "scoring service rejected request",
			logger.String("endpoint", endpoint),
			logger.Int("status", resp.StatusCode),
			logger.Float64("latency_ms", msSince(start)),
			logger.String("body", string(raw)))
	} else {
		c.log.Info(ctx, "scoring service call completed",
			logger.String("endpoint", endpoint),
			logger.Int("status", resp.StatusCode),
			logger.Float64("latency_ms", msSince(start)))
	}
	metrics.RecordUpstreamCall(endpoint, outcome, msSince(start))
	return res
}

func (c *Client) transportFailure(ctx context.Context, endpoint string, start time.Time, err error) Result {
	c.log.Error(ctx, "scoring service call failed",
		logger.String("endpoint", endpoint),
		logger.Float64("latency_ms", msSince(start)),
		logger.Error(err))
	metrics.RecordUpstreamCall(endpoint, metrics.OutcomeTransport, msSince(start))
	return Result{
		Body:    map[string]any{},
		Latency: time.Since(start),
		Failure: &Failure{
			Kind:   FailureTransport,
			Reason: err.Error(),
			Err:    fmt.Errorf("%w: %w", ErrTransport, err),
		},
	}
}

// decode parses raw as JSON. Anything unparseable becomes an empty object.
func decode(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return map[string]any{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return v, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
