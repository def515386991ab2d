package upstream

import (
	"fmt"
	"net/http"
	"time"

	"github.com/okian/riskterm/internal/domain/types"
)

// FailureKind classifies a failed call.
type FailureKind string

// Failure kinds.
const (
	FailureUpstream  FailureKind = "upstream"
	FailureTransport FailureKind = "transport"
)

// Failure explains why a call did not succeed.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (f *Failure) Error() string { return f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of exactly one upstream call. Callers decide whether
// to retry; the client never does.
type Result struct {
	// StatusCode is the upstream HTTP status, or 0 when no response arrived.
	StatusCode int
	// Body is the decoded JSON payload. An unparseable body decodes to an
	// empty object and DecodeErr is set.
	Body      any
	DecodeErr error
	Latency   time.Duration
	Failure   *Failure
}

// OK reports whether the upstream answered with a 2xx status.
func (r Result) OK() bool { return r.Failure == nil }

// Prediction interprets a successful predict body. An unparseable 2xx body
// was already normalised to an empty object and reads as a zero result.
func (r Result) Prediction() (types.PredictionResult, error) {
	if r.Failure != nil {
		return types.PredictionResult{}, r.Failure
	}
	res, err := types.PredictionFromPayload(r.Body)
	if err != nil {
		return types.PredictionResult{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return res, nil
}

// PredictResponse returns the status and payload relayed to a browser for a
// predict call.
func (r Result) PredictResponse() (int, any) {
	switch {
	case r.Failure == nil:
		return r.StatusCode, r.Body
	case r.Failure.Kind == FailureUpstream:
		detail, _ := field(r.Body, "detail")
		if !truthy(detail) {
			detail = "Backend error"
		}
		return r.StatusCode, map[string]any{"detail": detail, "status": r.StatusCode}
	default:
		return http.StatusInternalServerError, map[string]any{
			"detail": "Internal Proxy Error",
			"error":  r.Failure.Reason,
		}
	}
}

// HealthResponse returns the status and payload relayed to a browser for a
// health call. A 2xx answer whose body is not JSON counts as a proxy failure.
func (r Result) HealthResponse() (int, any) {
	switch {
	case r.Failure == nil && r.DecodeErr == nil:
		return r.StatusCode, r.Body
	case r.Failure == nil:
		return http.StatusInternalServerError, map[string]any{"status": "error", "message": r.DecodeErr.Error()}
	case r.Failure.Kind == FailureUpstream:
		return r.StatusCode, map[string]any{"status": "error", "message": "Backend is unreachable"}
	default:
		return http.StatusInternalServerError, map[string]any{"status": "error", "message": r.Failure.Reason}
	}
}

func field(body any, key string) (any, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}

// truthy follows JSON-value truthiness: null, false, 0 and "" are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
