// Package service composes the gateway, session store, report renderer and
// keep-alive pinger into the dependencies required by the HTTP layer.
package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/okian/riskterm/internal/adapters/keepalive"
	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/internal/domain/session"
	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// Service implements the API and site dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	client   *upstream.Client
	sessions *session.Store
	renderer *report.Renderer
	pinger   *keepalive.Pinger

	// Configuration
	baseURL           string
	upstreamTimeout   time.Duration
	httpClient        *http.Client
	keepAlive         bool
	keepAliveInterval time.Duration
	sessionCapacity   int
	currencyPrefix    string
	reportLanguage    language.Tag
	reportCompression bool

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBaseURL sets the scoring service base URL.
func WithBaseURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.baseURL = base
		}
	}
}

// WithUpstreamTimeout bounds each scoring service call.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.upstreamTimeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client used for scoring service calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Service) { s.httpClient = hc }
}

// WithKeepAlive enables or disables the health pinger and sets its period.
func WithKeepAlive(enabled bool, interval time.Duration) Option {
	return func(s *Service) {
		s.keepAlive = enabled
		if interval > 0 {
			s.keepAliveInterval = interval
		}
	}
}

// WithSessionCapacity bounds the number of sessions kept in memory.
func WithSessionCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sessionCapacity = n
		}
	}
}

// WithCurrencyPrefix sets the symbol printed before report money values.
func WithCurrencyPrefix(prefix string) Option {
	return func(s *Service) { s.currencyPrefix = prefix }
}

// WithReportLanguage sets the locale used for report number separators.
func WithReportLanguage(tag language.Tag) Option {
	return func(s *Service) { s.reportLanguage = tag }
}

// WithReportCompression toggles PDF stream compression.
func WithReportCompression(enabled bool) Option {
	return func(s *Service) { s.reportCompression = enabled }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Components are built eagerly so routes can be
// registered before Start.
func New(opts ...Option) *Service {
	s := &Service{
		baseURL:           upstream.DefaultBaseURL,
		upstreamTimeout:   upstream.DefaultTimeout,
		keepAlive:         true,
		keepAliveInterval: keepalive.DefaultInterval,
		sessionCapacity:   10_000,
		currencyPrefix:    "$",
		reportLanguage:    language.English,
		reportCompression: true,
		logger:            logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	clientOpts := []upstream.Option{
		upstream.WithBaseURL(s.baseURL),
		upstream.WithTimeout(s.upstreamTimeout),
		upstream.WithLogger(s.logger.Named("upstream")),
	}
	if s.httpClient != nil {
		clientOpts = append(clientOpts, upstream.WithHTTPClient(s.httpClient))
	}
	s.client = upstream.New(clientOpts...)
	s.sessions = session.NewStore(session.WithCapacity(s.sessionCapacity))
	s.renderer = report.NewRenderer(
		report.WithCurrencyPrefix(s.currencyPrefix),
		report.WithLanguage(s.reportLanguage),
		report.WithCompression(s.reportCompression),
	)
	s.pinger = keepalive.New(s.client,
		keepalive.WithInterval(s.keepAliveInterval),
		keepalive.WithLogger(s.logger.Named("keepalive")),
	)
	return s
}

// Start launches background work. It is a no-op when already started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting risk service...", logger.String("upstream", s.client.BaseURL()))
	if s.keepAlive {
		if err := s.pinger.Start(ctx); err != nil {
			return err
		}
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "risk service started",
		logger.Any("keepAlive", s.keepAlive),
		logger.Int("sessionCapacity", s.sessionCapacity),
	)
	return nil
}

// Stop halts background work, waiting at most until ctx is done.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping risk service...")
	var err error
	if s.keepAlive {
		if perr := s.pinger.Stop(ctx); perr != nil && !errors.Is(perr, keepalive.ErrNotStarted) {
			err = perr
		}
	}

	s.started = false
	s.logger.Info(ctx, "risk service stopped")
	return err
}

// Predict forwards an encoded request body to the scoring service.
func (s *Service) Predict(ctx context.Context, body []byte) upstream.Result {
	return s.client.Predict(ctx, body)
}

// Health asks the scoring service whether it is up.
func (s *Service) Health(ctx context.Context) upstream.Result {
	return s.client.Health(ctx)
}

// Render draws an assessment report.
func (s *Service) Render(w io.Writer, in report.Input) error {
	return s.renderer.Render(w, in)
}

// Sessions returns the assessment session store.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := s.sessions.Size()
	stats := map[string]interface{}{
		"started":         s.started,
		"upstream":        s.client.BaseURL(),
		"sessionsActive":  active,
		"sessionCapacity": s.sessions.Capacity(),
		"keepAlive":       s.pinger.Stats(),
	}
	if s.started {
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
	}

	metrics.UpdateActiveSessions(active)
	return stats
}
