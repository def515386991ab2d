package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/riskterm/internal/adapters/http/api"
	"github.com/okian/riskterm/internal/adapters/http/site"
	"github.com/okian/riskterm/internal/adapters/http/swagger"
	app "github.com/okian/riskterm/internal/app"
	"github.com/okian/riskterm/internal/config"
	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// HTTP server timeout constants. The write timeout leaves room for a
// cold-starting scoring service.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 90 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		// The logger may not be available at this point.
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// We collect our own system metrics instead of the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg)...)

	svc := newService(cfg, log)
	handler, err := newHandler(ctx, cfg, svc, log)
	if err != nil {
		return fmt.Errorf("failed to build routes: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	g.Go(func() error {
		startServiceMetricsUpdater(gctx, svc)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
			errs = append(errs, err)
		}
		if err := svc.Stop(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "service shutdown failed", logger.Error(err))
			errs = append(errs, err)
		}
		log.Info(shutdownCtx, "server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

// newService builds the service from configuration.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithBaseURL(cfg.APIURL),
		app.WithUpstreamTimeout(cfg.UpstreamTimeout()),
		app.WithKeepAlive(cfg.KeepAliveEnabled, cfg.KeepAliveInterval()),
		app.WithSessionCapacity(cfg.SessionCapacity),
		app.WithCurrencyPrefix(cfg.CurrencyPrefix),
		app.WithReportLanguage(cfg.ReportTag()),
		app.WithReportCompression(cfg.ReportCompression),
	)
}

// metricsOptions maps the metrics keys of cfg onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithConstLabels(cfg.MetricsLabels),
	}
}

// newHandler registers every route and wraps the mux in the request middleware.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) (http.Handler, error) {
	mux := http.NewServeMux()

	// Business API: proxy, report, health, stats and metrics.
	api.NewServer(svc, svc, log.Named("api")).Register(ctx, mux)

	// API documentation.
	swagger.Register(ctx, mux)

	// Browser pages.
	pages, err := site.New(svc, svc.Sessions(),
		site.WithLogger(log.Named("site")),
		site.WithSecureCookie(cfg.SecureCookies),
	)
	if err != nil {
		return nil, err
	}
	pages.Register(ctx, mux)

	return api.RequestIDMiddleware(api.AccessLogMiddleware(log, mux)), nil
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if active, ok := stats["sessionsActive"].(int); ok {
		metrics.UpdateActiveSessions(active)
	}
}
