// Package keepalive periodically pings the scoring service so its free-tier
// host does not go to sleep between assessments.
package keepalive

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// DefaultInterval is one minute under the upstream host's 15 minute idle limit.
const DefaultInterval = 14 * time.Minute

// HealthChecker is the part of the upstream client the pinger needs.
type HealthChecker interface {
	Health(ctx context.Context) upstream.Result
}

// Stats is a point-in-time view of pinger activity.
type Stats struct {
	Running    bool      `json:"running"`
	Interval   string    `json:"interval"`
	Pings      int64     `json:"pings"`
	Failures   int64     `json:"failures"`
	LastStatus int       `json:"last_status"`
	LastPingAt time.Time `json:"last_ping_at,omitempty"`
}

// Pinger calls Health once on Start and then on a fixed interval. Failures are
// logged and counted; the next tick is the only retry.
type Pinger struct {
	checker  HealthChecker
	interval time.Duration
	logger   logger.Logger

	mu       sync.Mutex
	cron     *cron.Cron
	cancel   context.CancelFunc
	inFlight sync.WaitGroup

	pings      atomic.Int64
	failures   atomic.Int64
	lastStatus atomic.Int64
	lastPingAt atomic.Int64
}

// New creates a pinger with configuration options.
func New(checker HealthChecker, opts ...Option) *Pinger {
	p := &Pinger{
		checker:  checker,
		interval: DefaultInterval,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start pings immediately and schedules the following pings. Pings run with a
// context derived from ctx that is cancelled by Stop.
func (p *Pinger) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	clog := cronLogger{ctx: runCtx, l: p.logger}
	c := cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	c.Schedule(cron.Every(p.interval), cron.FuncJob(func() { p.ping(runCtx) }))

	p.cron = c
	p.cancel = cancel

	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()
		p.ping(runCtx)
	}()
	c.Start()

	p.logger.Info(ctx, "keep-alive pinger started", logger.String("interval", p.interval.String()))
	return nil
}

// Stop cancels the schedule and waits for in-flight pings, or for ctx.
func (p *Pinger) Stop(ctx context.Context) error {
	p.mu.Lock()
	c, cancel := p.cron, p.cancel
	p.cron, p.cancel = nil, nil
	p.mu.Unlock()

	if c == nil {
		return ErrNotStarted
	}

	cronDone := c.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		p.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info(ctx, "keep-alive pinger stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "keep-alive shutdown timed out")
		return fmt.Errorf("keep-alive shutdown timed out: %w", ctx.Err())
	}
}

// Stats returns pinger counters.
func (p *Pinger) Stats() Stats {
	p.mu.Lock()
	running := p.cron != nil
	p.mu.Unlock()

	s := Stats{
		Running:    running,
		Interval:   p.interval.String(),
		Pings:      p.pings.Load(),
		Failures:   p.failures.Load(),
		LastStatus: int(p.lastStatus.Load()),
	}
	if ts := p.lastPingAt.Load(); ts > 0 {
		s.LastPingAt = time.Unix(0, ts).UTC()
	}
	return s
}

func (p *Pinger) ping(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res := p.checker.Health(ctx)

	p.pings.Add(1)
	p.lastStatus.Store(int64(res.StatusCode))
	p.lastPingAt.Store(time.Now().UnixNano())

	switch {
	case res.Failure == nil:
		metrics.RecordKeepAlivePing(metrics.OutcomeSuccess)
		p.logger.Debug(ctx, "keep-alive ping ok", logger.Int("status", res.StatusCode))
	case res.Failure.Kind == upstream.FailureUpstream:
		p.failures.Add(1)
		metrics.RecordKeepAlivePing(metrics.OutcomeRejected)
		p.logger.Warn(ctx, "keep-alive ping failed", logger.Int("status", res.StatusCode), logger.Error(res.Failure))
	default:
		p.failures.Add(1)
		metrics.RecordKeepAlivePing(metrics.OutcomeTransport)
		p.logger.Warn(ctx, "keep-alive ping failed", logger.Error(res.Failure))
	}
}

// cronLogger routes scheduler diagnostics through the service logger.
type cronLogger struct {
	ctx context.Context
	l   logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(c.ctx, "cron: "+msg, logger.Any("kv", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(c.ctx, "cron: "+msg, logger.Error(err), logger.Any("kv", keysAndValues))
}
