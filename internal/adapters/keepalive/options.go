package keepalive

import (
	"time"

	"github.com/okian/riskterm/pkg/logger"
)

// Option applies a configuration option to the Pinger.
type Option func(*Pinger)

// WithInterval sets the time between pings. cron schedules at one-second
// granularity, so shorter intervals are rounded up.
func WithInterval(interval time.Duration) Option {
	return func(p *Pinger) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the pinger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pinger) {
		if l != nil {
			p.logger = l
		}
	}
}
