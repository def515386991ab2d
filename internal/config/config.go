// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"

	"golang.org/x/text/language"
)

// DefaultAPIURL is the scoring service used when api_url is not configured.
const DefaultAPIURL = "https://loan-default-backend-poad.onrender.com"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIURL is the base URL of the scoring service.
	APIURL string `koanf:"api_url"`

	// UpstreamTimeoutMS bounds a single call to the scoring service.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// KeepAliveEnabled turns the periodic health ping on or off.
	KeepAliveEnabled bool `koanf:"keepalive_enabled"`

	// KeepAliveIntervalMS is the period between health pings.
	KeepAliveIntervalMS int `koanf:"keepalive_interval_ms"`

	// SessionCapacity bounds the number of assessment sessions held in memory.
	SessionCapacity int `koanf:"session_capacity"`

	// CurrencyPrefix is printed before money values in reports.
	CurrencyPrefix string `koanf:"currency_prefix"`

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool `koanf:"secure_cookies"`

	// ReportLanguage is the BCP 47 tag used for report number separators.
	ReportLanguage string `koanf:"report_language"`

	// ReportCompression toggles PDF stream compression.
	ReportCompression bool `koanf:"report_compression"`

	// Metrics naming. Buckets apply to the HTTP latency histogram and must
	// be strictly increasing; empty keeps the Prometheus defaults.
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsBuckets   []float64         `koanf:"metrics_buckets_ms"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults. The context is reserved for loaders
// that need it and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":3000",
		APIURL:              DefaultAPIURL,
		UpstreamTimeoutMS:   60_000,
		KeepAliveEnabled:    true,
		KeepAliveIntervalMS: 14 * 60 * 1000,
		SessionCapacity:     10_000,
		CurrencyPrefix:      "$",
		ReportLanguage:      "en",
		ReportCompression:   true,
		MetricsNamespace:    "riskterm",
		MetricsSubsystem:    "frontend",
	}
}

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// ReportTag returns ReportLanguage as a language tag. Validate has already
// rejected tags that do not parse.
func (c *Config) ReportTag() language.Tag {
	return language.Make(c.ReportLanguage)
}

// KeepAliveInterval returns KeepAliveIntervalMS as a duration.
func (c *Config) KeepAliveInterval() time.Duration {
	return time.Duration(c.KeepAliveIntervalMS) * time.Millisecond
}
