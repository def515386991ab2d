package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`) //nolint:gochecknoglobals // compiled once

// Environment variables read directly by the loader.
const (
	EnvPrefix  = "RISKTERM_"
	EnvConfig  = EnvPrefix + "CONFIG"
	EnvEnvFile = EnvPrefix + "ENV_FILE"

	defaultEnvFile = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RISKTERM_CONFIG is set
//  3. env (prefix RISKTERM_), after a .env file has been merged into the
//     process environment
//
// Variables already set in the environment win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	base := New(ctx)
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RISKTERM_API_URL -> api_url. Keys are flat so underscores are kept.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile merges the .env file named by RISKTERM_ENV_FILE (default .env)
// into the environment. A missing default file is not an error; a missing
// file that was named explicitly is.
func loadEnvFile() error {
	path, explicit := os.LookupEnv(EnvEnvFile)
	if !explicit || path == "" {
		path = defaultEnvFile
		explicit = false
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.APIURL)
	}
	if c.UpstreamTimeoutMS <= 0 {
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.KeepAliveEnabled && c.KeepAliveIntervalMS <= 0 {
		return fmt.Errorf("%w: keepalive_interval_ms must be positive when keep-alive is enabled", ErrInvalidConfig)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("%w: session_capacity must be positive", ErrInvalidConfig)
	}
	if _, err := language.Parse(c.ReportLanguage); err != nil {
		return fmt.Errorf("%w: report_language %q: %w", ErrInvalidConfig, c.ReportLanguage, err)
	}
	if !metricName.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name prefix", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricName.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name part", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
