package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/riskterm/internal/config"
)

var configEnvVars = []string{ //nolint:gochecknoglobals // test fixture
	"RISKTERM_CONFIG",
	"RISKTERM_ENV_FILE",
	"RISKTERM_ADDR",
	"RISKTERM_API_URL",
	"RISKTERM_LOG_LEVEL",
	"RISKTERM_UPSTREAM_TIMEOUT_MS",
	"RISKTERM_KEEPALIVE_ENABLED",
	"RISKTERM_KEEPALIVE_INTERVAL_MS",
	"RISKTERM_SESSION_CAPACITY",
	"RISKTERM_CURRENCY_PREFIX",
	"RISKTERM_REPORT_LANGUAGE",
	"RISKTERM_METRICS_NAMESPACE",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
				convey.So(cfg.APIURL, convey.ShouldEqual, config.DefaultAPIURL)
				convey.So(cfg.KeepAliveEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RISKTERM_ADDR", ":8080")
			_ = os.Setenv("RISKTERM_API_URL", "http://localhost:8000")
			_ = os.Setenv("RISKTERM_UPSTREAM_TIMEOUT_MS", "5000")
			_ = os.Setenv("RISKTERM_KEEPALIVE_ENABLED", "false")
			_ = os.Setenv("RISKTERM_SESSION_CAPACITY", "25")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIURL, convey.ShouldEqual, "http://localhost:8000")
				convey.So(cfg.UpstreamTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.KeepAliveEnabled, convey.ShouldBeFalse)
				convey.So(cfg.SessionCapacity, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeTempFile(t, "riskterm.yaml", `
addr: ":9090"
api_url: "https://scoring.internal"
keepalive_interval_ms: 60000
currency_prefix: "EUR "
`)
			_ = os.Setenv("RISKTERM_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should apply over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.APIURL, convey.ShouldEqual, "https://scoring.internal")
				convey.So(cfg.KeepAliveIntervalMS, convey.ShouldEqual, 60000)
				convey.So(cfg.CurrencyPrefix, convey.ShouldEqual, "EUR ")
				convey.So(cfg.UpstreamTimeoutMS, convey.ShouldEqual, 60_000)
			})

			convey.Convey("Then environment variables should override file values", func() {
				_ = os.Setenv("RISKTERM_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.APIURL, convey.ShouldEqual, "https://scoring.internal")
			})
		})

		convey.Convey("When report and metrics settings come from YAML and env", func() {
			path := writeTempFile(t, "metrics.yaml", `
report_language: "de-DE"
report_compression: false
metrics_subsystem: "web"
metrics_buckets_ms: [10, 100, 1000]
metrics_labels:
  env: "staging"
`)
			_ = os.Setenv("RISKTERM_CONFIG", path)
			_ = os.Setenv("RISKTERM_METRICS_NAMESPACE", "scoring_ui")

			cfg, err := config.Load(ctx)

			convey.Convey("Then every key should be decoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ReportLanguage, convey.ShouldEqual, "de-DE")
				convey.So(cfg.ReportCompression, convey.ShouldBeFalse)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "scoring_ui")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "web")
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{10, 100, 1000})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging"})
			})
		})

		convey.Convey("When a .env file is named", func() {
			path := writeTempFile(t, "test.env", "RISKTERM_API_URL=http://from-dotenv:8000\nRISKTERM_LOG_LEVEL=debug\n")
			_ = os.Setenv("RISKTERM_ENV_FILE", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables should be picked up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.APIURL, convey.ShouldEqual, "http://from-dotenv:8000")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When the named .env file does not exist", func() {
			_ = os.Setenv("RISKTERM_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("RISKTERM_CONFIG", writeTempFile(t, "bad.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RISKTERM_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("RISKTERM_SESSION_CAPACITY", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the API URL from env is not absolute", func() {
			_ = os.Setenv("RISKTERM_API_URL", "backend")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
