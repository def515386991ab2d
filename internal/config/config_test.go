package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"

	"github.com/okian/riskterm/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
			convey.So(cfg.APIURL, convey.ShouldEqual, config.DefaultAPIURL)
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, 60*time.Second)
			convey.So(cfg.KeepAliveEnabled, convey.ShouldBeTrue)
			convey.So(cfg.KeepAliveInterval(), convey.ShouldEqual, 14*time.Minute)
			convey.So(cfg.SessionCapacity, convey.ShouldEqual, 10_000)
			convey.So(cfg.CurrencyPrefix, convey.ShouldEqual, "$")
			convey.So(cfg.ReportTag(), convey.ShouldEqual, language.English)
			convey.So(cfg.ReportCompression, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "riskterm")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "frontend")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the API URL is relative", func() {
			cfg.APIURL = "/backend"

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "api_url")
			})
		})

		convey.Convey("When the API URL uses another scheme", func() {
			cfg.APIURL = "ftp://example.com"

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timeout is zero", func() {
			cfg.UpstreamTimeoutMS = 0

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When keep-alive is disabled with no interval", func() {
			cfg.KeepAliveEnabled = false
			cfg.KeepAliveIntervalMS = 0

			convey.Convey("Then the interval should not matter", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When keep-alive is enabled with no interval", func() {
			cfg.KeepAliveIntervalMS = 0

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the report language is not a tag", func() {
			cfg.ReportLanguage = "!!"

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "report_language")
			})
		})

		convey.Convey("When the metrics namespace has invalid characters", func() {
			cfg.MetricsNamespace = "risk-term"

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_namespace")
			})
		})

		convey.Convey("When the metrics buckets are not increasing", func() {
			cfg.MetricsBuckets = []float64{10, 5}

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the session capacity is negative", func() {
			cfg.SessionCapacity = -1

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
