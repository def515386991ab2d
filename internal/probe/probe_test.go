package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/riskterm/internal/adapters/report"
)

type fakeFrontend struct {
	*httptest.Server
	healthStatus int
	lastPredict  string
	lastReport   report.Input
}

func newFakeFrontend() *fakeFrontend {
	f := &fakeFrontend{healthStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/health-proxy", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(f.healthStatus)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/predict-proxy", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		f.lastPredict = string(raw)
		_, _ = io.WriteString(w, `{"prediction":1,"default_probability":0.734}`)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastReport)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.WriteString(w, "%PDF-1.3 fake")
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"direct"}`)
	})
	f.Server = httptest.NewServer(mux)
	return f
}

func TestHealthCommand(t *testing.T) {
	Convey("Given a running front-end", t, func() {
		fe := newFakeFrontend()
		defer fe.Close()
		var out bytes.Buffer

		Convey("When checking health through the proxy", func() {
			err := Execute(context.Background(), []string{"health", "--url", fe.URL}, &out)

			Convey("Then it should pass and print status and latency", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "Health check passed! Status: 200")
				So(out.String(), ShouldContainSubstring, "Latency: ")
				So(out.String(), ShouldContainSubstring, fe.URL+"/health-proxy")
			})
		})

		Convey("When the backend is down", func() {
			fe.healthStatus = http.StatusServiceUnavailable
			err := Execute(context.Background(), []string{"health", "--url", fe.URL}, &out)

			Convey("Then it should fail with the status", func() {
				So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
				So(out.String(), ShouldContainSubstring, "Health check failed! Status: 503")
			})
		})

		Convey("When checking the scoring service directly", func() {
			err := Execute(context.Background(), []string{"health", "--direct", "--api-url", fe.URL}, &out)

			Convey("Then it should query /health on the API URL", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, fe.URL+"/health")
				So(out.String(), ShouldContainSubstring, "direct")
			})
		})
	})
}

func TestPredictAndReportCommands(t *testing.T) {
	Convey("Given a running front-end", t, func() {
		fe := newFakeFrontend()
		defer fe.Close()
		var out bytes.Buffer

		Convey("When predicting the reference applicant", func() {
			err := Execute(context.Background(), []string{"predict", "--url", fe.URL}, &out)

			Convey("Then the encoded vector should be posted and the verdict printed", func() {
				So(err, ShouldBeNil)
				So(fe.lastPredict, ShouldEqual, `{"features":[32,850000,150000,720,48,2,5.5,36,0.35,1,2,0,0,0,1,0]}`)
				So(out.String(), ShouldContainSubstring, "Verdict: HIGH RISK")
				So(out.String(), ShouldContainSubstring, "Default probability: 73.40%")
			})
		})

		Convey("When requesting the report", func() {
			path := filepath.Join(t.TempDir(), "out.pdf")
			err := Execute(context.Background(), []string{"report", "--url", fe.URL, "--out", path}, &out)

			Convey("Then the PDF should be written to disk", func() {
				So(err, ShouldBeNil)
				data, rerr := os.ReadFile(path)
				So(rerr, ShouldBeNil)
				So(string(data), ShouldStartWith, "%PDF-")
				So(fe.lastReport.Result.HighRisk(), ShouldBeTrue)
				So(fe.lastReport.Record.CreditScore, ShouldEqual, "720")
				So(out.String(), ShouldContainSubstring, "Report written to "+path)
			})
		})
	})

	Convey("Given nothing listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("When predicting", func() {
			_, err := New(Config{BaseURL: url}).Predict(context.Background())

			Convey("Then it should be a request error", func() {
				So(errors.Is(err, ErrRequest), ShouldBeTrue)
			})
		})
	})
}
