package site

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/internal/domain/session"
	"github.com/okian/riskterm/pkg/logger"
)

type mockDeps struct {
	result   upstream.Result
	lastBody string
	rendered int
}

func (m *mockDeps) Predict(ctx context.Context, body []byte) upstream.Result {
	m.lastBody = string(body)
	return m.result
}

func (m *mockDeps) Render(w io.Writer, in report.Input) error {
	m.rendered++
	_, err := io.WriteString(w, "%PDF-1.3 fake")
	return err
}

func referenceForm() url.Values {
	return url.Values{
		"age":              {"32"},
		"income":           {"850000"},
		"loan_amount":      {"150000"},
		"credit_score":     {"720"},
		"months_employed":  {"48"},
		"num_credit_lines": {"2"},
		"interest_rate":    {"5.5"},
		"loan_term":        {"36"},
		"dti_ratio":        {"0.35"},
		"education":        {"Bachelor's"},
		"employment_type":  {"Full-time"},
		"marital_status":   {"Single"},
		"has_mortgage":     {"No"},
		"has_dependents":   {"No"},
		"loan_purpose":     {"Home"},
		"has_cosigner":     {"No"},
	}
}

func newTestMux(t *testing.T, deps *mockDeps) *http.ServeMux {
	h, err := New(deps, session.NewStore(), WithLogger(logger.NewTest(t)))
	So(err, ShouldBeNil)
	mux := http.NewServeMux()
	h.Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func submit(mux http.Handler, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(mux, req, cookies...)
}

func TestStaticPages(t *testing.T) {
	Convey("Given the site handler", t, func() {
		mux := newTestMux(t, &mockDeps{})

		Convey("When requesting the home page", func() {
			rec := do(mux, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then the rendered markdown should sit inside the layout", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/html")
				body := rec.Body.String()
				So(body, ShouldContainSubstring, `<a href="/" class="active">Home</a>`)
				So(body, ShouldContainSubstring, `id="features"`)
				So(body, ShouldContainSubstring, "Sixteen-factor input")
			})
		})

		Convey("When requesting the model specs", func() {
			rec := do(mux, httptest.NewRequest(http.MethodGet, "/analytics", nil))

			Convey("Then the benchmark table should be rendered", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := rec.Body.String()
				So(body, ShouldContainSubstring, "<table>")
				So(body, ShouldContainSubstring, "Optimized Random Forest")
				So(body, ShouldContainSubstring, "AdaBoost")
			})
		})

		Convey("When requesting an unknown path", func() {
			rec := do(mux, httptest.NewRequest(http.MethodGet, "/nope", nil))

			Convey("Then it should be not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When posting to a content page", func() {
			rec := do(mux, httptest.NewRequest(http.MethodPost, "/analytics", nil))

			Convey("Then the method should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When requesting the stylesheet", func() {
			rec := do(mux, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))

			Convey("Then it should be served from the embedded tree", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "--accent")
			})
		})
	})
}

func TestPredictFlow(t *testing.T) {
	Convey("Given the assessment terminal", t, func() {
		deps := &mockDeps{result: upstream.Result{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"prediction": 1.0, "default_probability": 0.734},
		}}
		mux := newTestMux(t, deps)

		Convey("When a first-time visitor opens the form", func() {
			rec := do(mux, httptest.NewRequest(http.MethodGet, "/predict", nil))

			Convey("Then the standby panel and hints should show", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := rec.Body.String()
				So(body, ShouldContainSubstring, "System Standby")
				So(body, ShouldContainSubstring, `placeholder="850000"`)
				So(body, ShouldContainSubstring, "FICO score (range: 300-850).")
				So(rec.Result().Cookies(), ShouldBeEmpty)
			})
		})

		Convey("When the reference applicant is submitted", func() {
			rec := submit(mux, referenceForm())

			Convey("Then the encoded vector should reach the gateway", func() {
				So(deps.lastBody, ShouldEqual, `{"features":[32,850000,150000,720,48,2,5.5,36,0.35,1,2,0,0,0,1,0]}`)
			})

			Convey("Then the browser should be redirected with a session cookie", func() {
				So(rec.Code, ShouldEqual, http.StatusSeeOther)
				So(rec.Header().Get("Location"), ShouldEqual, "/predict")
				So(rec.Result().Cookies(), ShouldHaveLength, 1)
				So(rec.Result().Cookies()[0].Name, ShouldEqual, DefaultCookieName)
			})

			Convey("Then the follow-up page should show the result card", func() {
				cookie := rec.Result().Cookies()[0]
				page := do(mux, httptest.NewRequest(http.MethodGet, "/predict", nil), cookie)
				body := page.Body.String()

				So(page.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "HIGH RISK")
				So(body, ShouldContainSubstring, "73.40%")
				So(body, ShouldContainSubstring, report.AdvisoryHighRisk)
				So(body, ShouldContainSubstring, `value="720"`)
				So(body, ShouldContainSubstring, `href="/report.pdf"`)
			})

			Convey("Then the session report should download", func() {
				cookie := rec.Result().Cookies()[0]
				pdf := do(mux, httptest.NewRequest(http.MethodGet, "/report.pdf", nil), cookie)

				So(pdf.Code, ShouldEqual, http.StatusOK)
				So(pdf.Header().Get("Content-Type"), ShouldEqual, "application/pdf")
				So(pdf.Header().Get("Content-Disposition"), ShouldContainSubstring, report.Filename)
				So(deps.rendered, ShouldEqual, 1)
			})

			Convey("Then a second submission should reuse the session", func() {
				cookie := rec.Result().Cookies()[0]
				again := submit(mux, referenceForm(), cookie)
				So(again.Code, ShouldEqual, http.StatusSeeOther)
				So(again.Result().Cookies(), ShouldBeEmpty)
			})
		})

		Convey("When the scoring service rejects the input", func() {
			deps.result = upstream.Result{
				StatusCode: http.StatusUnprocessableEntity,
				Body:       map[string]any{"detail": "bad input"},
				Failure:    &upstream.Failure{Kind: upstream.FailureUpstream, Reason: "status 422", Err: upstream.ErrUpstreamRejected},
			}
			rec := submit(mux, referenceForm())
			cookie := rec.Result().Cookies()[0]
			page := do(mux, httptest.NewRequest(http.MethodGet, "/predict", nil), cookie)

			Convey("Then the detail should be shown instead of a result", func() {
				body := page.Body.String()
				So(body, ShouldContainSubstring, "bad input")
				So(body, ShouldNotContainSubstring, "ANALYSIS_COMPLETE")
			})

			Convey("Then no report should be available", func() {
				pdf := do(mux, httptest.NewRequest(http.MethodGet, "/report.pdf", nil), cookie)
				So(pdf.Code, ShouldEqual, http.StatusNotFound)
				So(deps.rendered, ShouldEqual, 0)
			})
		})

		Convey("When the scoring service returns an unusable body", func() {
			deps.result = upstream.Result{StatusCode: http.StatusOK, Body: []any{1.0}}
			rec := submit(mux, referenceForm())
			cookie := rec.Result().Cookies()[0]
			page := do(mux, httptest.NewRequest(http.MethodGet, "/predict", nil), cookie)

			Convey("Then the generic failure should be shown", func() {
				So(page.Body.String(), ShouldContainSubstring, failureFallback)
			})
		})

		Convey("When a report is requested without a session", func() {
			pdf := do(mux, httptest.NewRequest(http.MethodGet, "/report.pdf", nil))

			Convey("Then it should be not found", func() {
				So(pdf.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the form is sent with an unsupported method", func() {
			rec := do(mux, httptest.NewRequest(http.MethodDelete, "/predict", nil))

			Convey("Then the method should be rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(rec.Header().Get("Allow"), ShouldContainSubstring, "POST")
			})
		})
	})
}

func TestMalformedSuccessBody(t *testing.T) {
	Convey("Given a scoring service that answers 200 with a non-JSON body", t, func() {
		deps := &mockDeps{result: upstream.Result{
			StatusCode: http.StatusOK,
			Body:       map[string]any{},
			DecodeErr:  upstream.ErrMalformedBody,
		}}
		store := session.NewStore()
		h, err := New(deps, store, WithLogger(logger.NewTest(t)))
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		h.Register(context.Background(), mux)

		Convey("When the reference applicant is submitted", func() {
			rec := submit(mux, referenceForm())
			cookie := rec.Result().Cookies()[0]

			Convey("Then the session should settle as a success on the empty object", func() {
				sess, ok := store.Get(context.Background(), cookie.Value)
				So(ok, ShouldBeTrue)
				snap := sess.Snapshot()
				So(snap.State, ShouldEqual, session.StateSuccess)
				So(snap.Error, ShouldBeEmpty)
				So(snap.HasResult(), ShouldBeTrue)
			})

			Convey("Then the result card should show a zero low-risk verdict", func() {
				page := do(mux, httptest.NewRequest(http.MethodGet, "/predict", nil), cookie)
				body := page.Body.String()
				So(body, ShouldContainSubstring, "ANALYSIS_COMPLETE")
				So(body, ShouldContainSubstring, report.VerdictLowRisk)
				So(body, ShouldContainSubstring, "0.00%")
				So(body, ShouldNotContainSubstring, failureFallback)
			})
		})
	})
}

func TestFailureMessage(t *testing.T) {
	Convey("Given relayed failure payloads", t, func() {
		Convey("Then a string detail should be used as is", func() {
			So(failureMessage(422, map[string]any{"detail": "bad input"}), ShouldEqual, "bad input")
		})

		Convey("Then a structured detail should be JSON encoded", func() {
			msg := failureMessage(422, map[string]any{"detail": []any{map[string]any{"msg": "field required"}}})
			So(msg, ShouldEqual, `[{"msg":"field required"}]`)
		})

		Convey("Then a missing or empty detail should fall back to the status", func() {
			So(failureMessage(503, map[string]any{}), ShouldEqual, "Request failed: 503")
			So(failureMessage(502, map[string]any{"detail": ""}), ShouldEqual, "Request failed: 502")
			So(failureMessage(500, nil), ShouldEqual, "Request failed: 500")
		})

		Convey("Then no status and no detail should give the generic line", func() {
			So(failureMessage(0, nil), ShouldEqual, failureFallback)
		})
	})
}

func TestRegisterNilMux(t *testing.T) {
	Convey("Given a handler", t, func() {
		h, err := New(&mockDeps{}, session.NewStore())
		So(err, ShouldBeNil)

		Convey("Then registering on a nil mux should panic", func() {
			So(func() { h.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
