package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/riskterm/internal/adapters/http/api"
	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/internal/domain/encoding"
	"github.com/okian/riskterm/internal/domain/session"
	"github.com/okian/riskterm/internal/domain/types"
	"github.com/okian/riskterm/pkg/logger"
	"github.com/okian/riskterm/pkg/metrics"
)

// failureFallback is shown when a failure carries no usable message.
const failureFallback = "Something went wrong"

type resultView struct {
	Verdict     string
	HighRisk    bool
	Probability string
	CreditScore string
	DTIRatio    string
	Advisory    string
	ReferenceID string
}

type predictView struct {
	Sections []formSection
	State    session.State
	Error    string
	Result   *resultView
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.showPredict(w, r)
	case http.MethodPost:
		h.submitPredict(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) showPredict(w http.ResponseWriter, r *http.Request) {
	view := predictView{Sections: filledForm(types.ApplicantRecord{}), State: session.StateIdle}
	if sess, ok := h.lookup(r); ok {
		view = buildView(sess.Snapshot())
	}
	w.Header().Set("Cache-Control", "no-store")
	h.render(w, r, layoutPredict, pageData{Title: "Assess Risk", Active: pagePredict, Predict: &view})
}

func buildView(snap session.Snapshot) predictView {
	view := predictView{
		Sections: filledForm(snap.Record),
		State:    snap.State,
	}
	switch {
	case snap.HasResult():
		res := snap.Result
		rv := &resultView{
			Verdict:     report.VerdictLowRisk,
			HighRisk:    res.HighRisk(),
			Probability: report.FormatProbability(res.DefaultProbability),
			CreditScore: orDash(snap.Record.CreditScore),
			DTIRatio:    orDash(snap.Record.DTIRatio),
			Advisory:    report.AdvisoryLowRisk,
			ReferenceID: report.NewReferenceID(),
		}
		if rv.HighRisk {
			rv.Verdict = report.VerdictHighRisk
			rv.Advisory = report.AdvisoryHighRisk
		}
		view.Result = rv
	case snap.State == session.StateFailure:
		view.Error = snap.Error
	}
	return view
}

func (h *Handler) submitPredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	var rec types.ApplicantRecord
	for _, name := range types.RecordFields {
		rec.Set(name, r.PostForm.Get(name))
	}

	sess := h.session(w, r)
	gen := sess.Begin(rec)

	if unknown := encoding.Unrecognised(rec); len(unknown) > 0 {
		h.logger.Debug(ctx, "categorical fields fell back to code 0", logger.Any("fields", unknown))
	}
	body, err := json.Marshal(types.PredictRequest{Features: encoding.Encode(rec)})
	if err != nil {
		h.settleFailure(ctx, sess, gen, failureFallback)
		http.Redirect(w, r, "/predict", http.StatusSeeOther)
		return
	}

	h.settle(ctx, sess, gen, h.deps.Predict(ctx, body))
	http.Redirect(w, r, "/predict", http.StatusSeeOther)
}

// settle moves the session out of submitting for the given generation.
func (h *Handler) settle(ctx context.Context, sess *session.Session, gen uint64, res upstream.Result) {
	if !res.OK() {
		status, payload := res.PredictResponse()
		h.settleFailure(ctx, sess, gen, failureMessage(status, payload))
		return
	}

	pred, err := res.Prediction()
	if err != nil {
		h.logger.Warn(ctx, "scoring response not usable", logger.Error(err))
		h.settleFailure(ctx, sess, gen, failureFallback)
		return
	}
	if err := sess.Succeed(gen, pred); err != nil {
		h.logger.Debug(ctx, "prediction discarded", logger.String("session", sess.ID()), logger.Error(err))
		return
	}
	metrics.RecordPrediction(string(pred.Verdict()))
}

func (h *Handler) settleFailure(ctx context.Context, sess *session.Session, gen uint64, msg string) {
	if err := sess.Fail(gen, msg); err != nil {
		h.logger.Debug(ctx, "failure discarded", logger.String("session", sess.ID()), logger.Error(err))
	}
}

// failureMessage derives the user-facing error from a relayed failure
// payload: its detail when present, else the status, else a generic line.
func failureMessage(status int, payload any) string {
	obj, _ := payload.(map[string]any)
	switch d := obj["detail"].(type) {
	case nil:
	case string:
		if d != "" {
			return d
		}
	case bool:
		if d {
			return "true"
		}
	case float64:
		if d != 0 {
			return strconv.FormatFloat(d, 'g', -1, 64)
		}
	default:
		if data, err := json.Marshal(d); err == nil {
			return string(data)
		}
	}
	if status != 0 {
		return fmt.Sprintf("Request failed: %d", status)
	}
	return failureFallback
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.lookup(r)
	if !ok {
		http.Error(w, ErrNoResult.Error(), http.StatusNotFound)
		return
	}
	snap := sess.Snapshot()
	if !snap.HasResult() {
		http.Error(w, ErrNoResult.Error(), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Render(&buf, report.Input{Result: *snap.Result, Record: snap.Record}); err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.RecordReportRendered("session")
	api.WritePDF(w, buf.Bytes())
}

// lookup returns the visitor's existing session without creating one.
func (h *Handler) lookup(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(h.cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return h.sessions.Get(r.Context(), c.Value)
}

// session returns the visitor's session, issuing a cookie for a new one.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(h.cookieName); err == nil {
		id = c.Value
	} else if !errors.Is(err, http.ErrNoCookie) {
		h.logger.Debug(r.Context(), "unreadable session cookie", logger.Error(err))
	}

	sess, created := h.sessions.GetOrCreate(r.Context(), id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
