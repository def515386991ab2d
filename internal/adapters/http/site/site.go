// Package site serves the browser pages: home, model specs and the
// assessment terminal.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/okian/riskterm/internal/adapters/http/api"
	"github.com/okian/riskterm/internal/adapters/report"
	"github.com/okian/riskterm/internal/adapters/upstream"
	"github.com/okian/riskterm/internal/domain/session"
	"github.com/okian/riskterm/pkg/logger"
)

// maxFormBytes bounds the assessment form body.
const maxFormBytes = 16 << 10

// Dependencies the pages need from the rest of the service.
type Dependencies interface {
	Predict(ctx context.Context, body []byte) upstream.Result
	Render(w io.Writer, in report.Input) error
}

// SessionStore resolves the visitor's assessment session.
type SessionStore interface {
	Get(ctx context.Context, id string) (*session.Session, bool)
	GetOrCreate(ctx context.Context, id string) (*session.Session, bool)
}

// Handler serves the site routes.
type Handler struct {
	deps     Dependencies
	sessions SessionStore
	logger   logger.Logger

	cookieName   string
	secureCookie bool

	pages   map[string]template.HTML
	layouts map[string]*template.Template
}

// New parses templates and renders the markdown pages once.
func New(deps Dependencies, sessions SessionStore, opts ...Option) (*Handler, error) {
	h := &Handler{
		deps:       deps,
		sessions:   sessions,
		logger:     logger.Nop(),
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		opt(h)
	}

	pages, err := renderPages()
	if err != nil {
		return nil, err
	}
	h.pages = pages

	layouts, err := parseLayouts()
	if err != nil {
		return nil, err
	}
	h.layouts = layouts
	return h, nil
}

// Register attaches the site routes to mux.
func (h *Handler) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("nil mux")
	}
	mux.HandleFunc("/", api.MetricsMiddleware(h.handleHome, "home"))
	mux.HandleFunc("/analytics", api.MetricsMiddleware(h.handleAnalytics, "analytics"))
	mux.HandleFunc("/predict", api.MetricsMiddleware(h.handlePredict, "predict"))
	mux.HandleFunc("/report.pdf", api.MetricsMiddleware(h.handleReportPDF, "report_pdf"))
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(FS()))))
}

type pageData struct {
	Title   string
	Active  string
	Content template.HTML
	Predict *predictView
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.serveMarkdown(w, r, pageHome, "Loan Default Risk")
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	h.serveMarkdown(w, r, pageAnalytics, "Model Specs")
}

func (h *Handler) serveMarkdown(w http.ResponseWriter, r *http.Request, page, title string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.render(w, r, layoutContent, pageData{Title: title, Active: page, Content: h.pages[page]})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, layout string, data pageData) {
	tmpl, ok := h.layouts[layout]
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: unknown layout %q", ErrGenerate, layout))
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %s: %w", ErrServe, layout, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "site request failed", logger.String("path", r.URL.Path), logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
