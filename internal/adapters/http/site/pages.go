package site

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Page keys, also used to highlight the active nav entry.
const (
	pageHome      = "home"
	pageAnalytics = "analytics"
	pagePredict   = "predict"
)

// Layout names.
const (
	layoutContent = "content"
	layoutPredict = "predict"
)

var markdownPages = map[string]string{ //nolint:gochecknoglobals // page table
	pageHome:      "content/home.md",
	pageAnalytics: "content/analytics.md",
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
	)
}

// renderPages converts every embedded markdown page to HTML.
func renderPages() (map[string]template.HTML, error) {
	md := newMarkdown()
	out := make(map[string]template.HTML, len(markdownPages))
	for key, path := range markdownPages {
		src, err := assets.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrGenerate, path, err)
		}
		var buf bytes.Buffer
		if err := md.Convert(src, &buf); err != nil {
			return nil, fmt.Errorf("%w: convert %s: %w", ErrGenerate, path, err)
		}
		out[key] = template.HTML(buf.String()) //nolint:gosec // generated from embedded markdown
	}
	return out, nil
}

// parseLayouts builds one template set per page body, each sharing the base layout.
func parseLayouts() (map[string]*template.Template, error) {
	base, err := template.ParseFS(assets, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("%w: layout: %w", ErrGenerate, err)
	}

	bodies := map[string]string{
		layoutContent: "templates/content.html",
		layoutPredict: "templates/predict.html",
	}
	out := make(map[string]*template.Template, len(bodies))
	for name, path := range bodies {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("%w: clone %s: %w", ErrGenerate, name, err)
		}
		if _, err := t.ParseFS(assets, path); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrGenerate, path, err)
		}
		out[name] = t
	}
	return out, nil
}
