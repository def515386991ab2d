package report

import (
	"time"

	"golang.org/x/text/language"
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithClock overrides the time source used for the report date and the PDF
// metadata. A fixed clock makes output byte-for-byte reproducible.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides how reference ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(r *Renderer) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// WithCurrencyPrefix sets the symbol placed before money amounts.
func WithCurrencyPrefix(prefix string) Option {
	return func(r *Renderer) {
		r.currency = prefix
	}
}

// WithLanguage sets the locale for thousands separators.
func WithLanguage(tag language.Tag) Option {
	return func(r *Renderer) {
		r.lang = tag
	}
}

// WithCompression toggles PDF stream compression.
func WithCompression(enabled bool) Option {
	return func(r *Renderer) {
		r.compress = enabled
	}
}
