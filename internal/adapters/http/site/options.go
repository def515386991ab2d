package site

import "github.com/okian/riskterm/pkg/logger"

// DefaultCookieName names the cookie carrying the session id.
const DefaultCookieName = "riskterm_session"

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
	}
}

// WithSecureCookie marks the session cookie Secure, for deployments behind TLS.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) { h.secureCookie = secure }
}
