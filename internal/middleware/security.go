package middleware

import (
	"net/http"
	"strings"
)

// dashboardCSP allows the bundled single-page app and nothing else. Charts
// are drawn into inline SVG, which needs inline styles.
var dashboardCSP = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data:",
	"connect-src 'self'",
	"frame-ancestors 'none'",
	"form-action 'self'",
	"base-uri 'self'",
}, "; ")

var dashboardHeaders = map[string]string{
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "geolocation=(), microphone=(), camera=(), payment=()",
	"Content-Security-Policy": dashboardCSP,
}

// API responses carry balances and positions; nothing may cache or frame them.
var apiHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "no-referrer",
	"Cache-Control":           "no-store",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// SecurityHeaders sets the header set for the dashboard's static assets.
func SecurityHeaders(next http.Handler) http.Handler {
	return withHeaders(dashboardHeaders, next)
}

// APIHeaders sets the header set for JSON API responses.
func APIHeaders(next http.Handler) http.Handler {
	return withHeaders(apiHeaders, next)
}

func withHeaders(set map[string]string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range set {
			h.Set(k, v)
		}
		if isHTTPS(r) {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// isHTTPS reports whether the browser reached us over TLS, directly or
// through a terminating proxy.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
