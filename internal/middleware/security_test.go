package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveWith(mw func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	rec := serveWith(SecurityHeaders, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "payment=()")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "plain HTTP must not get HSTS")
}

func TestSecurityHeaders_CSP(t *testing.T) {
	rec := serveWith(SecurityHeaders, httptest.NewRequest("GET", "/", nil))
	csp := rec.Header().Get("Content-Security-Policy")

	for _, directive := range []string{
		"default-src 'self'",
		"script-src 'self'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
	} {
		assert.Contains(t, csp, directive)
	}
	assert.NotContains(t, csp, "unsafe-eval")
	// Scripts come only from the bundle.
	assert.False(t, strings.Contains(csp, "script-src 'self' http"), "script-src must not allow remote hosts: %s", csp)
}

func TestAPIHeaders(t *testing.T) {
	rec := serveWith(APIHeaders, httptest.NewRequest("GET", "/api/portfolio/account", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Cache-Control":           "no-store",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for header, value := range want {
		assert.Equal(t, value, rec.Header().Get(header), header)
	}
}

func TestHSTS_OnlyOverHTTPS(t *testing.T) {
	direct := httptest.NewRequest("GET", "/api/health", nil)
	direct.TLS = &tls.ConnectionState{}
	assert.NotEmpty(t, serveWith(APIHeaders, direct).Header().Get("Strict-Transport-Security"))

	proxied := httptest.NewRequest("GET", "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	assert.NotEmpty(t, serveWith(SecurityHeaders, proxied).Header().Get("Strict-Transport-Security"))
}
