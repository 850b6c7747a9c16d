// Package igtest provides an in-process fake of the IG REST gateway for tests.
package igtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const (
	// APIKey, Username and Password are the credentials the gateway accepts.
	APIKey   = "key-1"
	Username = "trader"
	Password = "secret"

	// LivePrefix is the path prefix that stands in for the live gateway.
	LivePrefix = "/live"
)

// Request is a dealing call seen by the gateway.
type Request struct {
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Payload map[string]any
}

type response struct {
	status int
	body   string
}

// Gateway is a minimal IG gateway. POST .../session accepts Password with any
// API key and returns tokens "cst-N" and "xst-N"; every other call is recorded
// and answered with the configured response or 200 {}.
type Gateway struct {
	t      testing.TB
	server *httptest.Server

	sessions atomic.Int32

	// SessionDelay holds POST /session open to force concurrent refreshes to overlap.
	SessionDelay time.Duration
	// OmitTokens makes a successful login return no CST/X-SECURITY-TOKEN headers.
	OmitTokens bool

	mu           sync.Mutex
	sessionPaths []string
	requests     []Request
	responses    map[string]response
}

// NewGateway starts a Gateway that is closed when the test ends.
func NewGateway(t testing.TB) *Gateway {
	t.Helper()
	g := &Gateway{t: t, responses: map[string]response{}}
	g.server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.server.Close)
	return g
}

// DemoURL is the base URL of the demo gateway.
func (g *Gateway) DemoURL() string { return g.server.URL }

// LiveURL is the base URL of the live gateway.
func (g *Gateway) LiveURL() string { return g.server.URL + LivePrefix }

// Sessions returns how many sessions were issued.
func (g *Gateway) Sessions() int { return int(g.sessions.Load()) }

// SessionPaths returns the paths of every POST /session seen.
func (g *Gateway) SessionPaths() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sessionPaths...)
}

// Respond sets the reply for route, written as "METHOD /path".
func (g *Gateway) Respond(route string, status int, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[route] = response{status: status, body: body}
}

// Requests returns the dealing requests seen so far.
func (g *Gateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}

// Last returns the most recent dealing request and fails the test if there is none.
func (g *Gateway) Last() Request {
	g.t.Helper()
	reqs := g.Requests()
	if len(reqs) == 0 {
		g.t.Fatal("no dealing requests recorded")
	}
	return reqs[len(reqs)-1]
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/session") {
		g.serveSession(w, r)
		return
	}

	rec := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Payload)
	}

	g.mu.Lock()
	g.requests = append(g.requests, rec)
	resp, ok := g.responses[r.Method+" "+r.URL.Path]
	g.mu.Unlock()

	if !ok {
		resp = response{status: http.StatusOK, body: `{}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (g *Gateway) serveSession(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.sessionPaths = append(g.sessionPaths, r.URL.Path)
	g.mu.Unlock()

	if g.SessionDelay > 0 {
		time.Sleep(g.SessionDelay)
	}
	var creds struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)

	w.Header().Set("Content-Type", "application/json")
	if creds.Password != Password || r.Header.Get("X-IG-API-KEY") == "" || r.Header.Get("VERSION") != "2" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errorCode":"error.security.invalid-details"}`)
		return
	}

	if g.OmitTokens {
		_, _ = io.WriteString(w, `{}`)
		return
	}

	n := g.sessions.Add(1)
	w.Header().Set("CST", "cst-"+strconv.Itoa(int(n)))
	w.Header().Set("X-SECURITY-TOKEN", "xst-"+strconv.Itoa(int(n)))
	_, _ = io.WriteString(w, `{"accountType":"CFD","currentAccountId":"ABC123"}`)
}
