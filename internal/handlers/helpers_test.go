package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"tradebot/internal/auth"
	"tradebot/internal/broker/ig"
	"tradebot/internal/broker/ig/igtest"
	"tradebot/internal/logging"
	"tradebot/internal/services"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	gw     *igtest.Gateway
	ig     *ig.Client
	tokens *auth.TokenIssuer
	audit  *services.AuditService
	deps   *Dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gw := igtest.NewGateway(t)
	client, err := ig.New(ig.Options{
		DemoURL: gw.DemoURL(),
		LiveURL: gw.LiveURL(),
		Timeout: 5 * time.Second,
		Logger:  logging.Discard(),
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer("test-secret", 24*time.Hour).WithClock(func() time.Time { return testNow })
	audit := services.NewAuditService(logging.Discard(), 0).WithClock(func() time.Time { return testNow })
	deps := NewDependencies().
		WithIG(client).
		WithTokens(tokens).
		WithAudit(audit).
		WithLogger(logging.Discard()).
		WithClock(func() time.Time { return testNow })

	return &testEnv{gw: gw, ig: client, tokens: tokens, audit: audit, deps: deps}
}

// configure logs the proxy in without going through the login handler.
func (e *testEnv) configure(t *testing.T) {
	t.Helper()
	require.NoError(t, e.ig.Sessions().Configure(ig.Credentials{
		APIKey:      igtest.APIKey,
		Username:    igtest.Username,
		Password:    igtest.Password,
		Environment: ig.EnvDemo,
	}))
}

// call invokes h with an optional JSON body and chi URL params.
func call(h http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}
