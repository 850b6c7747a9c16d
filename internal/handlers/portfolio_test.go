package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/services"
)

func TestAccount_NotConfigured_Returns401(t *testing.T) {
	env := newTestEnv(t)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.Account, "GET", "/api/portfolio/account", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "IG not configured", decodeBody(t, rec)["error"])
}

func TestAccount_PassesAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.gw.Respond("GET /accounts", http.StatusOK,
		`{"accounts":[{"accountId":"ABC123","accountName":"CFD","accountType":"CFD","preferred":true,"currency":"EUR","balance":{"balance":1000,"deposit":0,"profitLoss":5.5,"available":995}}]}`)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.Account, "GET", "/api/portfolio/account", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decodeBody(t, rec)["accounts"].([]any)
	require.Len(t, accounts, 1)
	balance := accounts[0].(map[string]any)["balance"].(map[string]any)
	assert.Equal(t, 5.5, balance["profitLoss"])
}

func TestPositions_VendorError_Returns500WithCode(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.gw.Respond("GET /positions", http.StatusForbidden, `{"errorCode":"error.public-api.exceeded-api-key-allowance"}`)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.Positions, "GET", "/api/portfolio/positions", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API error: error.public-api.exceeded-api-key-allowance", decodeBody(t, rec)["error"])
}

func TestOpenPosition_MissingFields_Returns400WithoutVendorCall(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no epic", `{"direction":"BUY","size":1}`},
		{"no direction", `{"epic":"IX.D.DAX.IFMM.IP","size":1}`},
		{"no size", `{"epic":"IX.D.DAX.IFMM.IP","direction":"BUY"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.configure(t)
			h := NewPortfolioHandler(env.deps)

			rec := call(h.OpenPosition, "POST", "/api/portfolio/positions", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Missing epic, direction, or size", decodeBody(t, rec)["error"])
			assert.Empty(t, env.gw.Requests())
			assert.Empty(t, env.gw.SessionPaths())
		})
	}
}

func TestOpenPosition_InvalidValues_Return400(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad direction", `{"epic":"IX.D.DAX.IFMM.IP","direction":"LONG","size":1}`, "direction"},
		{"zero size", `{"epic":"IX.D.DAX.IFMM.IP","direction":"BUY","size":0}`, "size"},
		{"negative size", `{"epic":"IX.D.DAX.IFMM.IP","direction":"BUY","size":-2}`, "size"},
		{"bad epic", `{"epic":"../session","direction":"BUY","size":1}`, "epic"},
		{"bad order type", `{"epic":"IX.D.DAX.IFMM.IP","direction":"BUY","size":1,"orderType":"QUOTE"}`, "orderType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.configure(t)
			h := NewPortfolioHandler(env.deps)

			rec := call(h.OpenPosition, "POST", "/api/portfolio/positions", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decodeBody(t, rec)["field"])
			assert.Empty(t, env.gw.Requests())
		})
	}
}

func TestOpenPosition_ForwardsDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.gw.Respond("POST /positions/otc", http.StatusOK, `{"dealReference":"REF-1"}`)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.OpenPosition, "POST", "/api/portfolio/positions",
		`{"epic":"IX.D.DAX.IFMM.IP","direction":"SELL","size":2.5,"stopDistance":20}`, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "REF-1", decodeBody(t, rec)["dealReference"])

	payload := env.gw.Last().Payload
	assert.Equal(t, "SELL", payload["direction"])
	assert.Equal(t, 2.5, payload["size"])
	assert.Equal(t, "MARKET", payload["orderType"])
	assert.Equal(t, "EUR", payload["currencyCode"])
	assert.Equal(t, true, payload["forceOpen"])
	assert.Equal(t, float64(20), payload["stopDistance"])
	assert.NotContains(t, payload, "limitDistance")

	opened := env.audit.GetByAction(services.AuditPositionOpened, 0)
	require.Len(t, opened, 1)
	assert.Equal(t, "IX.D.DAX.IFMM.IP", opened[0].EntityID)
	assert.Contains(t, opened[0].Details, `"deal_reference":"REF-1"`)
}

func TestClosePosition_FlipsDirection(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.gw.Respond("POST /positions/otc", http.StatusOK, `{"dealReference":"REF-CLOSE"}`)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.ClosePosition, "DELETE", "/api/portfolio/positions/DIAAAABBB1",
		`{"direction":"BUY","size":1}`, map[string]string{"dealId": "DIAAAABBB1"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "REF-CLOSE", decodeBody(t, rec)["dealReference"])

	req := env.gw.Last()
	assert.Equal(t, "/positions/otc", req.Path)
	assert.Equal(t, "1", req.Header.Get("VERSION"))
	assert.Equal(t, "SELL", req.Payload["direction"])
	assert.Equal(t, "DIAAAABBB1", req.Payload["dealId"])
	assert.Equal(t, float64(1), req.Payload["size"])

	closed := env.audit.GetByAction(services.AuditPositionClosed, 0)
	require.Len(t, closed, 1)
	assert.Equal(t, "DIAAAABBB1", closed[0].EntityID)
}

func TestClosePosition_MissingBody_Returns400(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.ClosePosition, "DELETE", "/api/portfolio/positions/DIAAAABBB1",
		"", map[string]string{"dealId": "DIAAAABBB1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing direction or size", decodeBody(t, rec)["error"])
	assert.Empty(t, env.gw.Requests())
}

func TestClosePosition_InvalidDealID_Returns400(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	h := NewPortfolioHandler(env.deps)

	rec := call(h.ClosePosition, "DELETE", "/api/portfolio/positions/x",
		`{"direction":"BUY","size":1}`, map[string]string{"dealId": "a/b"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.gw.Requests())
}
