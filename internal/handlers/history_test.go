package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/broker/ig"
)

func TestActivity_DefaultsToTrailing30Days(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	h := NewHistoryHandler(env.deps)

	rec := call(h.Activity, "GET", "/api/history/activity", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	q, _ := url.ParseQuery(env.gw.Last().Query)
	from, err := time.Parse("2006-01-02T15:04:05.000Z", q.Get("from"))
	require.NoError(t, err)
	to, err := time.Parse("2006-01-02T15:04:05.000Z", q.Get("to"))
	require.NoError(t, err)
	assert.Equal(t, ig.HistoryWindow, to.Sub(from))
	assert.True(t, to.Equal(testNow))
}

func TestTransactions_PassesRange(t *testing.T) {
	env := newTestEnv(t)
	env.configure(t)
	env.gw.Respond("GET /history/transactions", http.StatusOK, `{"transactions":[{"reference":"REF","profitAndLoss":"E1.00"}]}`)
	h := NewHistoryHandler(env.deps)

	rec := call(h.Transactions, "GET", "/api/history/transactions?from=2024-01-01&to=2024-01-31", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["transactions"].([]any), 1)

	q, _ := url.ParseQuery(env.gw.Last().Query)
	assert.Equal(t, "2024-01-01", q.Get("from"))
	assert.Equal(t, "2024-01-31", q.Get("to"))
	assert.Equal(t, "ALL_DEAL", q.Get("type"))
}

func TestHistory_NotConfigured_Returns401(t *testing.T) {
	env := newTestEnv(t)
	h := NewHistoryHandler(env.deps)

	rec := call(h.Transactions, "GET", "/api/history/transactions", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "IG not configured", decodeBody(t, rec)["error"])
}
