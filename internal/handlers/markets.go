package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"tradebot/internal/broker/ig"
	apperrors "tradebot/internal/errors"
	"tradebot/internal/middleware"
)

// MarketHandler handles market search, details and price routes.
type MarketHandler struct {
	ig  *ig.Client
	log logrus.FieldLogger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(deps *Dependencies) *MarketHandler {
	return &MarketHandler{
		ig:  deps.IG,
		log: deps.Logger.WithField("handler", "markets"),
	}
}

// Search finds markets matching ?q=.
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := middleware.SanitizeString(r.URL.Query().Get("q"))
	if q == "" {
		fail(w, r, h.log, apperrors.Validation("Missing q parameter"))
		return
	}

	markets, err := h.ig.SearchMarkets(r.Context(), q)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, markets)
}

// Market returns the details of one market.
func (h *MarketHandler) Market(w http.ResponseWriter, r *http.Request) {
	epic, ok := h.epic(w, r)
	if !ok {
		return
	}

	market, err := h.ig.Market(r.Context(), epic)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, market)
}

// Prices returns historical candles. ?resolution= defaults to HOUR and ?max= to 100.
func (h *MarketHandler) Prices(w http.ResponseWriter, r *http.Request) {
	epic, ok := h.epic(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	resolution := query.Get("resolution")
	if resolution != "" && !ig.ValidResolution(resolution) {
		fail(w, r, h.log, apperrors.ValidationField("resolution", "Invalid resolution"))
		return
	}

	max := 0
	if raw := query.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(w, r, h.log, apperrors.ValidationField("max", "max must be a positive integer"))
			return
		}
		max = n
	}

	prices, err := h.ig.Prices(r.Context(), epic, resolution, max)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, prices)
}

func (h *MarketHandler) epic(w http.ResponseWriter, r *http.Request) (string, bool) {
	epic := chi.URLParam(r, "epic")
	if !middleware.ValidateEpic(epic) {
		fail(w, r, h.log, apperrors.ValidationField("epic", "Invalid epic"))
		return "", false
	}
	return epic, true
}
