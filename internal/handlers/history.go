package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"tradebot/internal/broker/ig"
)

// HistoryHandler handles activity and transaction history routes.
type HistoryHandler struct {
	ig  *ig.Client
	log logrus.FieldLogger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(deps *Dependencies) *HistoryHandler {
	return &HistoryHandler{
		ig:  deps.IG,
		log: deps.Logger.WithField("handler", "history"),
	}
}

// Activity returns dealing activity for ?from=&to=, defaulting to the last 30 days.
func (h *HistoryHandler) Activity(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	activity, err := h.ig.Activity(r.Context(), from, to)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, activity)
}

// Transactions returns deal transactions for ?from=&to=, defaulting to the last 30 days.
func (h *HistoryHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	from, to := dateRange(r)
	transactions, err := h.ig.Transactions(r.Context(), from, to)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, transactions)
}

func dateRange(r *http.Request) (string, string) {
	q := r.URL.Query()
	return q.Get("from"), q.Get("to")
}
