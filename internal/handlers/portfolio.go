package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"tradebot/internal/broker/ig"
	apperrors "tradebot/internal/errors"
	"tradebot/internal/middleware"
	"tradebot/internal/models"
	"tradebot/internal/services"
)

// PortfolioHandler handles account and position routes.
type PortfolioHandler struct {
	ig    *ig.Client
	audit *services.AuditService
	log   logrus.FieldLogger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(deps *Dependencies) *PortfolioHandler {
	return &PortfolioHandler{
		ig:    deps.IG,
		audit: deps.Audit,
		log:   deps.Logger.WithField("handler", "portfolio"),
	}
}

// Account returns the IG accounts and balances.
func (h *PortfolioHandler) Account(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ig.Accounts(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, accounts)
}

// Positions returns the open positions.
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.ig.Positions(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, positions)
}

// OpenPosition opens a market position.
func (h *PortfolioHandler) OpenPosition(w http.ResponseWriter, r *http.Request) {
	var req models.OpenPositionRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}

	if req.Epic == "" || req.Direction == "" || req.Size == nil {
		fail(w, r, h.log, apperrors.Validation("Missing epic, direction, or size"))
		return
	}
	if !middleware.ValidateEpic(req.Epic) {
		fail(w, r, h.log, apperrors.ValidationField("epic", "Invalid epic"))
		return
	}
	direction := ig.Direction(req.Direction)
	if !direction.Valid() {
		fail(w, r, h.log, apperrors.ValidationField("direction", "Direction must be BUY or SELL"))
		return
	}
	if !middleware.ValidatePositive(req.Size) {
		fail(w, r, h.log, apperrors.ValidationField("size", "Size must be greater than 0"))
		return
	}
	orderType := ig.OrderType(req.OrderType)
	if orderType != "" && orderType != ig.OrderMarket && orderType != ig.OrderLimit {
		fail(w, r, h.log, apperrors.ValidationField("orderType", "Order type must be MARKET or LIMIT"))
		return
	}

	ref, err := h.ig.OpenPosition(r.Context(), ig.OpenPositionParams{
		Epic:          req.Epic,
		Direction:     direction,
		Size:          *req.Size,
		OrderType:     orderType,
		StopDistance:  req.StopDistance,
		LimitDistance: req.LimitDistance,
	})
	if err != nil {
		fail(w, r, h.log, err)
		return
	}

	h.audit.LogAction(services.AuditPositionOpened, string(h.ig.Sessions().Environment()), req.Epic, map[string]string{
		"direction":      string(direction),
		"size":           req.Size.String(),
		"deal_reference": ref.DealReference,
	}, r.RemoteAddr)
	respond(w, ref)
}

// ClosePosition closes the position named in the URL. The body carries the
// direction the position was opened with and the size to close.
func (h *PortfolioHandler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealId")
	if !middleware.ValidateDealID(dealID) {
		fail(w, r, h.log, apperrors.ValidationField("dealId", "Invalid deal id"))
		return
	}

	var req models.ClosePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}
	if req.Direction == "" || req.Size == nil {
		fail(w, r, h.log, apperrors.Validation("Missing direction or size"))
		return
	}
	direction := ig.Direction(req.Direction)
	if !direction.Valid() {
		fail(w, r, h.log, apperrors.ValidationField("direction", "Direction must be BUY or SELL"))
		return
	}
	if !middleware.ValidatePositive(req.Size) {
		fail(w, r, h.log, apperrors.ValidationField("size", "Size must be greater than 0"))
		return
	}

	ref, err := h.ig.ClosePosition(r.Context(), dealID, direction, *req.Size)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}

	h.audit.LogAction(services.AuditPositionClosed, string(h.ig.Sessions().Environment()), dealID, map[string]string{
		"direction":      string(direction.Opposite()),
		"size":           req.Size.String(),
		"deal_reference": ref.DealReference,
	}, r.RemoteAddr)
	respond(w, ref)
}
