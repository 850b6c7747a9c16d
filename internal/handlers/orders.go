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

// OrderHandler handles working order routes.
type OrderHandler struct {
	ig    *ig.Client
	audit *services.AuditService
	log   logrus.FieldLogger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(deps *Dependencies) *OrderHandler {
	return &OrderHandler{
		ig:    deps.IG,
		audit: deps.Audit,
		log:   deps.Logger.WithField("handler", "orders"),
	}
}

// List returns the working orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.ig.WorkingOrders(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, orders)
}

// Create places a working order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}

	if req.Epic == "" || req.Direction == "" || req.Size == nil || req.Level == nil || req.Type == "" {
		fail(w, r, h.log, apperrors.Validation("Missing required fields"))
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
	if !middleware.ValidatePositive(req.Level) {
		fail(w, r, h.log, apperrors.ValidationField("level", "Level must be greater than 0"))
		return
	}
	orderType := ig.WorkingOrderType(req.Type)
	if !orderType.Valid() {
		fail(w, r, h.log, apperrors.ValidationField("type", "Type must be LIMIT or STOP"))
		return
	}

	ref, err := h.ig.CreateWorkingOrder(r.Context(), ig.WorkingOrderParams{
		Epic:      req.Epic,
		Direction: direction,
		Size:      *req.Size,
		Level:     *req.Level,
		Type:      orderType,
	})
	if err != nil {
		fail(w, r, h.log, err)
		return
	}

	h.audit.LogAction(services.AuditOrderCreated, string(h.ig.Sessions().Environment()), req.Epic, map[string]string{
		"direction":      string(direction),
		"type":           string(orderType),
		"size":           req.Size.String(),
		"level":          req.Level.String(),
		"deal_reference": ref.DealReference,
	}, r.RemoteAddr)
	respond(w, ref)
}

// Cancel deletes the working order named in the URL.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealId")
	if !middleware.ValidateDealID(dealID) {
		fail(w, r, h.log, apperrors.ValidationField("dealId", "Invalid deal id"))
		return
	}

	ref, err := h.ig.CancelWorkingOrder(r.Context(), dealID)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}

	h.audit.LogAction(services.AuditOrderCancelled, string(h.ig.Sessions().Environment()), dealID,
		map[string]string{"deal_reference": ref.DealReference}, r.RemoteAddr)
	respond(w, ref)
}
