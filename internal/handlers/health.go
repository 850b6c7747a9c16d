package handlers

import (
	"net/http"
	"time"

	"tradebot/internal/models"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{now: deps.Now}
}

// Health returns {status:"ok", timestamp}.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, models.NewHealthResponse(h.now()))
}
