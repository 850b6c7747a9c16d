package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	apperrors "tradebot/internal/errors"
	"tradebot/internal/services"
)

// AuditHandler serves the in-memory audit trail.
type AuditHandler struct {
	audit *services.AuditService
	log   logrus.FieldLogger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(deps *Dependencies) *AuditHandler {
	return &AuditHandler{
		audit: deps.Audit,
		log:   deps.Logger.WithField("handler", "audit"),
	}
}

// List returns recent audit entries, newest first. ?limit= caps the count
// (default 50) and ?action= filters by action.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fail(w, r, h.log, apperrors.ValidationField("limit", "Limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries := []*services.AuditEntry{}
	if h.audit != nil {
		if action := r.URL.Query().Get("action"); action != "" {
			entries = h.audit.GetByAction(services.AuditAction(action), limit)
		} else {
			entries = h.audit.GetRecent(limit)
		}
	}
	respond(w, entries)
}
