// Package services provides business logic services.
package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	// Session actions
	AuditLogin       AuditAction = "auth.login"
	AuditLoginFailed AuditAction = "auth.login_failed"
	AuditLogout      AuditAction = "auth.logout"

	// Dealing actions
	AuditPositionOpened AuditAction = "position.opened"
	AuditPositionClosed AuditAction = "position.closed"
	AuditOrderCreated   AuditAction = "order.created"
	AuditOrderCancelled AuditAction = "order.cancelled"
)

// DefaultAuditCapacity is how many entries are kept in memory.
const DefaultAuditCapacity = 500

// AuditEntry represents an audit log entry.
type AuditEntry struct {
	ID          string      `json:"id"`
	Action      AuditAction `json:"action"`
	Environment string      `json:"environment,omitempty"`
	// EntityID is the vendor identifier acted on: an epic, dealId or dealReference.
	EntityID  string    `json:"entity_id,omitempty"`
	Details   string    `json:"details,omitempty"` // JSON
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditService records dealing actions. Entries go to the log and to a
// bounded in-memory buffer; nothing survives a restart.
type AuditService struct {
	mu      sync.RWMutex
	entries []*AuditEntry
	next    int
	full    bool
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewAuditService creates an AuditService keeping the last capacity entries.
func NewAuditService(log logrus.FieldLogger, capacity int) *AuditService {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditService{
		entries: make([]*AuditEntry, capacity),
		log:     log.WithField("component", "audit"),
		now:     time.Now,
	}
}

// WithClock sets the clock used to stamp entries.
func (s *AuditService) WithClock(now func() time.Time) *AuditService {
	s.now = now
	return s
}

// Log records an audit entry, filling in ID and CreatedAt. A nil service
// drops the entry.
func (s *AuditService) Log(entry *AuditEntry) {
	if s == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"action":      entry.Action,
		"environment": entry.Environment,
		"entity_id":   entry.EntityID,
		"ip":          entry.IPAddress,
	}).Info(FormatEntry(entry))
}

// LogAction is a convenience method for logging an action with automatic JSON serialization.
func (s *AuditService) LogAction(action AuditAction, environment, entityID string, details any, ip string) {
	entry := &AuditEntry{
		Action:      action,
		Environment: environment,
		EntityID:    entityID,
		IPAddress:   ip,
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}
	s.Log(entry)
}

// GetRecent returns up to limit entries, newest first.
func (s *AuditService) GetRecent(limit int) []*AuditEntry {
	return s.filter(limit, func(*AuditEntry) bool { return true })
}

// GetByAction returns up to limit entries for action, newest first.
func (s *AuditService) GetByAction(action AuditAction, limit int) []*AuditEntry {
	return s.filter(limit, func(e *AuditEntry) bool { return e.Action == action })
}

func (s *AuditService) filter(limit int, keep func(*AuditEntry) bool) []*AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*AuditEntry, 0, limit)
	for i := 1; i <= size && len(out) < limit; i++ {
		e := s.entries[(s.next-i+len(s.entries))%len(s.entries)]
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// FormatEntry returns a human-readable description of an audit entry.
func FormatEntry(e *AuditEntry) string {
	if e.EntityID == "" {
		return fmt.Sprintf("[%s] %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action)
	}
	return fmt.Sprintf("[%s] %s %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.EntityID)
}
