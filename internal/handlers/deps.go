package handlers

import (
	"time"

	"github.com/sirupsen/logrus"

	"tradebot/internal/auth"
	"tradebot/internal/broker/ig"
	"tradebot/internal/services"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	IG     *ig.Client
	Tokens *auth.TokenIssuer
	Audit  *services.AuditService
	Logger logrus.FieldLogger
	Now    func() time.Time
}

// NewDependencies creates a Dependencies container with a real clock, the
// standard logger and an audit trail. Use the With methods to set the rest.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Audit:  services.NewAuditService(logrus.StandardLogger(), services.DefaultAuditCapacity),
		Logger: logrus.StandardLogger(),
		Now:    time.Now,
	}
}

// WithIG sets the IG client.
func (d *Dependencies) WithIG(c *ig.Client) *Dependencies {
	d.IG = c
	return d
}

// WithTokens sets the local access token issuer.
func (d *Dependencies) WithTokens(t *auth.TokenIssuer) *Dependencies {
	d.Tokens = t
	return d
}

// WithAudit sets the audit service.
func (d *Dependencies) WithAudit(a *services.AuditService) *Dependencies {
	d.Audit = a
	return d
}

// WithLogger sets the logger.
func (d *Dependencies) WithLogger(l logrus.FieldLogger) *Dependencies {
	d.Logger = l
	return d
}

// WithClock sets the clock used by the health endpoint.
func (d *Dependencies) WithClock(now func() time.Time) *Dependencies {
	d.Now = now
	return d
}
