package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"tradebot/internal/auth"
	"tradebot/internal/broker/ig"
	apperrors "tradebot/internal/errors"
	"tradebot/internal/middleware"
	"tradebot/internal/models"
	"tradebot/internal/services"
)

// AuthHandler handles login, token verification and logout.
type AuthHandler struct {
	ig     *ig.Client
	tokens *auth.TokenIssuer
	authMW *middleware.AuthMiddleware
	audit  *services.AuditService
	log    logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		ig:     deps.IG,
		tokens: deps.Tokens,
		authMW: middleware.NewAuthMiddleware(deps.Tokens),
		audit:  deps.Audit,
		log:    deps.Logger.WithField("handler", "auth"),
	}
}

// Login configures the IG credentials, opens a dealing session and returns a
// local access token. A failed login leaves the proxy unconfigured.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, h.log, err)
		return
	}

	req.APIKey = middleware.SanitizeString(req.APIKey)
	req.Username = middleware.SanitizeString(req.Username)
	if !middleware.ValidateRequired(req.APIKey) ||
		!middleware.ValidateRequired(req.Username) ||
		req.Password == "" {
		fail(w, r, h.log, apperrors.Validation("Missing apiKey, username, or password"))
		return
	}

	env, err := ig.ParseEnvironment(req.Environment)
	if err != nil {
		fail(w, r, h.log, apperrors.ValidationField("environment", "Environment must be demo or live"))
		return
	}

	if _, err := h.ig.Sessions().Login(r.Context(), ig.Credentials{
		APIKey:      req.APIKey,
		Username:    req.Username,
		Password:    req.Password,
		Environment: env,
	}); err != nil {
		h.log.WithField("environment", env).WithError(err).Warn("IG login failed")
		h.audit.LogAction(services.AuditLoginFailed, string(env), "", map[string]string{"error": apperrors.Message(err)}, r.RemoteAddr)
		middleware.WriteJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: apperrors.Message(err)})
		return
	}

	token, err := h.tokens.Issue(string(env))
	if err != nil {
		fail(w, r, h.log, apperrors.Internal("Could not issue token", err))
		return
	}

	h.audit.LogAction(services.AuditLogin, string(env), "", nil, r.RemoteAddr)
	respond(w, models.LoginResponse{
		Success:     true,
		Token:       token,
		Environment: string(env),
	})
}

// Verify checks the bearer token and returns its decoded payload.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authMW.Authenticate(r)
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	respond(w, models.VerifyResponse{
		Valid:   true,
		Decoded: tokenPayload(claims),
	})
}

// Logout forgets the IG credentials and session. The bearer token is checked
// by middleware before this runs.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	env := h.ig.Sessions().Environment()
	h.ig.Sessions().Clear()
	h.audit.LogAction(services.AuditLogout, string(env), "", nil, r.RemoteAddr)
	respond(w, models.SuccessResponse{Success: true})
}

func tokenPayload(c *auth.Claims) models.TokenPayload {
	p := models.TokenPayload{Environment: c.Environment, ID: c.ID}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Unix()
	}
	return p
}
