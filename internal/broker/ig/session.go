package ig

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"tradebot/internal/broker"
	apperrors "tradebot/internal/errors"
)

const (
	// SessionLifetime is the fixed lifetime assumed for a dealing session.
	// IG does not report the real token lifetime.
	SessionLifetime = 6 * time.Hour

	// StaleMargin is how long before expiry a session stops being used.
	StaleMargin = 60 * time.Second

	headerAPIKey        = "X-IG-API-KEY"
	headerCST           = "CST"
	headerSecurityToken = "X-SECURITY-TOKEN"
	headerVersion       = "VERSION"
)

// lease is everything one vendor call needs, captured together so a
// concurrent Configure cannot mix old tokens with a new API key.
type lease struct {
	apiKey  string
	baseURL string
	session *Session
}

// account is the configured login plus the session obtained with it.
type account struct {
	apiKey      string
	username    string
	password    broker.Sealed
	environment Environment
	generation  uint64

	session *Session
}

// SessionClient owns the IG credentials and the single process-wide
// dealing session. Refreshes are demand-driven and single-flight:
// concurrent callers that find the session stale share one POST /session.
type SessionClient struct {
	loginMu    sync.Mutex
	mu         sync.RWMutex
	acct       *account
	generation uint64
	refresh    singleflight.Group

	http    *resty.Client
	baseURL func(Environment) string
	sealer  *broker.Sealer
	now     func() time.Time
	log     logrus.FieldLogger
}

// newSessionClient creates a SessionClient. See New.
func newSessionClient(rc *resty.Client, baseURL func(Environment) string, sealer *broker.Sealer, now func() time.Time, log logrus.FieldLogger) *SessionClient {
	return &SessionClient{
		http:    rc,
		baseURL: baseURL,
		sealer:  sealer,
		now:     now,
		log:     log,
	}
}

// Configure replaces the credentials and discards any session, so the
// next call authenticates again.
func (c *SessionClient) Configure(creds Credentials) error {
	_, err := c.configure(creds)
	return err
}

// Login configures creds and opens a session with them in one step.
// Logins are serialized, so the last login to finish owns the process-wide
// session. A failed login leaves the client unconfigured unless a Configure
// or Clear has replaced its credentials in the meantime.
func (c *SessionClient) Login(ctx context.Context, creds Credentials) (*Session, error) {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	gen, err := c.configure(creds)
	if err != nil {
		return nil, err
	}
	l, err := c.authenticate(ctx)
	if err == nil && !c.owns(gen, l.session) {
		err = apperrors.Authentication("Login superseded")
	}
	if err != nil {
		c.clearGeneration(gen)
		return nil, err
	}
	return l.session, nil
}

func (c *SessionClient) configure(creds Credentials) (uint64, error) {
	sealed, err := c.sealer.Seal(creds.Password)
	if err != nil {
		return 0, errors.Wrap(err, "sealing IG password")
	}
	env := creds.Environment
	if env == "" {
		env = EnvDemo
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.acct = &account{
		apiKey:      creds.APIKey,
		username:    creds.Username,
		password:    sealed,
		environment: env,
		generation:  c.generation,
	}
	return c.generation, nil
}

// owns reports whether session is installed under credentials generation gen.
func (c *SessionClient) owns(gen uint64, session *Session) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.acct != nil && c.acct.generation == gen && c.acct.session == session
}

// clearGeneration forgets the credentials only if they are still generation gen.
func (c *SessionClient) clearGeneration(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.acct != nil && c.acct.generation == gen {
		c.generation++
		c.acct = nil
	}
}

// Clear forgets the credentials and session.
func (c *SessionClient) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.acct = nil
}

// Environment returns the configured environment, or "" when unconfigured.
func (c *SessionClient) Environment() Environment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.acct == nil {
		return ""
	}
	return c.acct.environment
}

// State reports the lifecycle state at the current time.
func (c *SessionClient) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.acct == nil:
		return StateUnconfigured
	case c.acct.session == nil:
		return StateNoSession
	case c.acct.session.IsStale(c.now()):
		return StateSessionStale
	default:
		return StateSessionValid
	}
}

// Authenticate opens a new dealing session with the configured credentials.
func (c *SessionClient) Authenticate(ctx context.Context) (*Session, error) {
	l, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return l.session, nil
}

// ValidSession returns the current session unless it is missing or within
// StaleMargin of expiry, in which case it authenticates first.
func (c *SessionClient) ValidSession(ctx context.Context) (*Session, error) {
	l, err := c.lease(ctx)
	if err != nil {
		return nil, err
	}
	return l.session, nil
}

// lease returns a usable session together with the API key and gateway it belongs to.
func (c *SessionClient) lease(ctx context.Context) (lease, error) {
	l, acct := c.current()
	if acct == nil {
		return lease{}, apperrors.NotConfigured()
	}
	if l.session != nil {
		return l, nil
	}

	// Keyed by generation so a reconfigure never joins a refresh for old credentials.
	key := strconv.FormatUint(acct.generation, 10)
	v, err, shared := c.refresh.Do(key, func() (any, error) {
		// A refresh may have finished between current() and Do.
		if l, acct := c.current(); acct != nil && l.session != nil {
			return l, nil
		}
		// The shared refresh must not die with the first caller's request.
		return c.authenticate(context.WithoutCancel(ctx))
	})
	if err != nil {
		return lease{}, err
	}
	if shared {
		c.log.Debug("joined in-flight IG session refresh")
	}
	return v.(lease), nil
}

// current returns the configured account and, when its session is still
// fresh, a lease on it. The lease has a nil session otherwise.
func (c *SessionClient) current() (lease, *account) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	acct := c.acct
	if acct == nil || acct.session == nil || acct.session.IsStale(c.now()) {
		return lease{}, acct
	}
	return lease{apiKey: acct.apiKey, baseURL: c.baseURL(acct.environment), session: acct.session}, acct
}

// authenticate performs POST /session and installs the result.
func (c *SessionClient) authenticate(ctx context.Context) (lease, error) {
	c.mu.RLock()
	acct := c.acct
	c.mu.RUnlock()
	if acct == nil {
		return lease{}, apperrors.NotConfigured()
	}

	password, err := c.sealer.Open(acct.password)
	if err != nil {
		return lease{}, errors.Wrap(err, "opening sealed IG password")
	}

	baseURL := c.baseURL(acct.environment)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerAPIKey, acct.apiKey).
		SetHeader(headerVersion, "2").
		SetBody(map[string]string{
			"identifier": acct.username,
			"password":   password,
		}).
		Post(baseURL + "/session")
	if err != nil {
		return lease{}, errors.Wrap(err, "requesting IG session")
	}

	if !resp.IsSuccess() {
		c.log.WithFields(logrus.Fields{
			"environment": acct.environment,
			"status":      resp.StatusCode(),
		}).Warn("IG rejected session request")
		return lease{}, authenticationError(resp.StatusCode(), resp.Body())
	}

	cst := resp.Header().Get(headerCST)
	securityToken := resp.Header().Get(headerSecurityToken)
	if cst == "" || securityToken == "" {
		return lease{}, apperrors.Authentication("Missing session tokens")
	}

	session := &Session{
		CST:           cst,
		SecurityToken: securityToken,
		ExpiresAt:     c.now().Add(SessionLifetime),
	}

	c.mu.Lock()
	// Only install if the credentials were not replaced while we were waiting.
	if c.acct != nil && c.acct.generation == acct.generation {
		c.acct.session = session
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"environment": acct.environment,
		"expires_at":  session.ExpiresAt.Format(time.RFC3339),
	}).Info("IG session established")

	return lease{apiKey: acct.apiKey, baseURL: baseURL, session: session}, nil
}

// headers returns the headers that authenticate a dealing call.
func (l lease) headers(version int) map[string]string {
	return map[string]string{
		headerAPIKey:        l.apiKey,
		headerCST:           l.session.CST,
		headerSecurityToken: l.session.SecurityToken,
		headerVersion:       strconv.Itoa(version),
		"Accept":            "application/json; charset=UTF-8",
		"Content-Type":      "application/json; charset=UTF-8",
	}
}
