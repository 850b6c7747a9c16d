package ig

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tradebot/internal/broker"
)

const (
	defaultDemoURL = "https://demo-api.ig.com/gateway/deal"
	defaultLiveURL = "https://api.ig.com/gateway/deal"
	defaultTimeout = 30 * time.Second

	// dealCurrency is the currency every deal is placed in.
	dealCurrency = "EUR"
)

// Options configures a Client.
type Options struct {
	DemoURL string
	LiveURL string
	// Timeout bounds each vendor call. Zero uses 30s.
	Timeout time.Duration
	Logger  logrus.FieldLogger
	// Now is the clock used for session expiry. Nil uses time.Now.
	Now func() time.Time
	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *http.Client
}

// Client forwards authenticated requests to the IG REST API.
// It is safe for concurrent use.
type Client struct {
	sessions *SessionClient
	http     *resty.Client
	log      logrus.FieldLogger
}

// New creates a Client with no credentials configured.
func New(opts Options) (*Client, error) {
	if opts.DemoURL == "" {
		opts.DemoURL = defaultDemoURL
	}
	if opts.LiveURL == "" {
		opts.LiveURL = defaultLiveURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	sealer, err := broker.NewRandomSealer("ig-password")
	if err != nil {
		return nil, err
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(opts.Timeout)

	demoURL := strings.TrimSuffix(opts.DemoURL, "/")
	liveURL := strings.TrimSuffix(opts.LiveURL, "/")
	baseURL := func(env Environment) string {
		if env == EnvLive {
			return liveURL
		}
		return demoURL
	}

	log := opts.Logger.WithField("component", "ig")
	return &Client{
		sessions: newSessionClient(rc, baseURL, sealer, opts.Now, log),
		http:     rc,
		log:      log,
	}, nil
}

// Sessions returns the session client owned by c.
func (c *Client) Sessions() *SessionClient {
	return c.sessions
}

// Send performs an authenticated request against path and decodes the JSON
// response into out. A nil body sends no payload; a nil out discards the body.
// Failures are returned on first occurrence; nothing is retried.
func (c *Client) Send(ctx context.Context, method, path string, body any, version int, out any) error {
	l, err := c.sessions.lease(ctx)
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(l.headers(version))
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, l.baseURL+path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"version":  version,
		"status":   resp.StatusCode(),
		"duration": time.Since(start).String(),
	})
	if !resp.IsSuccess() {
		entry.Warn("IG request failed")
		return newVendorError(resp.StatusCode(), resp.Body())
	}
	entry.Debug("IG request")

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, path)
	}
	return nil
}
