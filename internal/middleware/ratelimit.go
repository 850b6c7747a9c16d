package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "tradebot/internal/errors"
)

// LimitConfig sets a limiter's sustained rate, burst and how long an idle
// caller is remembered.
type LimitConfig struct {
	PerSecond float64
	Burst     int
	IdleTTL   time.Duration
}

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// RateLimiter is a token bucket per caller key.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*caller
	cfg     LimitConfig
	key     KeyFunc
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

type caller struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts its idle sweep. Call Stop to
// end the sweep.
func NewRateLimiter(cfg LimitConfig, key KeyFunc) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 3 * time.Minute
	}
	if key == nil {
		key = ClientIP
	}
	rl := &RateLimiter{
		callers: make(map[string]*caller),
		cfg:     cfg,
		key:     key,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the idle sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

// Limit rejects requests over the caller's budget with 429 and a
// Retry-After hint.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rl.limiter(rl.key(r)).ReserveN(rl.now(), 1)
		if !res.OK() {
			WriteError(w, apperrors.New(apperrors.ErrRateLimit, "Too many requests"))
			return
		}
		if delay := res.DelayFrom(rl.now()); delay > 0 {
			res.CancelAt(rl.now())
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			WriteError(w, apperrors.New(apperrors.ErrRateLimit, "Too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.callers[key]
	if !ok {
		c = &caller{limiter: rate.NewLimiter(rate.Limit(rl.cfg.PerSecond), rl.cfg.Burst)}
		rl.callers[key] = c
	}
	c.lastSeen = rl.now()
	return c.limiter
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep forgets callers idle for longer than IdleTTL.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.cfg.IdleTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.callers {
		if c.lastSeen.Before(cutoff) {
			delete(rl.callers, key)
		}
	}
}

// tracked reports how many callers are remembered.
func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.callers)
}

// LoginLimit is the default budget for POST /api/auth/login. Every attempt
// costs a vendor authentication, so it is tight.
var LoginLimit = LimitConfig{PerSecond: 1, Burst: 5}

// APILimit is the default budget for resource routes. The dashboard polls
// positions every few seconds.
var APILimit = LimitConfig{PerSecond: 10, Burst: 20}

// ClientIP keys by the remote host of the connection. When the server
// trusts a reverse proxy, chi's RealIP has already rewritten RemoteAddr
// from X-Forwarded-For or X-Real-IP; otherwise those headers are ignored.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// TokenOrIP keys by the verified token ID, so one dashboard tab cannot
// starve another behind the same NAT. Requests without claims fall back to
// ClientIP.
func TokenOrIP(r *http.Request) string {
	if claims := GetClaims(r); claims != nil && claims.ID != "" {
		return "jti:" + claims.ID
	}
	return ClientIP(r)
}
