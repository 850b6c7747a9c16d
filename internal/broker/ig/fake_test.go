package ig

import (
	"sync"
	"testing"
	"time"

	"tradebot/internal/broker/ig/igtest"
	"tradebot/internal/logging"
)

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClient(t *testing.T, g *igtest.Gateway, clock *testClock) *Client {
	t.Helper()
	c, err := New(Options{
		DemoURL: g.DemoURL(),
		LiveURL: g.LiveURL(),
		Timeout: 5 * time.Second,
		Logger:  logging.Discard(),
		Now:     clock.Now,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func demoCredentials() Credentials {
	return Credentials{APIKey: igtest.APIKey, Username: igtest.Username, Password: igtest.Password, Environment: EnvDemo}
}
