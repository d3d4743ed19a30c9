package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	return newLimiter(cfg, clock.Now), clock
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("10.0.0.1", "/projects", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
		assert.Equal(t, "default", info.Rule)
	}

	allowed, info := l.Allow("10.0.0.1", "/projects", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 60; i++ {
		l.Allow("c", "/x", "GET")
	}
	allowed, _ := l.Allow("c", "/x", "GET")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("c", "/x", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/x", "GET")
	assert.False(t, allowed)
}

func TestLimiter_PrefixRuleSharesBucketAcrossIDs(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Rules:         []Rule{{Name: "steps", Method: "PUT", Path: "/steps/", Limit: 2, Window: time.Minute}},
	})
	defer l.Stop()

	ok1, _ := l.Allow("c", "/steps/a/status", "PUT")
	ok2, _ := l.Allow("c", "/steps/b/progress", "PUT")
	ok3, info := l.Allow("c", "/steps/c/position", "PUT")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
	assert.Equal(t, "steps", info.Rule)

	// Other clients have their own bucket.
	ok, _ := l.Allow("other", "/steps/a/status", "PUT")
	assert.True(t, ok)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		ok, _ := l.Allow("10.0.0.1", "/projects", "GET")
		require.True(t, ok)
	}
	ok, info := l.Allow("10.0.0.2", "/projects", "GET")
	assert.False(t, ok)
	assert.Equal(t, "blacklist", info.Rule)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("c", "/projects", "GET")
		assert.True(t, ok)
	}
}

func TestLimiter_UnlimitedRules(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Rules: DefaultRules()})
	defer l.Stop()
	for i := 0; i < 20; i++ {
		ok, _ := l.Allow("c", "/health", "GET")
		require.True(t, ok)
		ok, _ = l.Allow("c", "/metrics", "GET")
		require.True(t, ok)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute, IdleTTL: time.Hour})
	defer l.Stop()

	l.Allow("a", "/x", "GET")
	clock.Advance(30 * time.Minute)
	l.Allow("b", "/x", "GET")
	clock.Advance(45 * time.Minute)

	assert.Equal(t, 1, l.evictIdle())
	assert.Len(t, l.buckets, 1)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Minute})
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatch(t *testing.T) {
	rules := []Rule{
		{Name: "projects", Method: "POST", Path: "/projects"},
		{Name: "project-children", Method: "POST", Path: "/projects/"},
		{Name: "auth", Method: "POST", Path: "/auth/"},
		{Name: "auth-login", Method: "POST", Path: "/auth/login/"},
	}

	assert.Equal(t, "projects", Match("POST", "/projects", rules).Name)
	assert.Equal(t, "project-children", Match("POST", "/projects/1/steps", rules).Name)
	assert.Equal(t, "auth-login", Match("POST", "/auth/login/x", rules).Name)
	assert.Nil(t, Match("GET", "/projects", rules))
	assert.Nil(t, Match("POST", "/feedback/1", rules))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.Rules)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
