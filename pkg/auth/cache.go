package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"shipdesk-hq/gateway/pkg/telemetry/metrics"
)

// cacheName labels the token cache in metrics.
const cacheName = "token"

// Key identifies the credentials a token was issued for.
type Key struct {
	Tenant   string
	ClientID string
	Scope    string
}

func (k Key) String() string {
	return k.Tenant + "\x00" + k.ClientID + "\x00" + k.Scope
}

// FetchFunc obtains a fresh token.
type FetchFunc func(ctx context.Context) (Token, error)

// Cache holds tokens per Key until they come within skew of their expiry.
//
// Callers that miss the cache for the same key share one in-flight fetch.
// The fetch is detached from the cancellation of the caller that started
// it, so a cancelled request does not fail the others waiting on it.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]Token
	group   singleflight.Group

	skew    time.Duration
	now     func() time.Time
	metrics *metrics.Collector
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithCacheMetrics records hits, misses and invalidations.
func WithCacheMetrics(m *metrics.Collector) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache creates an empty cache refreshing tokens skew before expiry.
func NewCache(skew time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[Key]Token),
		skew:    skew,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSkew changes the refresh margin, e.g. after a configuration reload.
func (c *Cache) SetSkew(skew time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skew = skew
}

// Get returns the cached token for key, calling fetch when there is none or
// it is about to expire. The boolean reports a cache hit.
func (c *Cache) Get(ctx context.Context, key Key, fetch FetchFunc) (Token, bool, error) {
	if tok, ok := c.lookup(key); ok {
		c.metrics.RecordCacheHit(cacheName)
		return tok, true, nil
	}
	c.metrics.RecordCacheMiss(cacheName)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		// Another caller may have stored a token while this one waited.
		if tok, ok := c.lookup(key); ok {
			return tok, nil
		}
		tok, err := fetch(detached)
		if err != nil {
			return Token{}, err
		}
		c.store(key, tok)
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return Token{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Token{}, false, res.Err
		}
		return res.Val.(Token), false, nil
	}
}

// Invalidate drops the cached token for key if it is still accessToken.
// An empty accessToken drops whatever is cached. It reports whether an
// entry was removed.
func (c *Cache) Invalidate(key Key, accessToken string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, ok := c.entries[key]
	if !ok {
		return false
	}
	if accessToken != "" && tok.AccessToken != accessToken {
		return false
	}
	delete(c.entries, key)
	c.metrics.RecordCacheInvalidation(cacheName)
	return true
}

// Len returns the number of cached tokens, including expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) lookup(key Key) (Token, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, ok := c.entries[key]
	if !ok || !tok.Valid(c.now(), c.skew) {
		return Token{}, false
	}
	return tok, true
}

func (c *Cache) store(key Key, tok Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = tok
}
