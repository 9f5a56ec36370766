package session

import (
	"context"
	"errors"
	"sync"
)

type requestCacheKey struct{}

// RequestCache memoizes Authenticate outcomes for one request. It is
// installed explicitly with WithRequestCache and dies with the request
// context. Store failures are not cached.
type RequestCache struct {
	mu      sync.Mutex
	entries map[Credentials]cachedResult
}

type cachedResult struct {
	res Result
	err error
}

// WithRequestCache returns a context carrying a fresh RequestCache.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, &RequestCache{entries: make(map[Credentials]cachedResult)})
}

// RequestCacheFrom returns the cache installed on ctx, or nil.
func RequestCacheFrom(ctx context.Context) *RequestCache {
	c, _ := ctx.Value(requestCacheKey{}).(*RequestCache)
	return c
}

func (c *RequestCache) get(cred Credentials) (cachedResult, bool) {
	if c == nil {
		return cachedResult{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cred]
	return e, ok
}

// Len reports how many outcomes are cached.
func (c *RequestCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RequestCache) put(cred Credentials, res Result, err error) {
	if c == nil {
		return
	}
	if err != nil && !errors.Is(err, ErrUnauthenticated) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cred] = cachedResult{res: res, err: err}
}
