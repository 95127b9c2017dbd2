package catalog

import (
	"context"
	"sync"
)

type requestCacheKey struct{}

// requestCache memoizes loader results for the lifetime of one HTTP
// request, so a single page render never repeats work for the same course
// and repeated calls return pointer-identical results.
type requestCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
}

// WithRequestCache installs a fresh request-scoped memo into ctx. The API
// middleware calls this once per request; loaders work fine without one.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, &requestCache{
		entries: make(map[string]interface{}),
	})
}

func requestCacheFrom(ctx context.Context) *requestCache {
	rc, _ := ctx.Value(requestCacheKey{}).(*requestCache)
	return rc
}

func (rc *requestCache) get(key string) (interface{}, bool) {
	if rc == nil {
		return nil, false
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	v, ok := rc.entries[key]
	return v, ok
}

func (rc *requestCache) set(key string, v interface{}) {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entries[key] = v
}
