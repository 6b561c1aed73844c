package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
)

// DefaultCacheSize is the number of coordinates kept by CachingResolver.
const DefaultCacheSize = 4096

type cached struct {
	info     *component.Info
	notFound bool
}

// CachingResolver memoizes another resolver. Successful and not-found
// results are cached; transient errors are not.
type CachingResolver struct {
	next ports.ComponentResolver

	mu    sync.Mutex
	cache *lru.Cache
}

var _ ports.ComponentResolver = (*CachingResolver)(nil)

// NewCachingResolver wraps next with an LRU of the given size.
func NewCachingResolver(next ports.ComponentResolver, size int) *CachingResolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &CachingResolver{next: next, cache: lru.New(size)}
}

// Resolve implements ports.ComponentResolver.
func (r *CachingResolver) Resolve(ctx context.Context, c artifact.Coordinate) (*component.Info, error) {
	key := c.FullID()

	r.mu.Lock()
	v, ok := r.cache.Get(key)
	r.mu.Unlock()
	if ok {
		entry := v.(cached)
		if entry.notFound {
			return nil, ports.ErrComponentNotFound
		}
		return entry.info, nil
	}

	info, err := r.next.Resolve(ctx, c)
	switch {
	case err == nil:
		r.add(key, cached{info: info})
	case errors.Is(err, ports.ErrComponentNotFound):
		r.add(key, cached{notFound: true})
	}
	return info, err
}

// Len returns the number of cached coordinates.
func (r *CachingResolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

func (r *CachingResolver) add(key string, v cached) {
	r.mu.Lock()
	r.cache.Add(key, v)
	r.mu.Unlock()
}
