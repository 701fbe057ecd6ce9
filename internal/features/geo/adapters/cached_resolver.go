package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"manifest-dispatcher/internal/core/cache"
	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/features/geo/domain"
	"manifest-dispatcher/internal/features/geo/ports"

	"go.uber.org/zap"
)

// CachedResolver decorates a RegionResolver with a cache. Containment joins
// are pure, so resolved regions can be reused across runs; manifests revisit
// the same customers day after day. Cache failures degrade to the inner
// resolver, never to an error.
type CachedResolver struct {
	inner  ports.RegionResolver
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedResolver wraps the given resolver with a cache.
func NewCachedResolver(inner ports.RegionResolver, c cache.Cache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: logger.Get(),
	}
}

// cacheKey rounds coordinates to ~1 m so nearby float noise hits the same
// entry. The empty region ("outside every boundary") is cached too.
func cacheKey(pt domain.Point) string {
	return fmt.Sprintf("region:%.5f:%.5f", pt.Lat, pt.Long)
}

// Resolve returns the cached region when present, falling back to the inner
// resolver and caching its answer.
func (r *CachedResolver) Resolve(ctx context.Context, pt domain.Point) (string, error) {
	key := cacheKey(pt)

	if data, err := r.cache.Get(ctx, key); err == nil {
		return string(data), nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Debug("Region cache read failed", zap.String("key", key), zap.Error(err))
	}

	region, err := r.inner.Resolve(ctx, pt)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, key, []byte(region), r.ttl); err != nil {
		r.logger.Debug("Region cache write failed", zap.String("key", key), zap.Error(err))
	}

	return region, nil
}
