package adapters

import (
	"context"
	"testing"
	"time"

	"manifest-dispatcher/internal/core/cache"
	"manifest-dispatcher/internal/features/geo/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver is a fake RegionResolver that counts calls.
type countingResolver struct {
	region string
	calls  int
}

// Resolve implements RegionResolver.
func (r *countingResolver) Resolve(_ context.Context, _ domain.Point) (string, error) {
	r.calls++
	return r.region, nil
}

func newCacheForTest(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

// TestCachedResolver_CachesHits verifies the second lookup for the same
// point never reaches the inner resolver.
func TestCachedResolver_CachesHits(t *testing.T) {
	inner := &countingResolver{region: "Nairobi County"}
	resolver := NewCachedResolver(inner, newCacheForTest(t), time.Hour)

	ctx := context.Background()
	pt := domain.Point{Lat: -1.28, Long: 36.82}

	region, err := resolver.Resolve(ctx, pt)
	require.NoError(t, err)
	assert.Equal(t, "Nairobi County", region)
	assert.Equal(t, 1, inner.calls)

	region, err = resolver.Resolve(ctx, pt)
	require.NoError(t, err)
	assert.Equal(t, "Nairobi County", region)
	assert.Equal(t, 1, inner.calls)
}

// TestCachedResolver_CachesAbsentRegion verifies the empty region is a
// cacheable answer, not a miss.
func TestCachedResolver_CachesAbsentRegion(t *testing.T) {
	inner := &countingResolver{region: ""}
	resolver := NewCachedResolver(inner, newCacheForTest(t), time.Hour)

	ctx := context.Background()
	pt := domain.Point{Lat: 52.52, Long: 13.4}

	region, err := resolver.Resolve(ctx, pt)
	require.NoError(t, err)
	assert.Empty(t, region)

	region, err = resolver.Resolve(ctx, pt)
	require.NoError(t, err)
	assert.Empty(t, region)
	assert.Equal(t, 1, inner.calls)
}

// TestCachedResolver_DistinctPoints verifies different points use different
// cache entries.
func TestCachedResolver_DistinctPoints(t *testing.T) {
	inner := &countingResolver{region: "Nairobi County"}
	resolver := NewCachedResolver(inner, newCacheForTest(t), time.Hour)

	ctx := context.Background()

	_, err := resolver.Resolve(ctx, domain.Point{Lat: -1.28, Long: 36.82})
	require.NoError(t, err)
	_, err = resolver.Resolve(ctx, domain.Point{Lat: -1.30, Long: 36.90})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}
