package credcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache"
	"github.com/hyp3rd/credcache/pkg/cache"
)

func TestCredCache_Invalidate(t *testing.T) {
	ctx := context.Background()

	cc, err := credcache.New(credcache.WithCacheSize(10))
	assert.Nil(t, err)

	defer cc.Shutdown(time.Second)

	err = cc.Set(ctx, "token", "principal", 0)
	assert.Nil(t, err)

	cc.Invalidate(ctx, "token")

	_, ok := cc.Get(ctx, "token")
	assert.False(t, ok)

	snapshot := cc.Stats()
	assert.Equal(t, uint64(1), snapshot.Invalidations)

	// invalidating an absent key is a no-op, not a counted invalidation
	cc.Invalidate(ctx, "token")

	snapshot = cc.Stats()
	assert.Equal(t, uint64(1), snapshot.Invalidations)
}

func TestCredCache_InvalidateByID(t *testing.T) {
	ctx := context.Background()

	cc, err := credcache.New(credcache.WithCacheSize(10))
	assert.Nil(t, err)

	defer cc.Shutdown(time.Second)

	err = cc.SetWithOptions(ctx, "token-a", "session-a", cache.WithExternalID("user-1"))
	assert.Nil(t, err)

	err = cc.SetWithOptions(ctx, "token-b", "session-b", cache.WithExternalID("user-2"))
	assert.Nil(t, err)

	cc.InvalidateByID(ctx, "user-1")

	_, ok := cc.Get(ctx, "token-a")
	assert.False(t, ok)

	// unrelated identities are untouched
	val, ok := cc.Get(ctx, "token-b")
	assert.True(t, ok)
	assert.Equal(t, "session-b", val)

	// unknown id is a no-op
	cc.InvalidateByID(ctx, "user-404")
	assert.Equal(t, 1, cc.Count())
}

func TestCredCache_InvalidateByID_Relink(t *testing.T) {
	ctx := context.Background()

	cc, err := credcache.New(credcache.WithCacheSize(10))
	assert.Nil(t, err)

	defer cc.Shutdown(time.Second)

	// rewriting the key under a new id must retire the old link
	err = cc.SetWithOptions(ctx, "token", "v1", cache.WithExternalID("user-old"))
	assert.Nil(t, err)

	err = cc.SetWithOptions(ctx, "token", "v2", cache.WithExternalID("user-new"))
	assert.Nil(t, err)

	cc.InvalidateByID(ctx, "user-old")

	val, ok := cc.Get(ctx, "token")
	assert.True(t, ok)
	assert.Equal(t, "v2", val)

	cc.InvalidateByID(ctx, "user-new")

	_, ok = cc.Get(ctx, "token")
	assert.False(t, ok)
}

func TestCredCache_InvalidatePattern(t *testing.T) {
	ctx := context.Background()

	cc, err := credcache.New(credcache.WithCacheSize(20))
	assert.Nil(t, err)

	defer cc.Shutdown(time.Second)

	for _, key := range []string{"svc:auth:1", "svc:auth:2", "svc:billing:1", "other"} {
		err = cc.Set(ctx, key, key, 0)
		assert.Nil(t, err)
	}

	removed := cc.InvalidatePattern(ctx, "svc:auth:")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, cc.Count())

	_, ok := cc.Get(ctx, "svc:auth:1")
	assert.False(t, ok)

	_, ok = cc.Get(ctx, "svc:billing:1")
	assert.True(t, ok)

	// no matches, nothing removed
	removed = cc.InvalidatePattern(ctx, "no-such-prefix")
	assert.Equal(t, 0, removed)
}

func TestCredCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()

	cc, err := credcache.New(credcache.WithCacheSize(20))
	assert.Nil(t, err)

	defer cc.Shutdown(time.Second)

	for _, key := range []string{"a", "b", "c"} {
		err = cc.Set(ctx, key, key, 0)
		assert.Nil(t, err)
	}

	err = cc.SetNegative(ctx, "absent")
	assert.Nil(t, err)

	err = cc.SetWithOptions(ctx, "linked", "v", cache.WithExternalID("user-1"))
	assert.Nil(t, err)

	cc.InvalidateAll(ctx)

	assert.Equal(t, 0, cc.Count())

	// negative records and identity links are gone too
	err = cc.Set(ctx, "absent", "present-now", 0)
	assert.Nil(t, err)

	val, ok := cc.Get(ctx, "absent")
	assert.True(t, ok)
	assert.Equal(t, "present-now", val)

	cc.InvalidateByID(ctx, "user-1")
	assert.Equal(t, 1, cc.Count())
}

func TestCredCache_Shutdown(t *testing.T) {
	cc, err := credcache.New(
		credcache.WithCacheSize(10),
		credcache.WithMaintenanceInterval(time.Minute),
	)
	assert.Nil(t, err)

	start := time.Now()
	cc.Shutdown(5 * time.Second)

	// the maintenance loop wakes at most every second to check for stop
	assert.True(t, time.Since(start) < 3*time.Second)

	// repeat shutdown is a no-op
	cc.Shutdown(time.Second)
}
