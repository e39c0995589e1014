package credcache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache"
	"github.com/hyp3rd/credcache/pkg/cache"
)

// unlockedReadTier reads every field of the entry it receives without taking
// a lock first, the way a codec-backed tier marshals the whole struct.
type unlockedReadTier struct {
	mu   sync.Mutex
	seen map[string]int64
}

func newUnlockedReadTier() *unlockedReadTier {
	return &unlockedReadTier{seen: make(map[string]int64)}
}

func (u *unlockedReadTier) Name() string { return "unlocked-read" }

func (u *unlockedReadTier) Get(_ context.Context, _ string) (*cache.Entry, bool, error) {
	return nil, false, nil
}

func (u *unlockedReadTier) Set(_ context.Context, entry *cache.Entry) error {
	// unsynchronized field reads, like a serializer walking the struct
	observed := int64(entry.AccessCount) + int64(entry.LastAccess.Nanosecond())

	u.mu.Lock()
	u.seen[entry.Key] = observed
	u.mu.Unlock()

	return nil
}

func (u *unlockedReadTier) Remove(_ context.Context, _ ...string) error { return nil }

func (u *unlockedReadTier) Clear(_ context.Context) error { return nil }

// Lookups touch the resident entry under the shard lock while tier writers
// read their fan-out copy with no lock at all; the two must never share a
// pointer.
func TestCredCache_ConcurrentGetDuringTierFanOut(t *testing.T) {
	ctx := context.Background()

	shared := newUnlockedReadTier()

	cc, err := credcache.New(
		credcache.WithCacheSize(10),
		credcache.WithDistributedTiers(shared),
		credcache.WithMaintenanceInterval(0),
	)
	assert.Nil(t, err)

	defer cc.Shutdown(time.Second)

	assert.Nil(t, cc.Set(ctx, "token", "principal", time.Hour))

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 500 {
				cc.Get(ctx, "token")
			}
		}()
	}

	for i := range 200 {
		setErr := cc.Set(ctx, "token", "principal", time.Hour)
		if setErr != nil {
			t.Fatalf("iteration %d: %v", i, setErr)
		}
	}

	wg.Wait()

	val, ok := cc.Get(ctx, "token")
	assert.True(t, ok)
	assert.Equal(t, "principal", val)

	shared.mu.Lock()
	_, fanned := shared.seen["token"]
	shared.mu.Unlock()

	assert.True(t, fanned)
}
