package credcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache"
)

func TestCredCache_Get(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		value         any
		expiry        time.Duration
		expectedValue any
		sleep         time.Duration
		shouldSet     bool
		expectedHit   bool
	}{
		{
			name:          "get with valid key",
			key:           "key1",
			value:         "value1",
			expiry:        0,
			expectedValue: "value1",
			shouldSet:     true,
			expectedHit:   true,
		},
		{
			name:          "get with valid key and value with expiry",
			key:           "key2",
			value:         "value2",
			expiry:        5 * time.Second,
			expectedValue: "value2",
			shouldSet:     true,
			expectedHit:   true,
		},
		{
			name:        "get with expired key",
			key:         "key4",
			value:       "value4",
			expiry:      time.Second,
			shouldSet:   true,
			sleep:       1100 * time.Millisecond,
			expectedHit: false,
		},
		{
			name:        "get with non-existent key",
			key:         "key5",
			shouldSet:   false,
			expectedHit: false,
		},
	}

	ctx := context.Background()

	cache, err := credcache.New(credcache.WithCacheSize(10))
	assert.Nil(t, err)

	defer cache.Shutdown(time.Second)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldSet {
				err = cache.Set(ctx, test.key, test.value, test.expiry)
				assert.Nil(t, err)

				if test.sleep > 0 {
					time.Sleep(test.sleep)
				}
			}

			val, ok := cache.Get(ctx, test.key)
			assert.Equal(t, test.expectedHit, ok)

			if test.expectedHit {
				assert.Equal(t, test.expectedValue, val)
			} else {
				assert.Nil(t, val)
			}
		})
	}
}

func TestCredCache_GetEntry(t *testing.T) {
	ctx := context.Background()

	cache, err := credcache.New(credcache.WithCacheSize(10), credcache.WithTTL(2*time.Hour))
	assert.Nil(t, err)

	defer cache.Shutdown(time.Second)

	err = cache.Set(ctx, "token-digest", "principal-42", 0)
	assert.Nil(t, err)

	entry, ok := cache.GetEntry(ctx, "token-digest")
	assert.True(t, ok)
	assert.Equal(t, "token-digest", entry.Key)
	assert.Equal(t, "principal-42", entry.Value)
	assert.False(t, entry.ExpireAt.IsZero())
	assert.True(t, entry.TTL() > time.Hour)
	assert.True(t, entry.AccessCount > 0)

	// entries handed out are copies, mutating one must not leak back
	entry.Value = "tampered"

	again, ok := cache.GetEntry(ctx, "token-digest")
	assert.True(t, ok)
	assert.Equal(t, "principal-42", again.Value)
}

func TestCredCache_NegativeCache(t *testing.T) {
	ctx := context.Background()

	cache, err := credcache.New(
		credcache.WithCacheSize(10),
		credcache.WithNegativeTTL(time.Second),
	)
	assert.Nil(t, err)

	defer cache.Shutdown(time.Second)

	err = cache.SetNegative(ctx, "revoked-token")
	assert.Nil(t, err)

	// a negative entry answers as a miss but counts as a hit
	val, ok := cache.Get(ctx, "revoked-token")
	assert.False(t, ok)
	assert.Nil(t, val)

	snapshot := cache.Stats()
	assert.Equal(t, uint64(1), snapshot.NegativeHits)
	assert.Equal(t, uint64(1), snapshot.Hits)
	assert.Equal(t, uint64(0), snapshot.Misses)

	// the negative marker expires on its own schedule
	time.Sleep(1100 * time.Millisecond)

	_, ok = cache.Get(ctx, "revoked-token")
	assert.False(t, ok)

	snapshot = cache.Stats()
	assert.Equal(t, uint64(1), snapshot.Misses)
}

func TestCredCache_NegativeOverwrittenBySet(t *testing.T) {
	ctx := context.Background()

	cache, err := credcache.New(credcache.WithCacheSize(10))
	assert.Nil(t, err)

	defer cache.Shutdown(time.Second)

	err = cache.SetNegative(ctx, "token")
	assert.Nil(t, err)

	// a positive store must clear the negative marker
	err = cache.Set(ctx, "token", "principal", 0)
	assert.Nil(t, err)

	val, ok := cache.Get(ctx, "token")
	assert.True(t, ok)
	assert.Equal(t, "principal", val)

	// and the other way around
	err = cache.SetNegative(ctx, "token")
	assert.Nil(t, err)

	_, ok = cache.Get(ctx, "token")
	assert.False(t, ok)
}
