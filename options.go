package credcache

import (
	"time"

	"github.com/hyp3rd/credcache/pkg/tier"
)

// Option is a function type that can be used to configure the `Cache` struct.
type Option func(*Cache)

// WithCacheSize sets the total entry budget, divided evenly across shards.
func WithCacheSize(size int) Option {
	return func(c *Cache) {
		c.capacity = size
	}
}

// WithShardCount sets the number of shards the local store is split into.
// More shards reduce lock contention at the cost of per-shard capacity.
func WithShardCount(count int) Option {
	return func(c *Cache) {
		c.shardCount = count
	}
}

// WithTTL sets the initial default retention window for positive entries.
// The adaptive controller may adjust it within the configured bounds.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl.Store(int64(ttl))
		}
	}
}

// WithNegativeTTL sets the retention window for confirmed-absent records.
// When unset it defaults to a twelfth of the positive TTL.
func WithNegativeTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.negativeTTL = ttl
	}
}

// WithEvictionPolicy selects the per-shard eviction policy. The policy name
// must be one of the following:
//   - "lru" (Least Recently Used) - Implemented in the `eviction/lru.go` file
//   - "lfu" (Least Frequently Used) - Implemented in the `eviction/lfu.go` file
//   - "ttl" (earliest expiry first) - Implemented in the `eviction/deadline.go` file
//   - "adaptive" (TTL-based with an externally adjusted window)
func WithEvictionPolicy(name string) Option {
	return func(c *Cache) {
		c.policyName = name
	}
}

// WithMetricsEnabled toggles per-access recording (hit/miss attribution,
// latency samples, frequency tracking). Structural counters stay on either way.
func WithMetricsEnabled(enabled bool) Option {
	return func(c *Cache) {
		c.metricsEnabled = enabled
	}
}

// WithCacheWarming toggles the background warmer that pre-populates the local
// tier from the distributed tiers for the most frequently accessed keys.
func WithCacheWarming(enabled bool) Option {
	return func(c *Cache) {
		c.warmingEnabled = enabled
	}
}

// WithMaintenanceInterval sets the cadence of the background maintenance loop
// driving the adaptive controller and the warmer. A non-positive interval
// disables the loop entirely.
func WithMaintenanceInterval(interval time.Duration) Option {
	return func(c *Cache) {
		c.maintenanceInterval = interval
	}
}

// WithAdaptiveBounds sets the floor and ceiling the adaptive controller clamps
// the retention window to.
func WithAdaptiveBounds(floor, ceiling time.Duration) Option {
	return func(c *Cache) {
		if floor > 0 {
			c.adaptiveFloor = floor
		}

		if ceiling > 0 {
			c.adaptiveCeiling = ceiling
		}
	}
}

// WithWarmTopK sets how many of the most frequently accessed keys the warmer
// attempts to pre-populate per maintenance run.
func WithWarmTopK(topK int) Option {
	return func(c *Cache) {
		if topK > 0 {
			c.warmTopK = topK
		}
	}
}

// WithDistributedTiers configures zero or more remote backing stores consulted
// on local miss and populated on writes.
func WithDistributedTiers(tiers ...tier.Tier) Option {
	return func(c *Cache) {
		c.tiers = append(c.tiers, tiers...)
	}
}

// WithLogger sets the logger used for warnings on absorbed failures.
func WithLogger(logger Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}
