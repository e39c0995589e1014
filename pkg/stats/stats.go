// Package stats implements the metrics collector backing the cache: monotonic
// counters, bounded time-series histories, and a capped per-key access
// frequency table. Recording is decoupled from the data shards so the hot path
// never contends with shard locks.
package stats

import "time"

// Tier labels the storage level that served (or failed to serve) a lookup.
type Tier string

const (
	// TierLocal is the in-process sharded store.
	TierLocal Tier = "local"
	// TierNegative is the per-shard negative cache.
	TierNegative Tier = "negative"
	// TierDistributed is a remote key-value tier.
	TierDistributed Tier = "distributed"
)

// String returns the string representation of a Tier.
func (t Tier) String() string {
	return string(t)
}

// Snapshot is a point-in-time copy of the cache statistics.
type Snapshot struct {
	Hits              uint64 // lookups served from any tier
	Misses            uint64 // lookups served from no tier
	LocalHits         uint64 // hits served by the local store
	NegativeHits      uint64 // lookups short-circuited by the negative cache
	DistributedHits   uint64 // hits served by a distributed tier
	Inserts           uint64 // entries written to the local store
	Evictions         uint64 // entries removed by shard eviction
	Expirations       uint64 // entries removed by lazy expiry
	Invalidations     uint64 // entries removed by explicit invalidation
	DistributedErrors uint64 // distributed tier failures absorbed as misses

	EntryCount int           // resident entries in the local store
	TTL        time.Duration // retention window currently applied to new entries

	HitRatio        float64   // hits / (hits + misses) over the process lifetime
	LatencyMeanNS   float64   // mean of the rolling latency samples
	LatencyP95NS    float64   // 95th percentile of the rolling latency samples
	HitRatioHistory []float64 // hourly hit-ratio buckets, oldest first
}
