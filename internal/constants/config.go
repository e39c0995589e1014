// Package constants defines default configuration values for the credcache system.
// It provides standard settings for cache sizing, retention windows, shard layout,
// the adaptive TTL controller, and the cache warmer.
package constants

import "time"

const (
	// DefaultCacheSize is the default total entry budget, divided across shards.
	DefaultCacheSize = 10000
	// DefaultShardCount is the default number of shards the local store is split into.
	DefaultShardCount = 16
	// DefaultTTL is the default retention window for positive entries.
	DefaultTTL = 1 * time.Hour
	// NegativeTTLRatio divides the positive TTL to derive the negative retention
	// window when none is configured explicitly.
	NegativeTTLRatio = 12
	// MinNegativeTTL is the lower bound applied to the derived negative TTL.
	MinNegativeTTL = 1 * time.Second
	// DefaultEvictionPolicy is the eviction policy applied per shard when none
	// is configured.
	DefaultEvictionPolicy = "lru"
	// DefaultMaintenanceInterval is the cadence of the background maintenance
	// loop driving the adaptive controller and the cache warmer.
	DefaultMaintenanceInterval = 60 * time.Second
	// MaintenanceWaitGranularity bounds the sleep slices of the maintenance
	// loop so shutdown latency stays within roughly one second.
	MaintenanceWaitGranularity = 1 * time.Second
	// DefaultAdaptiveFloor is the lower clamp for the adaptive TTL controller.
	DefaultAdaptiveFloor = 1 * time.Hour
	// DefaultAdaptiveCeiling is the upper clamp for the adaptive TTL controller.
	DefaultAdaptiveCeiling = 24 * time.Hour
	// DefaultWarmTopK is the number of most frequently accessed keys the cache
	// warmer attempts to pre-populate per maintenance run.
	DefaultWarmTopK = 20
	// DefaultShutdownTimeout bounds how long Shutdown waits for the maintenance
	// goroutine when the caller passes a non-positive timeout.
	DefaultShutdownTimeout = 5 * time.Second
)

const (
	// LatencySampleCap is the fixed capacity of the rolling latency ring buffer.
	LatencySampleCap = 1000
	// HitRatioBucketCap is the fixed capacity of the hourly hit-ratio history:
	// one week of hourly buckets.
	HitRatioBucketCap = 7 * 24
	// TrendWindow is the number of trailing hit-ratio samples the adaptive
	// controller averages to detect a trend.
	TrendWindow = 10
	// FrequencyTableCap caps the per-key access frequency table.
	FrequencyTableCap = 10000
	// FrequencyIdleCutoff is the idle duration after which frequency entries
	// are pruned during maintenance.
	FrequencyIdleCutoff = 24 * time.Hour
)
