// Package attrs defines telemetry attribute keys used for observability and
// monitoring across the credcache system. These constants provide standardized
// key names for metrics and traces to ensure consistent telemetry data collection.
package attrs

const (
	// AttrKeyLength represents the telemetry attribute key for measuring the length
	// of a cache key in bytes.
	AttrKeyLength = "key.len"
	// AttrHit represents the telemetry attribute key recording whether a lookup
	// was served from the cache.
	AttrHit = "hit"
	// AttrInvalidated represents the telemetry attribute key counting the number
	// of entries removed by an invalidation call.
	AttrInvalidated = "invalidated.count"
	// AttrExpirationMS represents the telemetry attribute key for the retention
	// window of cache entries in milliseconds.
	AttrExpirationMS = "expiration.ms"
)
