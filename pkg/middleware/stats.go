package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/credcache"
	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/stats"
)

// StatsCollectorMiddleware feeds per-call latencies into a stats collector.
// It can and should re-use the same collector as the cache, so middleware
// latencies land in the same rolling ring the snapshot reports from.
// Must implement the credcache.Service interface.
type StatsCollectorMiddleware struct {
	next      credcache.Service
	collector *stats.Collector
}

// NewStatsCollectorMiddleware returns a new StatsCollectorMiddleware.
func NewStatsCollectorMiddleware(next credcache.Service, collector *stats.Collector) credcache.Service {
	return &StatsCollectorMiddleware{next: next, collector: collector}
}

// Get collects timing for the Get method.
func (mw StatsCollectorMiddleware) Get(ctx context.Context, key string) (any, bool) {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.Get(ctx, key)
}

// GetEntry collects timing for the GetEntry method.
func (mw StatsCollectorMiddleware) GetEntry(ctx context.Context, key string) (*cache.Entry, bool) {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.GetEntry(ctx, key)
}

// Set collects timing for the Set method.
func (mw StatsCollectorMiddleware) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.Set(ctx, key, value, ttl)
}

// SetWithOptions collects timing for the SetWithOptions method.
func (mw StatsCollectorMiddleware) SetWithOptions(ctx context.Context, key string, value any, options ...cache.EntryOption) error {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.SetWithOptions(ctx, key, value, options...)
}

// SetNegative collects timing for the SetNegative method.
func (mw StatsCollectorMiddleware) SetNegative(ctx context.Context, key string) error {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.SetNegative(ctx, key)
}

// GetOrSet collects timing for the GetOrSet method.
func (mw StatsCollectorMiddleware) GetOrSet(ctx context.Context, key string, value any, ttl time.Duration) (any, bool, error) {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.GetOrSet(ctx, key, value, ttl)
}

// Invalidate collects timing for the Invalidate method.
func (mw StatsCollectorMiddleware) Invalidate(ctx context.Context, key string) {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	mw.next.Invalidate(ctx, key)
}

// InvalidateByID collects timing for the InvalidateByID method.
func (mw StatsCollectorMiddleware) InvalidateByID(ctx context.Context, id string) {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	mw.next.InvalidateByID(ctx, id)
}

// InvalidatePattern collects timing for the InvalidatePattern method.
func (mw StatsCollectorMiddleware) InvalidatePattern(ctx context.Context, substring string) int {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	return mw.next.InvalidatePattern(ctx, substring)
}

// InvalidateAll collects timing for the InvalidateAll method.
func (mw StatsCollectorMiddleware) InvalidateAll(ctx context.Context) {
	start := time.Now()

	defer func() {
		mw.collector.RecordLatency(time.Since(start))
	}()

	mw.next.InvalidateAll(ctx)
}

// Capacity returns the cache capacity.
func (mw StatsCollectorMiddleware) Capacity() int { return mw.next.Capacity() }

// Count returns the entries count.
func (mw StatsCollectorMiddleware) Count() int { return mw.next.Count() }

// TTL returns the current retention window.
func (mw StatsCollectorMiddleware) TTL() time.Duration { return mw.next.TTL() }

// Stats returns the cache statistics.
func (mw StatsCollectorMiddleware) Stats() stats.Snapshot { return mw.next.Stats() }

// Shutdown stops the underlying service.
func (mw StatsCollectorMiddleware) Shutdown(timeout time.Duration) { mw.next.Shutdown(timeout) }
