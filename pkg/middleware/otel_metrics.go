package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/credcache"
	"github.com/hyp3rd/credcache/internal/telemetry/attrs"
	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/stats"
)

// OTelMetricsMiddleware emits OpenTelemetry metrics for service methods.
type OTelMetricsMiddleware struct {
	next  credcache.Service
	meter metric.Meter

	// instruments
	calls     metric.Int64Counter
	durations metric.Float64Histogram
}

// NewOTelMetricsMiddleware constructs a metrics middleware using the provided meter.
func NewOTelMetricsMiddleware(next credcache.Service, meter metric.Meter) (credcache.Service, error) {
	calls, err := meter.Int64Counter("credcache.calls")
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	durations, err := meter.Float64Histogram("credcache.duration.ms")
	if err != nil {
		return nil, fmt.Errorf("create histogram: %w", err)
	}

	return &OTelMetricsMiddleware{next: next, meter: meter, calls: calls, durations: durations}, nil
}

// Get implements Service.Get with metrics.
func (mw *OTelMetricsMiddleware) Get(ctx context.Context, key string) (any, bool) {
	start := time.Now()
	v, ok := mw.next.Get(ctx, key)
	mw.rec(ctx, "Get", start, attribute.Int(attrs.AttrKeyLength, len(key)), attribute.Bool(attrs.AttrHit, ok))

	return v, ok
}

// GetEntry implements Service.GetEntry with metrics.
func (mw *OTelMetricsMiddleware) GetEntry(ctx context.Context, key string) (*cache.Entry, bool) {
	start := time.Now()
	entry, ok := mw.next.GetEntry(ctx, key)
	mw.rec(ctx, "GetEntry", start, attribute.Int(attrs.AttrKeyLength, len(key)), attribute.Bool(attrs.AttrHit, ok))

	return entry, ok
}

// Set implements Service.Set with metrics.
func (mw *OTelMetricsMiddleware) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	start := time.Now()
	err := mw.next.Set(ctx, key, value, ttl)
	mw.rec(ctx, "Set", start, attribute.Int(attrs.AttrKeyLength, len(key)), attribute.Int64(attrs.AttrExpirationMS, ttl.Milliseconds()))

	return err
}

// SetWithOptions implements Service.SetWithOptions with metrics.
func (mw *OTelMetricsMiddleware) SetWithOptions(ctx context.Context, key string, value any, options ...cache.EntryOption) error {
	start := time.Now()
	err := mw.next.SetWithOptions(ctx, key, value, options...)
	mw.rec(ctx, "SetWithOptions", start, attribute.Int(attrs.AttrKeyLength, len(key)))

	return err
}

// SetNegative implements Service.SetNegative with metrics.
func (mw *OTelMetricsMiddleware) SetNegative(ctx context.Context, key string) error {
	start := time.Now()
	err := mw.next.SetNegative(ctx, key)
	mw.rec(ctx, "SetNegative", start, attribute.Int(attrs.AttrKeyLength, len(key)))

	return err
}

// GetOrSet implements Service.GetOrSet with metrics.
func (mw *OTelMetricsMiddleware) GetOrSet(ctx context.Context, key string, value any, ttl time.Duration) (any, bool, error) {
	start := time.Now()
	v, found, err := mw.next.GetOrSet(ctx, key, value, ttl)
	mw.rec(ctx, "GetOrSet", start, attribute.Int(attrs.AttrKeyLength, len(key)), attribute.Bool(attrs.AttrHit, found))

	return v, found, err
}

// Invalidate implements Service.Invalidate with metrics.
func (mw *OTelMetricsMiddleware) Invalidate(ctx context.Context, key string) {
	start := time.Now()
	mw.next.Invalidate(ctx, key)
	mw.rec(ctx, "Invalidate", start, attribute.Int(attrs.AttrKeyLength, len(key)))
}

// InvalidateByID implements Service.InvalidateByID with metrics.
func (mw *OTelMetricsMiddleware) InvalidateByID(ctx context.Context, id string) {
	start := time.Now()
	mw.next.InvalidateByID(ctx, id)
	mw.rec(ctx, "InvalidateByID", start)
}

// InvalidatePattern implements Service.InvalidatePattern with metrics.
func (mw *OTelMetricsMiddleware) InvalidatePattern(ctx context.Context, substring string) int {
	start := time.Now()
	removed := mw.next.InvalidatePattern(ctx, substring)
	mw.rec(ctx, "InvalidatePattern", start, attribute.Int(attrs.AttrInvalidated, removed))

	return removed
}

// InvalidateAll implements Service.InvalidateAll with metrics.
func (mw *OTelMetricsMiddleware) InvalidateAll(ctx context.Context) {
	start := time.Now()
	mw.next.InvalidateAll(ctx)
	mw.rec(ctx, "InvalidateAll", start)
}

// Capacity returns cache capacity.
func (mw *OTelMetricsMiddleware) Capacity() int { return mw.next.Capacity() }

// Count returns entries count.
func (mw *OTelMetricsMiddleware) Count() int { return mw.next.Count() }

// TTL returns the current retention window.
func (mw *OTelMetricsMiddleware) TTL() time.Duration { return mw.next.TTL() }

// Stats returns stats.
func (mw *OTelMetricsMiddleware) Stats() stats.Snapshot { return mw.next.Stats() }

// Shutdown stops the service recording its duration.
func (mw *OTelMetricsMiddleware) Shutdown(timeout time.Duration) {
	start := time.Now()
	mw.next.Shutdown(timeout)
	mw.rec(context.Background(), "Shutdown", start)
}

// rec records call count and duration with attributes.
func (mw *OTelMetricsMiddleware) rec(ctx context.Context, method string, start time.Time, extra ...attribute.KeyValue) {
	base := []attribute.KeyValue{attribute.String("method", method)}
	if len(extra) > 0 {
		base = append(base, extra...)
	}

	mw.calls.Add(ctx, 1, metric.WithAttributes(base...))
	mw.durations.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(base...))
}
