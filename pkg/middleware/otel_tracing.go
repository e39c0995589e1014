package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/credcache"
	"github.com/hyp3rd/credcache/internal/telemetry/attrs"
	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/stats"
)

// OTelTracingMiddleware wraps credcache.Service methods with OpenTelemetry spans.
type OTelTracingMiddleware struct {
	next   credcache.Service
	tracer trace.Tracer
	// static attributes applied to all spans
	commonAttrs []attribute.KeyValue
}

// OTelTracingOption allows configuring the tracing middleware.
type OTelTracingOption func(*OTelTracingMiddleware)

// WithCommonAttributes sets attributes applied to all spans.
func WithCommonAttributes(attributes ...attribute.KeyValue) OTelTracingOption {
	return func(m *OTelTracingMiddleware) { m.commonAttrs = append(m.commonAttrs, attributes...) }
}

// NewOTelTracingMiddleware creates a tracing middleware.
func NewOTelTracingMiddleware(next credcache.Service, tracer trace.Tracer, opts ...OTelTracingOption) credcache.Service {
	mw := &OTelTracingMiddleware{next: next, tracer: tracer}
	for _, o := range opts {
		o(mw)
	}

	return mw
}

// Get implements Service.Get with tracing.
func (mw OTelTracingMiddleware) Get(ctx context.Context, key string) (any, bool) {
	ctx, span := mw.startSpan(ctx, "credcache.Get", attribute.Int(attrs.AttrKeyLength, len(key)))
	defer span.End()

	v, ok := mw.next.Get(ctx, key)
	span.SetAttributes(attribute.Bool(attrs.AttrHit, ok))

	return v, ok
}

// GetEntry implements Service.GetEntry with tracing.
func (mw OTelTracingMiddleware) GetEntry(ctx context.Context, key string) (*cache.Entry, bool) {
	ctx, span := mw.startSpan(ctx, "credcache.GetEntry", attribute.Int(attrs.AttrKeyLength, len(key)))
	defer span.End()

	entry, ok := mw.next.GetEntry(ctx, key)
	span.SetAttributes(attribute.Bool(attrs.AttrHit, ok))

	return entry, ok
}

// Set implements Service.Set with tracing.
func (mw OTelTracingMiddleware) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, span := mw.startSpan(
		ctx, "credcache.Set",
		attribute.Int(attrs.AttrKeyLength, len(key)),
		attribute.Int64(attrs.AttrExpirationMS, ttl.Milliseconds()))
	defer span.End()

	err := mw.next.Set(ctx, key, value, ttl)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// SetWithOptions implements Service.SetWithOptions with tracing.
func (mw OTelTracingMiddleware) SetWithOptions(ctx context.Context, key string, value any, options ...cache.EntryOption) error {
	ctx, span := mw.startSpan(ctx, "credcache.SetWithOptions", attribute.Int(attrs.AttrKeyLength, len(key)))
	defer span.End()

	err := mw.next.SetWithOptions(ctx, key, value, options...)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// SetNegative implements Service.SetNegative with tracing.
func (mw OTelTracingMiddleware) SetNegative(ctx context.Context, key string) error {
	ctx, span := mw.startSpan(ctx, "credcache.SetNegative", attribute.Int(attrs.AttrKeyLength, len(key)))
	defer span.End()

	err := mw.next.SetNegative(ctx, key)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

// GetOrSet implements Service.GetOrSet with tracing.
func (mw OTelTracingMiddleware) GetOrSet(ctx context.Context, key string, value any, ttl time.Duration) (any, bool, error) {
	ctx, span := mw.startSpan(
		ctx, "credcache.GetOrSet",
		attribute.Int(attrs.AttrKeyLength, len(key)),
		attribute.Int64(attrs.AttrExpirationMS, ttl.Milliseconds()))
	defer span.End()

	v, found, err := mw.next.GetOrSet(ctx, key, value, ttl)
	span.SetAttributes(attribute.Bool(attrs.AttrHit, found))

	if err != nil {
		span.RecordError(err)
	}

	return v, found, err
}

// Invalidate implements Service.Invalidate with tracing.
func (mw OTelTracingMiddleware) Invalidate(ctx context.Context, key string) {
	ctx, span := mw.startSpan(ctx, "credcache.Invalidate", attribute.Int(attrs.AttrKeyLength, len(key)))
	defer span.End()

	mw.next.Invalidate(ctx, key)
}

// InvalidateByID implements Service.InvalidateByID with tracing.
func (mw OTelTracingMiddleware) InvalidateByID(ctx context.Context, id string) {
	ctx, span := mw.startSpan(ctx, "credcache.InvalidateByID")
	defer span.End()

	mw.next.InvalidateByID(ctx, id)
}

// InvalidatePattern implements Service.InvalidatePattern with tracing.
func (mw OTelTracingMiddleware) InvalidatePattern(ctx context.Context, substring string) int {
	ctx, span := mw.startSpan(ctx, "credcache.InvalidatePattern")
	defer span.End()

	removed := mw.next.InvalidatePattern(ctx, substring)
	span.SetAttributes(attribute.Int(attrs.AttrInvalidated, removed))

	return removed
}

// InvalidateAll implements Service.InvalidateAll with tracing.
func (mw OTelTracingMiddleware) InvalidateAll(ctx context.Context) {
	ctx, span := mw.startSpan(ctx, "credcache.InvalidateAll")
	defer span.End()

	mw.next.InvalidateAll(ctx)
}

// Capacity returns cache capacity.
func (mw OTelTracingMiddleware) Capacity() int { return mw.next.Capacity() }

// Count returns entries count.
func (mw OTelTracingMiddleware) Count() int { return mw.next.Count() }

// TTL returns the current retention window.
func (mw OTelTracingMiddleware) TTL() time.Duration { return mw.next.TTL() }

// Stats returns stats.
func (mw OTelTracingMiddleware) Stats() stats.Snapshot { return mw.next.Stats() }

// Shutdown stops the service with a span.
func (mw OTelTracingMiddleware) Shutdown(timeout time.Duration) {
	_, span := mw.startSpan(context.Background(), "credcache.Shutdown")
	defer span.End()

	mw.next.Shutdown(timeout)
}

// startSpan starts a span with common and provided attributes.
func (mw OTelTracingMiddleware) startSpan(ctx context.Context, name string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := mw.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(mw.commonAttrs) > 0 {
		span.SetAttributes(mw.commonAttrs...)
	}

	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}

	return ctx, span
}
