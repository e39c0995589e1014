// Package middleware provides various middleware implementations for the credcache service.
// This package includes logging middleware that wraps the credcache service to provide
// execution time logging and method call tracing for debugging and monitoring purposes.
package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/credcache"
	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/stats"
)

// Logger describes a logging interface allowing to implement different external, or custom logger.
// Tested with logrus, and Uber's Zap (high-performance), but should work with any other logger that matches the interface.
type Logger interface {
	Printf(format string, v ...any)
}

// LoggingMiddleware is a middleware that logs the time it takes to execute the next middleware.
// Must implement the credcache.Service interface.
type LoggingMiddleware struct {
	next   credcache.Service
	logger Logger
}

// NewLoggingMiddleware returns a new LoggingMiddleware.
func NewLoggingMiddleware(next credcache.Service, logger Logger) credcache.Service {
	return &LoggingMiddleware{next: next, logger: logger}
}

// Get logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Get(ctx context.Context, key string) (any, bool) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Get took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Get method called with key: %s", key)

	return mw.next.Get(ctx, key)
}

// GetEntry logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) GetEntry(ctx context.Context, key string) (*cache.Entry, bool) {
	defer func(begin time.Time) {
		mw.logger.Printf("method GetEntry took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("GetEntry method invoked with key: %s", key)

	return mw.next.GetEntry(ctx, key)
}

// Set logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	defer func(begin time.Time) {
		mw.logger.Printf("method Set took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Set method called with key: %s ttl: %s", key, ttl)

	return mw.next.Set(ctx, key, value, ttl)
}

// SetWithOptions logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) SetWithOptions(ctx context.Context, key string, value any, options ...cache.EntryOption) error {
	defer func(begin time.Time) {
		mw.logger.Printf("method SetWithOptions took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("SetWithOptions method invoked with key: %s", key)

	return mw.next.SetWithOptions(ctx, key, value, options...)
}

// SetNegative logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) SetNegative(ctx context.Context, key string) error {
	defer func(begin time.Time) {
		mw.logger.Printf("method SetNegative took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("SetNegative method invoked with key: %s", key)

	return mw.next.SetNegative(ctx, key)
}

// GetOrSet logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) GetOrSet(ctx context.Context, key string, value any, ttl time.Duration) (any, bool, error) {
	defer func(begin time.Time) {
		mw.logger.Printf("method GetOrSet took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("GetOrSet method invoked with key: %s ttl: %s", key, ttl)

	return mw.next.GetOrSet(ctx, key, value, ttl)
}

// Invalidate logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Invalidate(ctx context.Context, key string) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Invalidate took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("Invalidate method invoked with key: %s", key)

	mw.next.Invalidate(ctx, key)
}

// InvalidateByID logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) InvalidateByID(ctx context.Context, id string) {
	defer func(begin time.Time) {
		mw.logger.Printf("method InvalidateByID took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("InvalidateByID method invoked with id: %s", id)

	mw.next.InvalidateByID(ctx, id)
}

// InvalidatePattern logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) InvalidatePattern(ctx context.Context, substring string) int {
	defer func(begin time.Time) {
		mw.logger.Printf("method InvalidatePattern took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("InvalidatePattern method invoked with substring: %s", substring)

	return mw.next.InvalidatePattern(ctx, substring)
}

// InvalidateAll logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) InvalidateAll(ctx context.Context) {
	defer func(begin time.Time) {
		mw.logger.Printf("method InvalidateAll took: %s", time.Since(begin))
	}(time.Now())

	mw.logger.Printf("InvalidateAll method invoked")

	mw.next.InvalidateAll(ctx)
}

// Capacity returns the cache capacity.
func (mw LoggingMiddleware) Capacity() int { return mw.next.Capacity() }

// Count returns the entries count.
func (mw LoggingMiddleware) Count() int { return mw.next.Count() }

// TTL returns the current retention window.
func (mw LoggingMiddleware) TTL() time.Duration { return mw.next.TTL() }

// Stats returns the cache statistics.
func (mw LoggingMiddleware) Stats() stats.Snapshot { return mw.next.Stats() }

// Shutdown logs the time it takes to execute the next middleware.
func (mw LoggingMiddleware) Shutdown(timeout time.Duration) {
	defer func(begin time.Time) {
		mw.logger.Printf("method Shutdown took: %s", time.Since(begin))
	}(time.Now())

	mw.next.Shutdown(timeout)
}
