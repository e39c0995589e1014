package credcache

import (
	"context"
	"time"

	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/stats"
)

// Service is the service interface for the credential cache.
// It enables middleware to be added to the service.
type Service interface {
	crud
	// Capacity returns the total entry budget of the local store
	Capacity() int
	// Count returns the number of entries resident in the local store
	Count() int
	// TTL returns the retention window currently applied to new entries
	TTL() time.Duration
	// Stats returns a snapshot of the cache statistics
	Stats() stats.Snapshot
	// Shutdown stops the background maintenance, waiting up to the timeout
	Shutdown(timeout time.Duration)
}

type crud interface {
	// Get retrieves a value from the cache using the key
	Get(ctx context.Context, key string) (value any, ok bool)
	// GetEntry retrieves the entry and its metadata using the key
	GetEntry(ctx context.Context, key string) (*cache.Entry, bool)
	// Set stores a value in the cache using the key and retention window
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// SetWithOptions stores a value with per-entry options
	SetWithOptions(ctx context.Context, key string, value any, options ...cache.EntryOption) error
	// SetNegative records the key as confirmed absent
	SetNegative(ctx context.Context, key string) error
	// GetOrSet retrieves a value, or stores the given one when absent
	GetOrSet(ctx context.Context, key string, value any, ttl time.Duration) (any, bool, error)
	// Invalidate removes the entry for the key
	Invalidate(ctx context.Context, key string)
	// InvalidateByID removes the entry linked to the external id
	InvalidateByID(ctx context.Context, id string)
	// InvalidatePattern removes every entry whose key contains the substring
	InvalidatePattern(ctx context.Context, substring string) int
	// InvalidateAll removes all entries
	InvalidateAll(ctx context.Context)
}

// Middleware describes a service middleware.
type Middleware func(Service) Service

// ApplyMiddleware applies middlewares to a service.
func ApplyMiddleware(svc Service, mw ...Middleware) Service {
	// Apply each middleware in the chain
	for _, m := range mw {
		svc = m(svc)
	}
	// Return the decorated service
	return svc
}
