// Package tier defines the distributed tier contract consumed by the cache:
// an optional remote key-value store consulted after a local miss and
// populated on writes. Implementations must treat every failure as
// recoverable; the cache absorbs tier errors and degrades to local-only
// operation.
//
// All methods accept a context.Context parameter for cancellation and timeout
// control. The cache never invokes a tier while holding a shard lock, so slow
// or stalled remote calls cannot block unrelated local reads.
package tier

import (
	"context"

	"github.com/hyp3rd/credcache/pkg/cache"
)

// Tier is the contract a remote key-value backing store must implement.
type Tier interface {
	// Name identifies the tier in logs and statistics.
	Name() string
	// Get retrieves the entry with the given key. The second return value
	// reports whether the key was found; err is reserved for transport or
	// decoding failures.
	Get(ctx context.Context, key string) (entry *cache.Entry, found bool, err error)
	// Set stores the entry, propagating its remaining TTL.
	Set(ctx context.Context, entry *cache.Entry) error
	// Remove deletes the entries with the given keys.
	Remove(ctx context.Context, keys ...string) error
	// Clear removes all entries owned by the tier.
	Clear(ctx context.Context) error
}
