package tier

import (
	"context"

	"github.com/hyp3rd/credcache/pkg/cache"
)

// Null is the default tier used when no distributed store is configured:
// every read misses and every write succeeds as a no-op, keeping the cache
// fully functional in local-only mode.
type Null struct{}

// NewNull creates a new no-op tier.
func NewNull() *Null {
	return &Null{}
}

// Name identifies the tier.
func (*Null) Name() string {
	return "null"
}

// Get always reports a miss.
func (*Null) Get(_ context.Context, _ string) (*cache.Entry, bool, error) {
	return nil, false, nil
}

// Set is a no-op.
func (*Null) Set(_ context.Context, _ *cache.Entry) error {
	return nil
}

// Remove is a no-op.
func (*Null) Remove(_ context.Context, _ ...string) error {
	return nil
}

// Clear is a no-op.
func (*Null) Clear(_ context.Context) error {
	return nil
}
