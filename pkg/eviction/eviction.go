// Package eviction implements the eviction policies applied per shard of the
// local store: LRU, LFU, TTL, and Adaptive. Every policy is implemented
// natively; there is no optional-dependency fallback that could downgrade the
// concurrency guarantees of the store.
//
// Evictors are caller-synchronized: each instance is owned by exactly one
// shard and every method is invoked under that shard's lock.
package eviction

import (
	"maps"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

// Policy names accepted by the registry.
const (
	PolicyLRU      = "lru"
	PolicyLFU      = "lfu"
	PolicyTTL      = "ttl"
	PolicyAdaptive = "adaptive"
)

// Evictor tracks the resident keys of one shard and selects victims when the
// shard is at capacity.
type Evictor interface {
	// Add records a new or updated resident key with its expiry deadline.
	Add(key string, expireAt time.Time)
	// Touch records an access to the key.
	Touch(key string)
	// Remove forgets the key.
	Remove(key string)
	// Evict returns the next victim key, if any.
	Evict() (string, bool)
}

// Registry manages evictor constructors.
type Registry struct {
	policies map[string]func(capacity int) (Evictor, error)
}

// getDefaultPolicies returns the default set of eviction policies.
func getDefaultPolicies() map[string]func(capacity int) (Evictor, error) {
	return map[string]func(capacity int) (Evictor, error){
		PolicyLRU: func(capacity int) (Evictor, error) {
			return NewLRU(capacity)
		},
		PolicyLFU: func(capacity int) (Evictor, error) {
			return NewLFU(capacity)
		},
		PolicyTTL: func(capacity int) (Evictor, error) {
			return NewDeadline(capacity)
		},
		// Adaptive behaves as TTL-based eviction; the retention window it
		// observes is adjusted externally by the adaptive controller.
		PolicyAdaptive: func(capacity int) (Evictor, error) {
			return NewDeadline(capacity)
		},
	}
}

// NewRegistry creates a new policy registry with default policies pre-registered.
func NewRegistry() *Registry {
	registry := &Registry{
		policies: make(map[string]func(capacity int) (Evictor, error)),
	}
	// Register the default policies
	registry.RegisterMultiple(getDefaultPolicies())

	return registry
}

// Register registers a new eviction policy with the given name.
func (r *Registry) Register(name string, createFunc func(capacity int) (Evictor, error)) {
	r.policies[name] = createFunc
}

// RegisterMultiple registers a set of eviction policies.
func (r *Registry) RegisterMultiple(policies map[string]func(capacity int) (Evictor, error)) {
	maps.Copy(r.policies, policies)
}

// NewEvictor creates a new evictor for the named policy with the given capacity.
func (r *Registry) NewEvictor(policyName string, capacity int) (Evictor, error) {
	// Check the parameters.
	if policyName == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "policyName")
	}

	if capacity < 0 {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidCapacity, "capacity")
	}

	createFunc, ok := r.policies[policyName]
	if !ok {
		return nil, ewrap.Wrap(sentinel.ErrPolicyNotFound, policyName)
	}

	return createFunc(capacity)
}

// NewEvictor creates a new evictor using a new registry instance with default
// policies. The policyName parameter selects the policy to instantiate.
func NewEvictor(policyName string, capacity int) (Evictor, error) {
	registry := NewRegistry()

	return registry.NewEvictor(policyName, capacity)
}
