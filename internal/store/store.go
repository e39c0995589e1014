// Package store implements the in-process storage hierarchy of the cache: an
// N-way sharded map of digest to entry, a per-shard negative cache, and a
// secondary identity index for id-based invalidation.
//
// Each shard owns one RWMutex guarding its positive map, negative map, and
// evictor state. No operation ever holds two shard locks at once; bulk
// operations iterate shards one at a time, bounding worst-case pause time to
// roughly one shard's processing cost.
package store

import (
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/hyp3rd/credcache/internal/sentinel"
	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/eviction"
)

// Outcome classifies the result of a local lookup.
type Outcome int

const (
	// OutcomeMiss means the key was in neither map.
	OutcomeMiss Outcome = iota
	// OutcomeHit means a live positive entry was found.
	OutcomeHit
	// OutcomeNegative means the key has a live confirmed-absent record.
	OutcomeNegative
	// OutcomeExpired means a positive entry was found past its deadline and
	// removed lazily.
	OutcomeExpired
)

// Events receives structural notifications from the store. Callbacks run
// while the emitting shard's lock is held, so they must be fast and must
// never call back into the store.
type Events struct {
	// OnEvict is called once per entry removed by capacity eviction.
	OnEvict func()
	// OnExpire is called once per entry removed by lazy expiry.
	OnExpire func()
}

// Store is the sharded local tier.
type Store struct {
	shards     []*shard
	shardCount uint64
	identity   *identityIndex
	events     Events
}

// New creates a sharded store. The total capacity is divided across shards,
// with a minimum of one entry per shard. Each shard gets its own evictor
// instance for the named policy.
func New(capacity, shardCount int, policy string, events Events) (*Store, error) {
	if capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}

	if shardCount <= 0 {
		return nil, sentinel.ErrInvalidShardCount
	}

	perShard := capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}

	registry := eviction.NewRegistry()

	shards := make([]*shard, shardCount)
	for i := range shards {
		evictor, err := registry.NewEvictor(policy, perShard)
		if err != nil {
			return nil, err
		}

		shards[i] = newShard(perShard, evictor)
	}

	if events.OnEvict == nil {
		events.OnEvict = func() {}
	}

	if events.OnExpire == nil {
		events.OnExpire = func() {}
	}

	return &Store{
		shards:     shards,
		shardCount: uint64(shardCount),
		identity:   newIdentityIndex(),
		events:     events,
	}, nil
}

// shardFor returns the shard owning the key. The assignment is a pure
// function of the key and stays fixed for the process lifetime.
func (s *Store) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%s.shardCount]
}

// Get resolves the key, checking the negative map before the positive one.
func (s *Store) Get(key string) (*cache.Entry, Outcome) {
	return s.shardFor(key).get(key, time.Now(), s.shardEvents())
}

// Has reports whether a live positive entry is resident, without recording
// an access.
func (s *Store) Has(key string) bool {
	return s.shardFor(key).has(key, time.Now())
}

// Set installs the entry in its shard, clearing any negative record for the
// key and evicting within the shard when it is at capacity.
func (s *Store) Set(entry *cache.Entry) {
	s.shardFor(entry.Key).set(entry, s.shardEvents())
}

// MarkNegative records the key as confirmed-absent until the deadline.
func (s *Store) MarkNegative(key string, deadline time.Time) {
	s.shardFor(key).markNegative(key, deadline, s.shardEvents())
}

// IsNegative reports whether the key has a live confirmed-absent record.
func (s *Store) IsNegative(key string) bool {
	return s.shardFor(key).isNegative(key, time.Now())
}

// SweepExpiredNegatives drops negative records whose deadline has passed,
// shard by shard, and returns the number removed. Meant for a periodic
// maintenance pass.
func (s *Store) SweepExpiredNegatives() int {
	now := time.Now()
	removed := 0

	for _, sh := range s.shards {
		removed += sh.sweepNegative(now)
	}

	return removed
}

// Remove deletes the positive and negative records for the key and reports
// whether a positive entry was removed.
func (s *Store) Remove(key string) bool {
	return s.shardFor(key).remove(key, s.shardEvents())
}

// Resolve returns the key linked to the external id, if any.
func (s *Store) Resolve(id string) (string, bool) {
	return s.identity.lookup(id)
}

// RemoveByID resolves the external id and removes the linked entry through
// the normal key-based path. Unknown ids are a no-op.
func (s *Store) RemoveByID(id string) (string, bool) {
	key, ok := s.identity.lookup(id)
	if !ok {
		return "", false
	}

	return key, s.Remove(key)
}

// RemovePattern deletes every entry whose key contains the substring,
// iterating shards one at a time. It returns the number of entries removed.
func (s *Store) RemovePattern(substring string) int {
	removed := 0

	for _, sh := range s.shards {
		removed += sh.removePattern(substring, s.shardEvents())
	}

	return removed
}

// Clear removes all positive and negative records shard by shard, then
// resets the identity index. It returns the number of entries removed.
func (s *Store) Clear() int {
	removed := 0

	for _, sh := range s.shards {
		removed += sh.clear(s.shardEvents())
	}

	s.identity.clear()

	return removed
}

// Count returns the number of resident positive entries across all shards.
func (s *Store) Count() int {
	count := 0

	for _, sh := range s.shards {
		count += sh.count()
	}

	return count
}

// ShardCount returns the number of shards.
func (s *Store) ShardCount() int {
	return len(s.shards)
}

// shardEvents binds the identity index and the structural callbacks into the
// form the shards consume.
func (s *Store) shardEvents() shardEvents {
	return shardEvents{
		link:     s.identity.link,
		unlink:   s.identity.unlink,
		onEvict:  s.events.OnEvict,
		onExpire: s.events.OnExpire,
	}
}

// shardEvents carries the per-operation callbacks into a shard's critical
// sections.
type shardEvents struct {
	link     func(id, key string)
	unlink   func(id string)
	onEvict  func()
	onExpire func()
}
