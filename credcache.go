// Package credcache implements a multi-tier lookup cache for opaque credential
// tokens. It accelerates repeated validation by caching the result of an
// expensive backend lookup in an in-process sharded store, short-circuits
// known-invalid tokens through a negative cache, optionally falls through to
// distributed tiers on a local miss, and periodically retunes its retention
// window from the observed hit-ratio trend.
//
// A Cache is an explicit handle constructed by the embedding service; its
// lifecycle is owned by whoever constructs it.
package credcache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyp3rd/credcache/internal/constants"
	"github.com/hyp3rd/credcache/internal/sentinel"
	"github.com/hyp3rd/credcache/internal/store"
	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/stats"
	"github.com/hyp3rd/credcache/pkg/tier"
)

// Logger describes a logging interface allowing to plug in an external or
// custom logger. Tested with the standard library log package, logrus, and
// Zap, but any logger matching the interface works.
type Logger interface {
	Printf(format string, v ...any)
}

// noopLogger discards everything; it is the default when no logger is configured.
type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Cache is the multi-tier credential lookup cache. All request-path methods
// are safe for concurrent use by any number of goroutines; one background
// goroutine drives the adaptive controller and the cache warmer.
type Cache struct {
	localStore *store.Store
	collector  *stats.Collector
	tiers      []tier.Tier
	logger     Logger

	capacity            int
	shardCount          int
	policyName          string
	negativeTTL         time.Duration
	maintenanceInterval time.Duration
	adaptiveFloor       time.Duration
	adaptiveCeiling     time.Duration
	warmTopK            int
	metricsEnabled      bool
	warmingEnabled      bool

	ttl atomic.Int64 // current default retention window in nanoseconds

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a cache with the given options. With zero distributed tiers
// configured the cache runs fully local; tiers are only ever consulted after
// a local miss and never while a shard lock is held.
func New(options ...Option) (*Cache, error) {
	c := &Cache{
		collector:           stats.NewCollector(),
		logger:              noopLogger{},
		capacity:            constants.DefaultCacheSize,
		shardCount:          constants.DefaultShardCount,
		policyName:          constants.DefaultEvictionPolicy,
		maintenanceInterval: constants.DefaultMaintenanceInterval,
		adaptiveFloor:       constants.DefaultAdaptiveFloor,
		adaptiveCeiling:     constants.DefaultAdaptiveCeiling,
		warmTopK:            constants.DefaultWarmTopK,
		metricsEnabled:      true,
		stop:                make(chan struct{}),
		done:                make(chan struct{}),
	}
	c.ttl.Store(int64(constants.DefaultTTL))

	// Apply options
	for _, option := range options {
		option(c)
	}

	if c.capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}

	if c.shardCount <= 0 {
		return nil, sentinel.ErrInvalidShardCount
	}

	// Derive the negative retention window from the positive one when not
	// configured explicitly.
	if c.negativeTTL <= 0 {
		c.negativeTTL = c.currentTTL() / constants.NegativeTTLRatio
		if c.negativeTTL < constants.MinNegativeTTL {
			c.negativeTTL = constants.MinNegativeTTL
		}
	}

	localStore, err := store.New(c.capacity, c.shardCount, c.policyName, store.Events{
		OnEvict:  c.collector.RecordEviction,
		OnExpire: c.collector.RecordExpiration,
	})
	if err != nil {
		return nil, err
	}

	c.localStore = localStore

	if c.maintenanceInterval > 0 {
		go c.maintenanceLoop()
	} else {
		close(c.done)
	}

	return c, nil
}

// Get retrieves the value cached for the key. It returns found=false on every
// failure path, including distributed tier errors, so the caller always has a
// plain cache-or-recompute decision.
func (c *Cache) Get(ctx context.Context, key string) (any, bool) {
	entry, ok := c.GetEntry(ctx, key)
	if !ok {
		return nil, false
	}

	return entry.Value, true
}

// GetEntry behaves like Get but returns the entry with its metadata.
func (c *Cache) GetEntry(ctx context.Context, key string) (*cache.Entry, bool) {
	if strings.TrimSpace(key) == "" {
		return nil, false
	}

	start := time.Now()

	defer func() {
		if c.metricsEnabled {
			c.collector.RecordLatency(time.Since(start))
		}
	}()

	entry, outcome := c.localStore.Get(key)

	switch outcome {
	case store.OutcomeHit:
		c.recordAccess(key, stats.TierLocal, true)

		return entry, true

	case store.OutcomeNegative:
		// Served from cache, but the answer is "confirmed absent".
		c.recordAccess(key, stats.TierNegative, true)

		return nil, false

	case store.OutcomeMiss, store.OutcomeExpired:
	}

	// Local miss: consult the distributed tiers. The shard lock was released
	// inside the store; a fresh lock is only taken to install the result.
	if remote, ok := c.distributedGet(ctx, key); ok {
		c.recordAccess(key, stats.TierDistributed, true)

		return remote, true
	}

	c.recordAccess(key, stats.TierLocal, false)

	return nil, false
}

// distributedGet consults the configured tiers in order and installs the
// first hit into the local store. Tier failures of any kind degrade to a
// miss: counted, logged at warning level, never propagated.
func (c *Cache) distributedGet(ctx context.Context, key string) (*cache.Entry, bool) {
	for _, t := range c.tiers {
		entry, found, err := t.Get(ctx, key)
		if err != nil {
			c.collector.RecordDistributedError()
			c.logger.Printf("warn: tier %s get %q: %v", t.Name(), key, err)

			continue
		}

		if !found {
			continue
		}

		if entry.Expired() {
			continue
		}

		// Copy into the local tier with the same TTL semantics.
		if entry.ExpireAt.IsZero() {
			entry.ExpireAt = time.Now().Add(c.currentTTL())
		}

		entry.Touch()

		// Snapshot before the local install publishes the pointer to
		// concurrent lookups.
		out := *entry

		c.localStore.Set(entry)
		c.collector.RecordInsert()

		return &out, true
	}

	return nil, false
}

// Set stores the value for the key. A zero ttl applies the current default
// retention window; the write fans out to every configured distributed tier
// independently, and tier failures never fail the local write.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		return sentinel.ErrInvalidExpiration
	}

	return c.SetWithOptions(ctx, key, value, cache.WithTTL(ttl))
}

// SetWithOptions stores the value for the key with per-entry options.
func (c *Cache) SetWithOptions(ctx context.Context, key string, value any, options ...cache.EntryOption) error {
	if strings.TrimSpace(key) == "" {
		return sentinel.ErrInvalidKey
	}

	if value == nil {
		return sentinel.ErrNilValue
	}

	now := time.Now()

	entry := &cache.Entry{
		Key:        key,
		Value:      value,
		CreatedAt:  now,
		LastAccess: now,
	}

	if identified, ok := value.(cache.ExternalIdentifier); ok {
		entry.ExternalID = identified.ExternalID()
	}

	cache.ApplyEntryOptions(entry, options...)

	// Entries without an explicit deadline get the current default window.
	if entry.ExpireAt.IsZero() {
		entry.ExpireAt = now.Add(c.currentTTL())
	}

	// Size accounting is best effort; exotic payloads simply report zero.
	_ = entry.SetSize()

	// The tiers get a private copy: once the local install publishes the
	// pointer, concurrent lookups mutate its access fields under the shard
	// lock while tier writers read the struct with no lock at all.
	fanout := *entry

	c.localStore.Set(entry)
	c.collector.RecordInsert()

	c.distributedSet(ctx, &fanout)

	return nil
}

// distributedSet fans the entry out to all configured tiers concurrently.
// Each tier is independent; a failure is counted and logged, nothing more.
func (c *Cache) distributedSet(ctx context.Context, entry *cache.Entry) {
	if len(c.tiers) == 0 {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for _, t := range c.tiers {
		group.Go(func() error {
			err := t.Set(groupCtx, entry)
			if err != nil {
				c.collector.RecordDistributedError()
				c.logger.Printf("warn: tier %s set %q: %v", t.Name(), entry.Key, err)
			}

			// absorbed: one tier failing must not cancel the others
			return nil
		})
	}

	_ = group.Wait()
}

// SetNegative records the key as confirmed-absent for the negative retention
// window, so repeated lookups for a known-invalid token skip the backend.
func (c *Cache) SetNegative(_ context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return sentinel.ErrInvalidKey
	}

	c.localStore.MarkNegative(key, time.Now().Add(c.negativeTTL))

	return nil
}

// GetOrSet retrieves the value for the key, or stores the given value when
// the key is absent. The boolean reports whether the value came from the cache.
func (c *Cache) GetOrSet(ctx context.Context, key string, value any, ttl time.Duration) (any, bool, error) {
	if cached, ok := c.Get(ctx, key); ok {
		return cached, true, nil
	}

	err := c.Set(ctx, key, value, ttl)
	if err != nil {
		return nil, false, err
	}

	return value, false, nil
}

// Invalidate removes the entry for the key from every tier. The local removal
// also drops the key's negative record and identity link.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c.localStore.Remove(key) {
		c.collector.RecordInvalidations(1)
	}

	c.distributedRemove(ctx, key)
}

// InvalidateByID resolves the external id through the identity index and
// invalidates the linked entry. Unknown ids are a no-op, not an error.
func (c *Cache) InvalidateByID(ctx context.Context, id string) {
	key, removed := c.localStore.RemoveByID(id)
	if !removed {
		return
	}

	c.collector.RecordInvalidations(1)
	c.distributedRemove(ctx, key)
}

// InvalidatePattern removes every local entry whose key contains the
// substring, iterating shards one at a time, and returns the number removed.
// Distributed tiers are untouched: remote keys cannot be enumerated cheaply
// and expire on their own.
func (c *Cache) InvalidatePattern(_ context.Context, substring string) int {
	removed := c.localStore.RemovePattern(substring)
	c.collector.RecordInvalidations(removed)

	return removed
}

// InvalidateAll clears every shard sequentially, never holding more than one
// shard lock at a time, and issues a best-effort bulk clear to each tier.
func (c *Cache) InvalidateAll(ctx context.Context) {
	removed := c.localStore.Clear()
	c.collector.RecordInvalidations(removed)

	for _, t := range c.tiers {
		err := t.Clear(ctx)
		if err != nil {
			c.collector.RecordDistributedError()
			c.logger.Printf("warn: tier %s clear: %v", t.Name(), err)
		}
	}
}

// distributedRemove deletes the key from all tiers concurrently, best effort.
func (c *Cache) distributedRemove(ctx context.Context, key string) {
	if len(c.tiers) == 0 {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for _, t := range c.tiers {
		group.Go(func() error {
			err := t.Remove(groupCtx, key)
			if err != nil {
				c.collector.RecordDistributedError()
				c.logger.Printf("warn: tier %s remove %q: %v", t.Name(), key, err)
			}

			return nil
		})
	}

	_ = group.Wait()
}

// Stats returns a point-in-time snapshot of the cache statistics.
func (c *Cache) Stats() stats.Snapshot {
	snapshot := c.collector.Snapshot()
	snapshot.EntryCount = c.localStore.Count()
	snapshot.TTL = c.currentTTL()

	return snapshot
}

// Collector exposes the stats collector so middlewares can share it.
func (c *Cache) Collector() *stats.Collector {
	return c.collector
}

// Count returns the number of entries resident in the local store.
func (c *Cache) Count() int {
	return c.localStore.Count()
}

// Capacity returns the total entry budget of the local store.
func (c *Cache) Capacity() int {
	return c.capacity
}

// TTL returns the retention window currently applied to new entries.
func (c *Cache) TTL() time.Duration {
	return c.currentTTL()
}

// Shutdown signals the maintenance goroutine to stop and waits up to the
// given timeout for it to exit. An elapsed timeout is logged, not fatal:
// the goroutine observes the signal at its next wait slice regardless.
func (c *Cache) Shutdown(timeout time.Duration) {
	if timeout <= 0 {
		timeout = constants.DefaultShutdownTimeout
	}

	c.stopOnce.Do(func() {
		close(c.stop)
	})

	select {
	case <-c.done:
	case <-time.After(timeout):
		c.logger.Printf("warn: maintenance goroutine did not stop within %s", timeout)
	}
}

// currentTTL loads the retention window applied to new entries.
func (c *Cache) currentTTL() time.Duration {
	return time.Duration(c.ttl.Load())
}

// setTTL stores a new default retention window, clamped to the configured bounds.
func (c *Cache) setTTL(ttl time.Duration) {
	if ttl < c.adaptiveFloor {
		ttl = c.adaptiveFloor
	}

	if ttl > c.adaptiveCeiling {
		ttl = c.adaptiveCeiling
	}

	c.ttl.Store(int64(ttl))
}

// recordAccess forwards the lookup outcome to the collector when metrics are
// enabled. The collector has its own synchronization; this never touches a
// shard lock.
func (c *Cache) recordAccess(key string, servedBy stats.Tier, hit bool) {
	if !c.metricsEnabled {
		return
	}

	c.collector.RecordAccess(key, servedBy, hit)
}

// maintenanceLoop drives the adaptive controller, the cache warmer, and the
// frequency table pruning. It sleeps in slices of at most one second so
// shutdown latency stays bounded even for long maintenance intervals.
func (c *Cache) maintenanceLoop() {
	defer close(c.done)

	next := time.Now().Add(c.maintenanceInterval)

	for {
		wait := time.Until(next)
		if wait > constants.MaintenanceWaitGranularity {
			wait = constants.MaintenanceWaitGranularity
		}

		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)

		select {
		case <-c.stop:
			timer.Stop()

			return
		case <-timer.C:
		}

		if time.Now().Before(next) {
			continue
		}

		next = time.Now().Add(c.maintenanceInterval)

		c.runMaintenance(context.Background())
	}
}

// runMaintenance executes one maintenance pass.
func (c *Cache) runMaintenance(ctx context.Context) {
	c.adaptiveTick()

	if c.warmingEnabled {
		c.warmTick(ctx)
	}

	c.localStore.SweepExpiredNegatives()
	c.collector.PruneFrequencies(constants.FrequencyIdleCutoff)
}
