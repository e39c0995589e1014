package credcache

import (
	"context"
	"time"
)

// warmTick pre-populates the local tier from the distributed tiers for the
// most frequently accessed keys that are currently absent locally. Warming is
// best effort and never required for correctness: failures are skipped.
func (c *Cache) warmTick(ctx context.Context) {
	if len(c.tiers) == 0 {
		return
	}

	for _, key := range c.collector.TopKeys(c.warmTopK) {
		select {
		case <-c.stop:
			return
		default:
		}

		if c.localStore.Has(key) {
			continue
		}

		// A live negative record is an answer, not an absence. Warming over
		// it would resurrect a credential the backend just confirmed invalid.
		if c.localStore.IsNegative(key) {
			continue
		}

		c.warmKey(ctx, key)
	}
}

// warmKey pulls one key from the first tier that has it.
func (c *Cache) warmKey(ctx context.Context, key string) {
	for _, t := range c.tiers {
		entry, found, err := t.Get(ctx, key)
		if err != nil {
			c.collector.RecordDistributedError()

			continue
		}

		if !found || entry.Expired() {
			continue
		}

		if entry.ExpireAt.IsZero() {
			entry.ExpireAt = time.Now().Add(c.currentTTL())
		}

		c.localStore.Set(entry)
		c.collector.RecordInsert()

		return
	}
}
