package store

import (
	"strings"
	"sync"
	"time"

	"github.com/hyp3rd/credcache/pkg/cache"
	"github.com/hyp3rd/credcache/pkg/eviction"
)

// shard is an independently locked, independently evicted partition of the
// local store. One RWMutex guards both the positive and the negative map, so
// the mutual-exclusion invariant between them is enforced inside a single
// critical section. A key's shard assignment never changes for the process
// lifetime.
type shard struct {
	mu       sync.RWMutex
	entries  map[string]*cache.Entry
	negative map[string]time.Time // key -> absolute negative-expiry deadline
	evictor  eviction.Evictor
	capacity int
}

func newShard(capacity int, evictor eviction.Evictor) *shard {
	return &shard{
		entries:  make(map[string]*cache.Entry, capacity),
		negative: make(map[string]time.Time),
		evictor:  evictor,
		capacity: capacity,
	}
}

// get resolves the key against the negative map first, then the positive map
// with a lazy expiry check. It returns a copy of the entry so callers never
// observe concurrent field mutations.
func (s *shard) get(key string, now time.Time, events shardEvents) (*cache.Entry, Outcome) {
	s.mu.RLock()

	if deadline, ok := s.negative[key]; ok && now.Before(deadline) {
		s.mu.RUnlock()

		return nil, OutcomeNegative
	}

	_, ok := s.entries[key]

	s.mu.RUnlock()

	if !ok {
		return nil, OutcomeMiss
	}

	// Touching the entry and removing an expired one both mutate, so the read
	// lock is traded for the write lock and the lookup re-checked. The expiry
	// verdict is decided only on the entry observed under the write lock; a
	// write landing between the two locks must not be judged by its
	// predecessor's deadline.
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, OutcomeMiss
	}

	if entry.Expired() {
		s.removeLocked(key, entry, events)
		events.onExpire()

		return nil, OutcomeExpired
	}

	entry.Touch()
	s.evictor.Touch(key)

	out := *entry

	return &out, OutcomeHit
}

// has reports whether a live entry for the key is resident, without touching it.
func (s *shard) has(key string, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]

	return ok && !(!entry.ExpireAt.IsZero() && now.After(entry.ExpireAt))
}

// set installs the entry, clearing any negative record for the key first and
// evicting within this shard when it is at capacity.
func (s *shard) set(entry *cache.Entry, events shardEvents) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Inserting positively clears the negative record in the same critical section.
	delete(s.negative, entry.Key)

	if existing, ok := s.entries[entry.Key]; ok {
		if existing.ExternalID != "" && existing.ExternalID != entry.ExternalID {
			events.unlink(existing.ExternalID)
		}

		s.entries[entry.Key] = entry
		s.evictor.Add(entry.Key, entry.ExpireAt)

		if entry.ExternalID != "" {
			events.link(entry.ExternalID, entry.Key)
		}

		return
	}

	for len(s.entries) >= s.capacity {
		victim, ok := s.evictor.Evict()
		if !ok {
			break
		}

		if victimEntry, resident := s.entries[victim]; resident {
			delete(s.entries, victim)

			if victimEntry.ExternalID != "" {
				events.unlink(victimEntry.ExternalID)
			}

			events.onEvict()
		}
	}

	s.entries[entry.Key] = entry
	s.evictor.Add(entry.Key, entry.ExpireAt)

	if entry.ExternalID != "" {
		events.link(entry.ExternalID, entry.Key)
	}
}

// markNegative records the key as confirmed-absent, removing any positive
// entry in the same critical section.
func (s *shard) markNegative(key string, deadline time.Time, events shardEvents) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok {
		s.removeLocked(key, entry, events)
	}

	s.negative[key] = deadline
}

// isNegative reports whether the key has a live negative record.
func (s *shard) isNegative(key string, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, ok := s.negative[key]

	return ok && now.Before(deadline)
}

// sweepNegative drops every negative record whose deadline has passed and
// returns the number removed. Lookups only observe deadlines, they never
// delete, so without this pass a stream of distinct confirmed-absent keys
// grows the negative map past its useful lifetime.
func (s *shard) sweepNegative(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for key, deadline := range s.negative {
		if !now.Before(deadline) {
			delete(s.negative, key)

			removed++
		}
	}

	return removed
}

// remove deletes the positive and negative records for the key. It reports
// whether a positive entry was removed.
func (s *shard) remove(key string, events shardEvents) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.negative, key)

	entry, ok := s.entries[key]
	if !ok {
		return false
	}

	s.removeLocked(key, entry, events)

	return true
}

// removePattern deletes every entry whose key contains the substring and
// returns the number removed. Negative records matching the pattern are
// dropped as well.
func (s *shard) removePattern(substring string, events shardEvents) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for key, entry := range s.entries {
		if strings.Contains(key, substring) {
			s.removeLocked(key, entry, events)

			removed++
		}
	}

	for key := range s.negative {
		if strings.Contains(key, substring) {
			delete(s.negative, key)
		}
	}

	return removed
}

// clear resets the shard's maps and evictor state.
func (s *shard) clear(events shardEvents) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entries)

	for key, entry := range s.entries {
		s.evictor.Remove(key)

		if entry.ExternalID != "" {
			events.unlink(entry.ExternalID)
		}
	}

	s.entries = make(map[string]*cache.Entry)
	s.negative = make(map[string]time.Time)

	return removed
}

// count returns the number of resident entries.
func (s *shard) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// removeLocked deletes the entry, its evictor record, and its identity link.
// The caller holds the shard's write lock.
func (s *shard) removeLocked(key string, entry *cache.Entry, events shardEvents) {
	delete(s.entries, key)
	s.evictor.Remove(key)

	if entry.ExternalID != "" {
		events.unlink(entry.ExternalID)
	}
}
