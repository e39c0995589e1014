package store

import "sync"

// identityIndex maps external identifiers to cache keys. It is a lookup aid,
// not an ownership relation: links are created when an entry carrying an
// external id is set and removed whenever the entry is removed, inside the
// same removal path. The index has its own lock, independent of the shards;
// lock ordering is always shard before identity, never the reverse.
type identityIndex struct {
	mu    sync.RWMutex
	links map[string]string // external id -> cache key
}

func newIdentityIndex() *identityIndex {
	return &identityIndex{
		links: make(map[string]string),
	}
}

func (i *identityIndex) link(id, key string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.links[id] = key
}

func (i *identityIndex) lookup(id string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	key, ok := i.links[id]

	return key, ok
}

func (i *identityIndex) unlink(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.links, id)
}

func (i *identityIndex) clear() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.links = make(map[string]string)
}
