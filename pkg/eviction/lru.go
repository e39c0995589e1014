package eviction

import (
	"container/list"
	"time"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

// LRU evicts the least recently used key. Recency is tracked with a doubly
// linked list: front is most recent, back is the next victim.
type LRU struct {
	order    *list.List
	elements map[string]*list.Element
	capacity int
}

// NewLRU creates a new LRU evictor with the given capacity.
func NewLRU(capacity int) (*LRU, error) {
	if capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}

	return &LRU{
		order:    list.New(),
		elements: make(map[string]*list.Element, capacity),
		capacity: capacity,
	}, nil
}

// Add records a new or updated resident key as the most recently used.
func (l *LRU) Add(key string, _ time.Time) {
	if element, ok := l.elements[key]; ok {
		l.order.MoveToFront(element)

		return
	}

	l.elements[key] = l.order.PushFront(key)
}

// Touch marks the key as most recently used.
func (l *LRU) Touch(key string) {
	if element, ok := l.elements[key]; ok {
		l.order.MoveToFront(element)
	}
}

// Remove forgets the key.
func (l *LRU) Remove(key string) {
	element, ok := l.elements[key]
	if !ok {
		return
	}

	l.order.Remove(element)
	delete(l.elements, key)
}

// Evict returns the least recently used key.
func (l *LRU) Evict() (string, bool) {
	element := l.order.Back()
	if element == nil {
		return "", false
	}

	key, ok := element.Value.(string)
	if !ok {
		return "", false
	}

	l.order.Remove(element)
	delete(l.elements, key)

	return key, true
}
