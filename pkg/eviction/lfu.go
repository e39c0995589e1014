package eviction

import (
	"container/heap"
	"time"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

// LFU evicts the least frequently used key, breaking frequency ties by
// recency so cold keys with equal counts leave first.
type LFU struct {
	nodes map[string]*lfuNode
	freqs *frequencyHeap
	seq   uint64 // monotonic sequence to break frequency ties by recency
}

// lfuNode is a node in the LFU frequency heap.
type lfuNode struct {
	key   string
	count int
	index int
	last  uint64 // last access sequence (higher = more recent)
}

// frequencyHeap is a heap of lfuNodes ordered by access count, then recency.
//
//nolint:recvcheck
type frequencyHeap []*lfuNode

// Len returns the length of the heap.
func (fh frequencyHeap) Len() int { return len(fh) }

// Less returns true if the node at index i should be evicted before the node at index j.
func (fh frequencyHeap) Less(i, j int) bool {
	if fh[i].count == fh[j].count {
		// On ties, evict the least recently used (older last sequence has priority)
		return fh[i].last < fh[j].last
	}

	return fh[i].count < fh[j].count
}

// Swap swaps the nodes at index i and j.
func (fh frequencyHeap) Swap(i, j int) {
	fh[i], fh[j] = fh[j], fh[i]
	fh[i].index = i
	fh[j].index = j
}

// Push adds a node to the heap.
func (fh *frequencyHeap) Push(x any) {
	n := len(*fh)

	node, ok := x.(*lfuNode)
	if ok {
		node.index = n
		*fh = append(*fh, node)
	}
}

// Pop removes the last node from the heap.
func (fh *frequencyHeap) Pop() any {
	old := *fh
	n := len(old)
	node := old[n-1]

	node.index = -1
	*fh = old[0 : n-1]

	return node
}

// NewLFU creates a new LFU evictor with the given capacity.
func NewLFU(capacity int) (*LFU, error) {
	if capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}

	return &LFU{
		nodes: make(map[string]*lfuNode, capacity),
		freqs: &frequencyHeap{},
	}, nil
}

// Add records a new or updated resident key.
func (l *LFU) Add(key string, _ time.Time) {
	if node, ok := l.nodes[key]; ok {
		// Key exists: increment frequency
		node.count++

		l.seq++

		node.last = l.seq
		heap.Fix(l.freqs, node.index)

		return
	}

	l.seq++

	node := &lfuNode{
		key:   key,
		count: 1,
		last:  l.seq,
	}

	l.nodes[key] = node
	heap.Push(l.freqs, node)
}

// Touch records an access to the key.
func (l *LFU) Touch(key string) {
	node, ok := l.nodes[key]
	if !ok {
		return
	}

	node.count++

	l.seq++

	node.last = l.seq
	heap.Fix(l.freqs, node.index)
}

// Remove forgets the key.
func (l *LFU) Remove(key string) {
	node, ok := l.nodes[key]
	if !ok {
		return
	}

	// heap.Remove will maintain heap invariants and update indices
	heap.Remove(l.freqs, node.index)
	delete(l.nodes, key)
}

// Evict returns the least frequently used key.
func (l *LFU) Evict() (string, bool) {
	if len(l.nodes) == 0 {
		return "", false
	}

	node, ok := heap.Pop(l.freqs).(*lfuNode)
	if !ok {
		return "", false
	}

	delete(l.nodes, node.key)

	return node.key, true
}
