package eviction

import (
	"container/heap"
	"time"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

// Deadline evicts the key with the earliest expiry deadline. It backs both the
// TTL policy and the Adaptive policy; the adaptive controller shapes the
// deadlines it sees by adjusting the default retention window applied on Set.
type Deadline struct {
	nodes map[string]*deadlineNode
	heap  *deadlineHeap
	seq   uint64 // tiebreaker for entries sharing a deadline (older first)
}

// deadlineNode is a node in the deadline heap.
type deadlineNode struct {
	key      string
	expireAt time.Time
	index    int
	seq      uint64
}

// deadlineHeap is a min-heap of deadlineNodes ordered by expiry deadline.
//
//nolint:recvcheck
type deadlineHeap []*deadlineNode

// Len returns the length of the heap.
func (dh deadlineHeap) Len() int { return len(dh) }

// Less returns true if the node at index i expires before the node at index j.
// Nodes without a deadline sort last; insertion order breaks exact ties.
func (dh deadlineHeap) Less(i, j int) bool {
	left, right := dh[i], dh[j]

	if left.expireAt.IsZero() != right.expireAt.IsZero() {
		return !left.expireAt.IsZero()
	}

	if left.expireAt.Equal(right.expireAt) {
		return left.seq < right.seq
	}

	return left.expireAt.Before(right.expireAt)
}

// Swap swaps the nodes at index i and j.
func (dh deadlineHeap) Swap(i, j int) {
	dh[i], dh[j] = dh[j], dh[i]
	dh[i].index = i
	dh[j].index = j
}

// Push adds a node to the heap.
func (dh *deadlineHeap) Push(x any) {
	n := len(*dh)

	node, ok := x.(*deadlineNode)
	if ok {
		node.index = n
		*dh = append(*dh, node)
	}
}

// Pop removes the last node from the heap.
func (dh *deadlineHeap) Pop() any {
	old := *dh
	n := len(old)
	node := old[n-1]

	node.index = -1
	*dh = old[0 : n-1]

	return node
}

// NewDeadline creates a new deadline evictor with the given capacity.
func NewDeadline(capacity int) (*Deadline, error) {
	if capacity < 0 {
		return nil, sentinel.ErrInvalidCapacity
	}

	return &Deadline{
		nodes: make(map[string]*deadlineNode, capacity),
		heap:  &deadlineHeap{},
	}, nil
}

// Add records a new or updated resident key with its expiry deadline.
func (d *Deadline) Add(key string, expireAt time.Time) {
	if node, ok := d.nodes[key]; ok {
		node.expireAt = expireAt
		heap.Fix(d.heap, node.index)

		return
	}

	d.seq++

	node := &deadlineNode{
		key:      key,
		expireAt: expireAt,
		seq:      d.seq,
	}

	d.nodes[key] = node
	heap.Push(d.heap, node)
}

// Touch is a no-op: deadlines do not change on access.
func (*Deadline) Touch(string) {}

// Remove forgets the key.
func (d *Deadline) Remove(key string) {
	node, ok := d.nodes[key]
	if !ok {
		return
	}

	heap.Remove(d.heap, node.index)
	delete(d.nodes, key)
}

// Evict returns the key with the earliest expiry deadline.
func (d *Deadline) Evict() (string, bool) {
	if len(d.nodes) == 0 {
		return "", false
	}

	node, ok := heap.Pop(d.heap).(*deadlineNode)
	if !ok {
		return "", false
	}

	delete(d.nodes, node.key)

	return node.key, true
}
