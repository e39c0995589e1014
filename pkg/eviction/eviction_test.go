package eviction

import (
	"errors"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache/internal/sentinel"
)

func TestRegistry_NewEvictor(t *testing.T) {
	tests := []struct {
		name        string
		policy      string
		expectedErr error
	}{
		{name: "lru", policy: PolicyLRU},
		{name: "lfu", policy: PolicyLFU},
		{name: "ttl", policy: PolicyTTL},
		{name: "adaptive", policy: PolicyAdaptive},
		{name: "empty policy name", policy: "", expectedErr: sentinel.ErrParamCannotBeEmpty},
		{name: "unknown policy", policy: "mru", expectedErr: sentinel.ErrPolicyNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			evictor, err := NewEvictor(test.policy, 10)
			if test.expectedErr != nil {
				assert.True(t, errors.Is(err, test.expectedErr))

				return
			}

			assert.Nil(t, err)
			assert.True(t, evictor != nil)
		})
	}
}

func TestLRU(t *testing.T) {
	lru, err := NewLRU(3)
	assert.Nil(t, err)

	lru.Add("a", time.Time{})
	lru.Add("b", time.Time{})
	lru.Add("c", time.Time{})

	// touching "a" makes "b" the coldest
	lru.Touch("a")

	victim, ok := lru.Evict()
	assert.True(t, ok)
	assert.Equal(t, "b", victim)

	victim, ok = lru.Evict()
	assert.True(t, ok)
	assert.Equal(t, "c", victim)

	victim, ok = lru.Evict()
	assert.True(t, ok)
	assert.Equal(t, "a", victim)

	_, ok = lru.Evict()
	assert.False(t, ok)
}

func TestLRU_ReAddMovesToFront(t *testing.T) {
	lru, err := NewLRU(3)
	assert.Nil(t, err)

	lru.Add("a", time.Time{})
	lru.Add("b", time.Time{})
	lru.Add("a", time.Time{})

	victim, ok := lru.Evict()
	assert.True(t, ok)
	assert.Equal(t, "b", victim)
}

func TestLRU_Remove(t *testing.T) {
	lru, err := NewLRU(3)
	assert.Nil(t, err)

	lru.Add("a", time.Time{})
	lru.Add("b", time.Time{})
	lru.Remove("a")

	victim, ok := lru.Evict()
	assert.True(t, ok)
	assert.Equal(t, "b", victim)

	_, ok = lru.Evict()
	assert.False(t, ok)
}

func TestLFU(t *testing.T) {
	lfu, err := NewLFU(3)
	assert.Nil(t, err)

	lfu.Add("a", time.Time{})
	lfu.Add("b", time.Time{})
	lfu.Add("c", time.Time{})

	lfu.Touch("a")
	lfu.Touch("a")
	lfu.Touch("b")

	// "c" was never touched, so it goes first
	victim, ok := lfu.Evict()
	assert.True(t, ok)
	assert.Equal(t, "c", victim)

	victim, ok = lfu.Evict()
	assert.True(t, ok)
	assert.Equal(t, "b", victim)

	victim, ok = lfu.Evict()
	assert.True(t, ok)
	assert.Equal(t, "a", victim)

	_, ok = lfu.Evict()
	assert.False(t, ok)
}

func TestLFU_TieBreaksOnRecency(t *testing.T) {
	lfu, err := NewLFU(2)
	assert.Nil(t, err)

	lfu.Add("old", time.Time{})
	lfu.Add("new", time.Time{})

	// equal counts: the entry untouched longest is the victim
	victim, ok := lfu.Evict()
	assert.True(t, ok)
	assert.Equal(t, "old", victim)
}

func TestLFU_Remove(t *testing.T) {
	lfu, err := NewLFU(2)
	assert.Nil(t, err)

	lfu.Add("a", time.Time{})
	lfu.Add("b", time.Time{})
	lfu.Remove("a")

	victim, ok := lfu.Evict()
	assert.True(t, ok)
	assert.Equal(t, "b", victim)

	_, ok = lfu.Evict()
	assert.False(t, ok)
}

func TestDeadline(t *testing.T) {
	d, err := NewDeadline(3)
	assert.Nil(t, err)

	now := time.Now()

	d.Add("late", now.Add(3*time.Hour))
	d.Add("early", now.Add(time.Hour))
	d.Add("mid", now.Add(2*time.Hour))

	victim, ok := d.Evict()
	assert.True(t, ok)
	assert.Equal(t, "early", victim)

	victim, ok = d.Evict()
	assert.True(t, ok)
	assert.Equal(t, "mid", victim)

	victim, ok = d.Evict()
	assert.True(t, ok)
	assert.Equal(t, "late", victim)

	_, ok = d.Evict()
	assert.False(t, ok)
}

func TestDeadline_ZeroDeadlineSortsLast(t *testing.T) {
	d, err := NewDeadline(2)
	assert.Nil(t, err)

	now := time.Now()

	d.Add("pinned", time.Time{})
	d.Add("expiring", now.Add(time.Minute))

	victim, ok := d.Evict()
	assert.True(t, ok)
	assert.Equal(t, "expiring", victim)

	victim, ok = d.Evict()
	assert.True(t, ok)
	assert.Equal(t, "pinned", victim)
}

func TestDeadline_ReAddUpdatesDeadline(t *testing.T) {
	d, err := NewDeadline(2)
	assert.Nil(t, err)

	now := time.Now()

	d.Add("a", now.Add(time.Hour))
	d.Add("b", now.Add(2*time.Hour))

	// pushing "a" far out makes "b" the next victim
	d.Add("a", now.Add(10*time.Hour))

	victim, ok := d.Evict()
	assert.True(t, ok)
	assert.Equal(t, "b", victim)
}
