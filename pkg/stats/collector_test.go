package stats

import (
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/credcache/internal/constants"
)

func TestCollector_RecordAccess(t *testing.T) {
	c := NewCollector()

	c.RecordAccess("a", TierLocal, true)
	c.RecordAccess("a", TierLocal, true)
	c.RecordAccess("b", TierNegative, true)
	c.RecordAccess("c", TierDistributed, true)
	c.RecordAccess("d", TierLocal, false)

	snapshot := c.Snapshot()
	assert.Equal(t, uint64(4), snapshot.Hits)
	assert.Equal(t, uint64(1), snapshot.Misses)
	assert.Equal(t, uint64(2), snapshot.LocalHits)
	assert.Equal(t, uint64(1), snapshot.NegativeHits)
	assert.Equal(t, uint64(1), snapshot.DistributedHits)
	assert.Equal(t, 0.8, snapshot.HitRatio)

	// one hourly bucket so far, holding all five accesses
	assert.Equal(t, 1, len(snapshot.HitRatioHistory))
	assert.Equal(t, 0.8, snapshot.HitRatioHistory[0])
}

func TestCollector_HitRatioEmpty(t *testing.T) {
	c := NewCollector()

	assert.Equal(t, 0.0, c.HitRatio())

	_, sampled := c.TakeWindowRatio()
	assert.False(t, sampled)
}

func TestCollector_TakeWindowRatio(t *testing.T) {
	c := NewCollector()

	c.RecordAccess("a", TierLocal, true)
	c.RecordAccess("a", TierLocal, true)
	c.RecordAccess("b", TierLocal, false)
	c.RecordAccess("b", TierLocal, false)

	ratio, sampled := c.TakeWindowRatio()
	assert.True(t, sampled)
	assert.Equal(t, 0.5, ratio)

	// the window resets on each call
	_, sampled = c.TakeWindowRatio()
	assert.False(t, sampled)

	c.RecordAccess("a", TierLocal, true)

	ratio, sampled = c.TakeWindowRatio()
	assert.True(t, sampled)
	assert.Equal(t, 1.0, ratio)
}

func TestCollector_Trend(t *testing.T) {
	c := NewCollector()

	_, ok := c.TrendAverage()
	assert.False(t, ok)

	c.RecordRatioSample(0.5)
	c.RecordRatioSample(0.7)

	average, ok := c.TrendAverage()
	assert.True(t, ok)
	assert.Equal(t, 0.6, average)

	// the trend keeps only the trailing window
	for range constants.TrendWindow {
		c.RecordRatioSample(1.0)
	}

	average, ok = c.TrendAverage()
	assert.True(t, ok)
	assert.Equal(t, 1.0, average)
}

func TestCollector_TopKeys(t *testing.T) {
	c := NewCollector()

	for range 3 {
		c.RecordAccess("hot", TierLocal, true)
	}

	for range 2 {
		c.RecordAccess("warm", TierLocal, true)
	}

	// misses count as demand too
	c.RecordAccess("cold", TierLocal, false)

	keys := c.TopKeys(2)
	assert.Equal(t, []string{"hot", "warm"}, keys)

	keys = c.TopKeys(10)
	assert.Equal(t, []string{"hot", "warm", "cold"}, keys)

	assert.Nil(t, c.TopKeys(0))
}

func TestCollector_PruneFrequencies(t *testing.T) {
	c := NewCollector()

	c.RecordAccess("stale", TierLocal, true)
	c.RecordAccess("fresh", TierLocal, true)

	// nothing has been idle a full day yet
	removed := c.PruneFrequencies(24 * time.Hour)
	assert.Equal(t, 0, removed)

	// a zero cutoff treats everything recorded before now as idle
	time.Sleep(5 * time.Millisecond)

	removed = c.PruneFrequencies(0)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, len(c.TopKeys(10)))
}

func TestCollector_Latency(t *testing.T) {
	c := NewCollector()

	assert.Equal(t, 0.0, c.LatencyMean())
	assert.Equal(t, 0.0, c.LatencyPercentile(0.95))

	for i := 1; i <= 100; i++ {
		c.RecordLatency(time.Duration(i) * time.Microsecond)
	}

	mean := c.LatencyMean()
	assert.Equal(t, 50500.0, mean)

	p95 := c.LatencyPercentile(0.95)
	assert.Equal(t, 96000.0, p95)
}

func TestCollector_LatencyRingWraps(t *testing.T) {
	c := NewCollector()

	// overfill the ring; only the newest samples survive
	for range constants.LatencySampleCap {
		c.RecordLatency(time.Millisecond)
	}

	for range constants.LatencySampleCap {
		c.RecordLatency(2 * time.Millisecond)
	}

	assert.Equal(t, float64(2*time.Millisecond), c.LatencyMean())
}

func TestCollector_StructuralCounters(t *testing.T) {
	c := NewCollector()

	c.RecordInsert()
	c.RecordInsert()
	c.RecordEviction()
	c.RecordExpiration()
	c.RecordInvalidations(3)
	c.RecordInvalidations(0)
	c.RecordDistributedError()

	snapshot := c.Snapshot()
	assert.Equal(t, uint64(2), snapshot.Inserts)
	assert.Equal(t, uint64(1), snapshot.Evictions)
	assert.Equal(t, uint64(1), snapshot.Expirations)
	assert.Equal(t, uint64(3), snapshot.Invalidations)
	assert.Equal(t, uint64(1), snapshot.DistributedErrors)
	assert.Equal(t, uint64(1), c.DistributedErrors())
}
