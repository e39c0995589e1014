package stats

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyp3rd/credcache/internal/constants"
)

// Collector gathers cache statistics. Counter recording uses atomics so the
// request path never blocks; the bounded histories and the frequency table are
// guarded by their own small mutexes, independent of the store's shard locks.
type Collector struct {
	hits              atomic.Uint64
	misses            atomic.Uint64
	localHits         atomic.Uint64
	negativeHits      atomic.Uint64
	distributedHits   atomic.Uint64
	inserts           atomic.Uint64
	evictions         atomic.Uint64
	expirations       atomic.Uint64
	invalidations     atomic.Uint64
	distributedErrors atomic.Uint64

	// baseline of the trailing window consumed by the adaptive controller
	windowHits   atomic.Uint64
	windowMisses atomic.Uint64

	latencyMu  sync.Mutex
	latency    []int64 // ring buffer of latency samples in nanoseconds
	latencyIdx int
	latencyLen int

	historyMu   sync.Mutex
	trend       []float64 // last ratio samples recorded by the controller
	hourly      []ratioBucket
	hourlyStart time.Time

	freqMu sync.Mutex
	freq   map[string]*frequency
}

// ratioBucket accumulates hits and misses for one hour of history.
type ratioBucket struct {
	hits   uint64
	misses uint64
}

// frequency tracks how often and how recently a key has been accessed.
type frequency struct {
	count      uint64
	lastAccess time.Time
}

// NewCollector creates a new stats collector with the default ring capacities.
func NewCollector() *Collector {
	return &Collector{
		latency: make([]int64, constants.LatencySampleCap),
		trend:   make([]float64, 0, constants.TrendWindow),
		hourly:  make([]ratioBucket, 0, constants.HitRatioBucketCap),
		freq:    make(map[string]*frequency),
	}
}

// RecordAccess records the outcome of one lookup. A hit is attributed to the
// tier that served it; the frequency table is updated either way so the cache
// warmer can observe demand for keys that keep missing.
func (c *Collector) RecordAccess(key string, tier Tier, hit bool) {
	if hit {
		c.hits.Add(1)

		switch tier {
		case TierLocal:
			c.localHits.Add(1)
		case TierNegative:
			c.negativeHits.Add(1)
		case TierDistributed:
			c.distributedHits.Add(1)
		}
	} else {
		c.misses.Add(1)
	}

	c.recordFrequency(key)
	c.recordHourly(hit)
}

// RecordLatency adds one sample to the rolling latency ring.
func (c *Collector) RecordLatency(elapsed time.Duration) {
	c.latencyMu.Lock()
	defer c.latencyMu.Unlock()

	c.latency[c.latencyIdx] = elapsed.Nanoseconds()
	c.latencyIdx = (c.latencyIdx + 1) % len(c.latency)

	if c.latencyLen < len(c.latency) {
		c.latencyLen++
	}
}

// RecordInsert increments the insert counter.
func (c *Collector) RecordInsert() {
	c.inserts.Add(1)
}

// RecordEviction increments the eviction counter.
func (c *Collector) RecordEviction() {
	c.evictions.Add(1)
}

// RecordExpiration increments the lazy-expiry counter.
func (c *Collector) RecordExpiration() {
	c.expirations.Add(1)
}

// RecordInvalidations adds the number of entries removed by an invalidation call.
func (c *Collector) RecordInvalidations(count int) {
	if count <= 0 {
		return
	}

	c.invalidations.Add(uint64(count))
}

// RecordDistributedError increments the distributed tier error counter.
func (c *Collector) RecordDistributedError() {
	c.distributedErrors.Add(1)
}

// DistributedErrors returns the number of distributed tier failures absorbed so far.
func (c *Collector) DistributedErrors() uint64 {
	return c.distributedErrors.Load()
}

// HitRatio returns hits / (hits + misses) over the process lifetime.
func (c *Collector) HitRatio() float64 {
	hits := c.hits.Load()
	misses := c.misses.Load()

	total := hits + misses
	if total == 0 {
		return 0
	}

	return float64(hits) / float64(total)
}

// TakeWindowRatio returns the hit ratio accumulated since the previous call
// and resets the window baseline. It reports false when no lookups happened
// in the window.
func (c *Collector) TakeWindowRatio() (float64, bool) {
	hits := c.hits.Load()
	misses := c.misses.Load()

	deltaHits := hits - c.windowHits.Swap(hits)
	deltaMisses := misses - c.windowMisses.Swap(misses)

	total := deltaHits + deltaMisses
	if total == 0 {
		return 0, false
	}

	return float64(deltaHits) / float64(total), true
}

// RecordRatioSample appends one hit-ratio sample to the trend history consumed
// by the adaptive controller, keeping only the trailing window.
func (c *Collector) RecordRatioSample(ratio float64) {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	if len(c.trend) == constants.TrendWindow {
		c.trend = append(c.trend[1:], ratio)

		return
	}

	c.trend = append(c.trend, ratio)
}

// TrendAverage returns the average of the recorded trend samples. It reports
// false when no samples have been recorded yet.
func (c *Collector) TrendAverage() (float64, bool) {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	if len(c.trend) == 0 {
		return 0, false
	}

	var sum float64
	for _, ratio := range c.trend {
		sum += ratio
	}

	return sum / float64(len(c.trend)), true
}

// TopKeys returns the k most frequently accessed keys, most frequent first.
func (c *Collector) TopKeys(k int) []string {
	if k <= 0 {
		return nil
	}

	c.freqMu.Lock()

	type keyFreq struct {
		key   string
		count uint64
	}

	ranked := make([]keyFreq, 0, len(c.freq))
	for key, f := range c.freq {
		ranked = append(ranked, keyFreq{key: key, count: f.count})
	}

	c.freqMu.Unlock()

	slices.SortFunc(ranked, func(a, b keyFreq) int {
		switch {
		case a.count > b.count:
			return -1
		case a.count < b.count:
			return 1
		default:
			// stable order for equal counts
			return strings.Compare(a.key, b.key)
		}
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	keys := make([]string, len(ranked))
	for i, kf := range ranked {
		keys[i] = kf.key
	}

	return keys
}

// PruneFrequencies drops frequency entries idle longer than the cutoff and
// returns the number of entries removed.
func (c *Collector) PruneFrequencies(cutoff time.Duration) int {
	deadline := time.Now().Add(-cutoff)

	c.freqMu.Lock()
	defer c.freqMu.Unlock()

	removed := 0

	for key, f := range c.freq {
		if f.lastAccess.Before(deadline) {
			delete(c.freq, key)

			removed++
		}
	}

	return removed
}

// Snapshot returns a point-in-time copy of the collected statistics.
// EntryCount and TTL are owned by the cache handle and left zero here.
func (c *Collector) Snapshot() Snapshot {
	snapshot := Snapshot{
		Hits:              c.hits.Load(),
		Misses:            c.misses.Load(),
		LocalHits:         c.localHits.Load(),
		NegativeHits:      c.negativeHits.Load(),
		DistributedHits:   c.distributedHits.Load(),
		Inserts:           c.inserts.Load(),
		Evictions:         c.evictions.Load(),
		Expirations:       c.expirations.Load(),
		Invalidations:     c.invalidations.Load(),
		DistributedErrors: c.distributedErrors.Load(),
		HitRatio:          c.HitRatio(),
		LatencyMeanNS:     c.LatencyMean(),
		LatencyP95NS:      c.LatencyPercentile(0.95),
	}

	c.historyMu.Lock()

	snapshot.HitRatioHistory = make([]float64, 0, len(c.hourly))
	for _, bucket := range c.hourly {
		total := bucket.hits + bucket.misses
		if total == 0 {
			snapshot.HitRatioHistory = append(snapshot.HitRatioHistory, 0)

			continue
		}

		snapshot.HitRatioHistory = append(snapshot.HitRatioHistory, float64(bucket.hits)/float64(total))
	}

	c.historyMu.Unlock()

	return snapshot
}

// LatencyMean returns the mean of the rolling latency samples in nanoseconds.
func (c *Collector) LatencyMean() float64 {
	c.latencyMu.Lock()
	defer c.latencyMu.Unlock()

	if c.latencyLen == 0 {
		return 0
	}

	var sum int64
	for _, sample := range c.latency[:c.latencyLen] {
		sum += sample
	}

	return float64(sum) / float64(c.latencyLen)
}

// LatencyPercentile returns the pth percentile of the rolling latency samples
// in nanoseconds.
func (c *Collector) LatencyPercentile(percentile float64) float64 {
	c.latencyMu.Lock()
	defer c.latencyMu.Unlock()

	if c.latencyLen == 0 {
		return 0
	}

	samples := make([]int64, c.latencyLen)
	copy(samples, c.latency[:c.latencyLen])
	slices.Sort(samples)

	index := int(float64(len(samples)) * percentile)
	if index >= len(samples) {
		index = len(samples) - 1
	}

	return float64(samples[index])
}

// recordFrequency bumps the per-key access frequency. New keys are dropped
// when the table is at capacity; pruning during maintenance frees slots.
func (c *Collector) recordFrequency(key string) {
	now := time.Now()

	c.freqMu.Lock()
	defer c.freqMu.Unlock()

	if f, ok := c.freq[key]; ok {
		f.count++
		f.lastAccess = now

		return
	}

	if len(c.freq) >= constants.FrequencyTableCap {
		return
	}

	c.freq[key] = &frequency{count: 1, lastAccess: now}
}

// recordHourly accumulates the outcome into the current hourly bucket,
// rolling the ring forward when the hour changes.
func (c *Collector) recordHourly(hit bool) {
	now := time.Now().Truncate(time.Hour)

	c.historyMu.Lock()
	defer c.historyMu.Unlock()

	if len(c.hourly) == 0 || now.After(c.hourlyStart) {
		c.hourlyStart = now

		if len(c.hourly) == constants.HitRatioBucketCap {
			c.hourly = append(c.hourly[1:], ratioBucket{})
		} else {
			c.hourly = append(c.hourly, ratioBucket{})
		}
	}

	bucket := &c.hourly[len(c.hourly)-1]
	if hit {
		bucket.hits++
	} else {
		bucket.misses++
	}
}
