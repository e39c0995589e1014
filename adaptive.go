package credcache

const (
	// adaptiveDropFactor marks a relative hit-ratio drop worth reacting to:
	// a current ratio below 90% of the trailing average widens the window.
	adaptiveDropFactor = 0.9
	// adaptiveHighWatermark is the hit ratio above which the window is
	// considered wider than demand requires and can shrink toward the floor.
	adaptiveHighWatermark = 0.95
)

// adaptiveTick recomputes the default retention window from the hit-ratio
// trend. The tuning is advisory only: it never evicts existing entries early,
// it only changes the TTL applied to future writes.
func (c *Cache) adaptiveTick() {
	current, sampled := c.collector.TakeWindowRatio()
	if !sampled {
		// No lookups in the window; nothing to learn from.
		return
	}

	average, hasTrend := c.collector.TrendAverage()

	// The current ratio joins the trend after the comparison, so one bad
	// window is judged against history rather than against itself.
	defer c.collector.RecordRatioSample(current)

	ttl := c.currentTTL()

	switch {
	case hasTrend && current < average*adaptiveDropFactor:
		// Hit ratio falling: entries are being lost before they are reused.
		c.setTTL(ttl * 2)
		c.logger.Printf("adaptive: hit ratio %.3f below trend %.3f, ttl %s -> %s", current, average, ttl, c.currentTTL())

	case current > adaptiveHighWatermark && ttl > c.adaptiveFloor:
		// Hit ratio saturated: reclaim memory by shrinking the window.
		c.setTTL(ttl / 2)
		c.logger.Printf("adaptive: hit ratio %.3f saturated, ttl %s -> %s", current, ttl, c.currentTTL())
	}
}
