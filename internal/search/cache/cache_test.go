package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mihirdhamankar/searchlite/pkg/metrics"
)

func TestHitMissCounters(t *testing.T) {
	m := metrics.New()
	c := &QueryCache{metrics: m}

	c.recordHit()
	c.recordMiss()
	c.recordMiss()

	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("Stats() = (%d, %d), want (1, 2)", hits, misses)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache_hits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal); got != 2 {
		t.Errorf("cache_misses_total = %v, want 2", got)
	}
}

func TestCountersWithoutMetrics(t *testing.T) {
	var c QueryCache
	c.recordHit()
	c.recordMiss()
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (1, 1)", hits, misses)
	}
}
