package catalogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildS4() *Catalogue {
	c := New()
	c.AddStop("s1", 55.0, 37.0)
	c.AddStop("s2", 55.0001, 37.0001)
	c.AddStop("s3", 55.0002, 37.0002)
	// only one direction defined for each consecutive pair
	c.AddDistance("s1", "s2", 1000)
	c.AddDistance("s2", "s3", 1000)
	// non-roundtrip: stored as the palindrome of [s1, s2, s3]
	c.AddBus("B", []string{"s1", "s2", "s3", "s2", "s1"}, false)
	return c
}

func TestBusStatistics(t *testing.T) {
	t.Run("distance symmetry fallback: missing reverse leg uses forward value", func(t *testing.T) {
		c := buildS4()
		stats, ok := c.BusStatistics("B")
		assert.True(t, ok)
		assert.Equal(t, 5, stats.StopsNum)
		assert.Equal(t, 3, stats.UniqStopsNum)
		// four consecutive legs: s1->s2 (1000, fwd defined), s2->s3 (1000, fwd
		// defined), s3->s2 (no s3->s2, falls back to s2->s3=1000), s2->s1
		// (no s2->s1, falls back to s1->s2=1000)
		assert.Equal(t, 4000, stats.RoadLength)
	})

	t.Run("curvature is at least one for a positive geographic length", func(t *testing.T) {
		c := buildS4()
		stats, _ := c.BusStatistics("B")
		assert.GreaterOrEqual(t, stats.Curvature, 1.0-1e-9)
	})

	t.Run("unknown bus returns not found", func(t *testing.T) {
		c := New()
		_, ok := c.BusStatistics("nope")
		assert.False(t, ok)
	})

	t.Run("statistics memoise across repeated calls", func(t *testing.T) {
		c := buildS4()
		first, _ := c.BusStatistics("B")
		second, _ := c.BusStatistics("B")
		assert.Equal(t, first, second)
	})
}

func TestStopListing(t *testing.T) {
	c := New()
	c.AddStop("served", 1, 1)
	c.AddStop("lonely", 2, 2)
	c.AddBus("X", []string{"served"}, true)

	t.Run("unknown stop is not found", func(t *testing.T) {
		found, buses := c.StopListing("ghost")
		assert.False(t, found)
		assert.Nil(t, buses)
	})

	t.Run("known stop with no buses is found but empty", func(t *testing.T) {
		found, buses := c.StopListing("lonely")
		assert.True(t, found)
		assert.Empty(t, buses)
	})

	t.Run("known stop with buses is sorted lexicographically", func(t *testing.T) {
		c2 := New()
		c2.AddStop("hub", 1, 1)
		c2.AddBus("zzz", []string{"hub"}, true)
		c2.AddBus("aaa", []string{"hub"}, true)
		c2.AddBus("mmm", []string{"hub"}, true)

		found, buses := c2.StopListing("hub")
		assert.True(t, found)
		assert.Equal(t, []string{"aaa", "mmm", "zzz"}, buses)
	})
}

func TestAddDistanceIgnoresUnknownEndpoints(t *testing.T) {
	c := New()
	c.AddStop("known", 1, 1)
	c.AddDistance("known", "ghost", 500)
	c.AddDistance("ghost", "known", 500)

	from, _ := c.FindStop("known")
	assert.Equal(t, 0, c.Distance(from, from))
}

func TestAllNamesAreSorted(t *testing.T) {
	c := New()
	c.AddStop("zeta", 1, 1)
	c.AddStop("alpha", 2, 2)
	c.AddBus("zbus", []string{"zeta", "alpha"}, true)
	c.AddBus("abus", []string{"alpha"}, true)

	assert.Equal(t, []string{"alpha", "zeta"}, c.AllStopNamesWithBuses())
	assert.Equal(t, []string{"abus", "zbus"}, c.AllBusNames())
}
