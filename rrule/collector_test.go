package rrule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func feed(c *collector, instants ...time.Time) {
	for _, t := range instants {
		if !c.accept(t) {
			return
		}
	}
}

func TestBetweenCollectorBounds(t *testing.T) {
	a, b, cc, d := dt(2024, 1, 1, 0, 0, 0), dt(2024, 1, 2, 0, 0, 0), dt(2024, 1, 3, 0, 0, 0), dt(2024, 1, 4, 0, 0, 0)

	col := newBetweenCollector(a, d, false, nil)
	feed(col, a, b, cc, d)
	assert.Equal(t, []time.Time{b, cc}, col.dates())

	col = newBetweenCollector(a, d, true, nil)
	feed(col, a, b, cc, d)
	assert.Equal(t, []time.Time{a, b, cc, d}, col.dates())
}

func TestBetweenCollectorStopsPastUpperBound(t *testing.T) {
	a, b := dt(2024, 1, 1, 0, 0, 0), dt(2024, 1, 2, 0, 0, 0)

	col := newBetweenCollector(a, b, false, nil)
	assert.True(t, col.accept(a))
	assert.True(t, col.accept(b.Add(-time.Second)))
	assert.False(t, col.accept(b), "reaching the bound should stop the run")
}

func TestBeforeCollectorKeepsLatest(t *testing.T) {
	a, b, cc := dt(2024, 1, 1, 0, 0, 0), dt(2024, 1, 2, 0, 0, 0), dt(2024, 1, 3, 0, 0, 0)

	col := newBeforeCollector(cc, false)
	feed(col, a, b, cc)
	got, ok := col.instant().Get()
	assert.True(t, ok)
	assert.Equal(t, b, got)

	col = newBeforeCollector(cc, true)
	feed(col, a, b, cc)
	got, ok = col.instant().Get()
	assert.True(t, ok)
	assert.Equal(t, cc, got)
}

func TestAfterCollectorStopsOnFirstHit(t *testing.T) {
	a, b := dt(2024, 1, 1, 0, 0, 0), dt(2024, 1, 2, 0, 0, 0)

	col := newAfterCollector(a, false)
	assert.True(t, col.accept(a), "instant equal to the bound is skipped")
	assert.False(t, col.accept(b), "first hit ends the run")
	got, ok := col.instant().Get()
	assert.True(t, ok)
	assert.Equal(t, b, got)
}

func TestCollectorEmptyResult(t *testing.T) {
	col := newBeforeCollector(dt(2024, 1, 1, 0, 0, 0), true)
	assert.True(t, col.instant().IsAbsent())

	all := newAllCollector(nil)
	assert.Empty(t, all.dates())
}

func TestCollectorCallbackVeto(t *testing.T) {
	a, b, cc := dt(2024, 1, 1, 0, 0, 0), dt(2024, 1, 2, 0, 0, 0), dt(2024, 1, 3, 0, 0, 0)

	col := newAllCollector(func(_ time.Time, n int) bool { return n < 2 })
	feed(col, a, b, cc)
	assert.Equal(t, []time.Time{a, b}, col.dates())
}
