package rrule

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"
)

// queryCache memoizes query results per rule instance. Entries live as
// long as the instance; there is no eviction. All reads and writes are
// mutex-serialized, and sequences are copied at every boundary so that
// caller mutation cannot corrupt cached state and vice versa.
type queryCache struct {
	mu      sync.Mutex
	all     []time.Time
	hasAll  bool
	lists   map[string][]time.Time
	singles map[string]mo.Option[time.Time]
}

func newQueryCache() *queryCache {
	return &queryCache{
		lists:   make(map[string][]time.Time),
		singles: make(map[string]mo.Option[time.Time]),
	}
}

// cacheKey derives a stable key from the query kind and arguments.
func cacheKey(kind queryKind, a, b time.Time, inc bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%t", kind, a.Format(time.RFC3339Nano), b.Format(time.RFC3339Nano), inc)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *queryCache) getAll() ([]time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasAll {
		return nil, false
	}
	return copyDates(c.all), true
}

func (c *queryCache) putAll(dates []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = copyDates(dates)
	c.hasAll = true
}

// getBetween returns a cached bounded query, synthesizing it from a
// cached full sequence when possible. Synthesis replays the sequence
// through a fresh collector, so it is observably identical to a direct
// enumeration.
func (c *queryCache) getBetween(after, before time.Time, inc bool) ([]time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(queryBetween, after, before, inc)
	if dates, ok := c.lists[key]; ok {
		return copyDates(dates), true
	}
	if c.hasAll {
		col := newBetweenCollector(after, before, inc, nil)
		replay(c.all, col)
		c.lists[key] = copyDates(col.dates())
		return copyDates(col.dates()), true
	}
	return nil, false
}

func (c *queryCache) putBetween(after, before time.Time, inc bool, dates []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[cacheKey(queryBetween, after, before, inc)] = copyDates(dates)
}

// getSingle serves the before/after queries, again synthesizing from a
// cached full sequence on a miss.
func (c *queryCache) getSingle(kind queryKind, dt time.Time, inc bool) (mo.Option[time.Time], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(kind, dt, time.Time{}, inc)
	if v, ok := c.singles[key]; ok {
		return v, true
	}
	if c.hasAll {
		var col *collector
		if kind == queryBefore {
			col = newBeforeCollector(dt, inc)
		} else {
			col = newAfterCollector(dt, inc)
		}
		replay(c.all, col)
		v := col.instant()
		c.singles[key] = v
		return v, true
	}
	return mo.None[time.Time](), false
}

func (c *queryCache) putSingle(kind queryKind, dt time.Time, inc bool, v mo.Option[time.Time]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.singles[cacheKey(kind, dt, time.Time{}, inc)] = v
}

func replay(dates []time.Time, col *collector) {
	for _, t := range dates {
		if !col.accept(t) {
			break
		}
	}
}

func copyDates(dates []time.Time) []time.Time {
	if dates == nil {
		return nil
	}
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out
}
