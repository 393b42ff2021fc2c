package rrule

import (
	"time"

	"github.com/samber/mo"
)

type queryKind int

const (
	queryAll queryKind = iota
	queryBetween
	queryBefore
	queryAfter
)

// IterFunc is the optional per-occurrence callback of the ...Func query
// forms. It receives each candidate instant and the number of instants
// collected so far; returning false vetoes the instant and stops
// enumeration.
type IterFunc func(t time.Time, n int) bool

// collector receives instants from an enumeration run and decides,
// per query semantics, which to keep and when to stop the run.
// Accept returning false is the early-termination signal.
type collector struct {
	kind     queryKind
	min, max time.Time
	hasMin   bool
	hasMax   bool
	inc      bool
	iterator IterFunc
	found    []time.Time
}

func newAllCollector(iterator IterFunc) *collector {
	return &collector{kind: queryAll, iterator: iterator}
}

func newBetweenCollector(after, before time.Time, inc bool, iterator IterFunc) *collector {
	return &collector{
		kind:     queryBetween,
		min:      after,
		max:      before,
		hasMin:   true,
		hasMax:   true,
		inc:      inc,
		iterator: iterator,
	}
}

func newBeforeCollector(dt time.Time, inc bool) *collector {
	return &collector{kind: queryBefore, max: dt, hasMax: true, inc: inc}
}

func newAfterCollector(dt time.Time, inc bool) *collector {
	return &collector{kind: queryAfter, min: dt, hasMin: true, inc: inc}
}

// accept processes one instant; instants arrive in increasing order.
func (c *collector) accept(t time.Time) bool {
	switch c.kind {
	case queryBetween:
		if c.tooEarly(t) {
			return true
		}
		if c.tooLate(t) {
			return false
		}
	case queryBefore:
		if c.tooLate(t) {
			return false
		}
	case queryAfter:
		if c.tooEarly(t) {
			return true
		}
		c.add(t)
		return false
	}
	return c.add(t)
}

func (c *collector) tooEarly(t time.Time) bool {
	if !c.hasMin {
		return false
	}
	if c.inc {
		return t.Before(c.min)
	}
	return !t.After(c.min)
}

func (c *collector) tooLate(t time.Time) bool {
	if !c.hasMax {
		return false
	}
	if c.inc {
		return t.After(c.max)
	}
	return !t.Before(c.max)
}

func (c *collector) add(t time.Time) bool {
	if c.iterator != nil && !c.iterator(t, len(c.found)) {
		return false
	}
	switch c.kind {
	case queryBefore, queryAfter:
		// Only the best candidate matters for the single-instant
		// queries; keep the latest accepted one.
		c.found = append(c.found[:0], t)
	default:
		c.found = append(c.found, t)
	}
	return true
}

// dates returns the collected sequence for all/between queries.
func (c *collector) dates() []time.Time {
	return c.found
}

// instant returns the single-instant result for before/after queries.
func (c *collector) instant() mo.Option[time.Time] {
	if len(c.found) == 0 {
		return mo.None[time.Time]()
	}
	return mo.Some(c.found[len(c.found)-1])
}
