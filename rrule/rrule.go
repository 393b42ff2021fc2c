// Package rrule computes the occurrence set of an iCalendar recurrence
// rule (RFC 5545 RRULE): given a start instant and a rule, it produces
// the ordered sequence of instants satisfying the rule, answers
// bounded and nearest-occurrence queries against that sequence, and
// parses/serializes the rule to its canonical text form.
//
// The engine operates on naive local instants: times are interpreted
// through their wall-clock fields in the start instant's location, and
// no time-zone conversion is performed.
package rrule

import (
	"time"

	"github.com/samber/mo"
)

// RRule is an immutable recurrence rule. Construct it with New,
// NewNoCache or FromString; queries may be issued from multiple
// goroutines, since cache access is serialized internally and each
// cache miss runs its own enumeration.
type RRule struct {
	// OrigOptions preserves the specification the rule was built
	// from. String serializes it, and Clone rebuilds from it.
	OrigOptions Options

	options *parsedOptions
	cache   *queryCache
}

// New validates and normalizes the given specification into a rule
// with query memoization enabled.
func New(opt Options) (*RRule, error) {
	return newRRule(opt, true)
}

// NewNoCache is New without query memoization: every query performs a
// fresh enumeration.
func NewNoCache(opt Options) (*RRule, error) {
	return newRRule(opt, false)
}

func newRRule(opt Options, cached bool) (*RRule, error) {
	parsed, err := parseOptions(opt)
	if err != nil {
		return nil, err
	}
	r := &RRule{
		OrigOptions: cloneOptions(opt),
		options:     parsed,
	}
	if cached {
		r.cache = newQueryCache()
	}
	return r, nil
}

// DTStart returns the rule's normalized start instant.
func (r *RRule) DTStart() time.Time {
	return r.options.dtstart
}

// All returns every occurrence of the rule in increasing order. A rule
// without a count, an until bound or an inherently exhausting
// constraint never terminates; such rules should be queried through
// AllFunc or Between instead.
func (r *RRule) All() []time.Time {
	if r.cache != nil {
		if dates, ok := r.cache.getAll(); ok {
			return dates
		}
	}
	col := newAllCollector(nil)
	r.iterate(col)
	if r.cache != nil {
		r.cache.putAll(col.dates())
	}
	return col.dates()
}

// AllFunc is All driven by a callback: iter receives each occurrence
// and the number collected so far, and may return false to veto it and
// stop enumeration. Results are never cached.
func (r *RRule) AllFunc(iter IterFunc) []time.Time {
	col := newAllCollector(iter)
	r.iterate(col)
	return col.dates()
}

// Between returns the occurrences within (after, before), ordered.
// With inc, occurrences equal to either bound are included.
func (r *RRule) Between(after, before time.Time, inc bool) []time.Time {
	if r.cache != nil {
		if dates, ok := r.cache.getBetween(after, before, inc); ok {
			return dates
		}
	}
	col := newBetweenCollector(after, before, inc, nil)
	r.iterate(col)
	if r.cache != nil {
		r.cache.putBetween(after, before, inc, col.dates())
	}
	return col.dates()
}

// BetweenFunc is Between driven by a callback; see AllFunc. Results
// are never cached.
func (r *RRule) BetweenFunc(after, before time.Time, inc bool, iter IterFunc) []time.Time {
	col := newBetweenCollector(after, before, inc, iter)
	r.iterate(col)
	return col.dates()
}

// Before returns the last occurrence at or before dt (inc) or strictly
// before dt, or None when there is none.
func (r *RRule) Before(dt time.Time, inc bool) mo.Option[time.Time] {
	if r.cache != nil {
		if v, ok := r.cache.getSingle(queryBefore, dt, inc); ok {
			return v
		}
	}
	col := newBeforeCollector(dt, inc)
	r.iterate(col)
	v := col.instant()
	if r.cache != nil {
		r.cache.putSingle(queryBefore, dt, inc, v)
	}
	return v
}

// After returns the first occurrence at or after dt (inc) or strictly
// after dt, or None when there is none.
func (r *RRule) After(dt time.Time, inc bool) mo.Option[time.Time] {
	if r.cache != nil {
		if v, ok := r.cache.getSingle(queryAfter, dt, inc); ok {
			return v
		}
	}
	col := newAfterCollector(dt, inc)
	r.iterate(col)
	v := col.instant()
	if r.cache != nil {
		r.cache.putSingle(queryAfter, dt, inc, v)
	}
	return v
}

// Count returns the number of occurrences, enumerating the whole rule
// if it has not been enumerated before.
func (r *RRule) Count() int {
	return len(r.All())
}

// Clone returns a fresh rule built from the origin specification.
// Cache state is never carried over.
func (r *RRule) Clone() *RRule {
	clone, err := newRRule(r.OrigOptions, r.cache != nil)
	if err != nil {
		// The origin options already passed validation once.
		panic(err)
	}
	return clone
}

func cloneOptions(opt Options) Options {
	out := opt
	out.Bysetpos = copyInts(opt.Bysetpos)
	out.Bymonth = copyInts(opt.Bymonth)
	out.Bymonthday = copyInts(opt.Bymonthday)
	out.Byyearday = copyInts(opt.Byyearday)
	out.Byweekno = copyInts(opt.Byweekno)
	out.Byweekday = copyWeekdays(opt.Byweekday)
	out.Byhour = copyInts(opt.Byhour)
	out.Byminute = copyInts(opt.Byminute)
	out.Bysecond = copyInts(opt.Bysecond)
	if opt.Byeaster != nil {
		e := *opt.Byeaster
		out.Byeaster = &e
	}
	return out
}
