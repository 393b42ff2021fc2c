package rrule

import (
	"sort"
	"time"

	"github.com/cyp0633/librecur/internal/calindex"
	"github.com/cyp0633/librecur/internal/dtutil"
)

// iterate runs one enumeration of the rule, delivering accepted
// instants in increasing order to res until the rule's bounds or the
// collector terminate the run. The cursor state (year..second,
// weekday, the calendar index) is owned exclusively by this run.
func (r *RRule) iterate(res *collector) {
	opts := r.options
	dtstart := opts.dtstart

	y, mon, day := dtstart.Date()
	year, month := y, int(mon)
	hour, minute, second := dtstart.Clock()
	weekday := dtutil.WeekdayOf(dtstart)

	ii := calindex.New(opts.indexConfig())
	ii.Rebuild(year, month)

	var getdayset func(int, int, int) ([]int, int, int)
	switch opts.freq {
	case Yearly:
		getdayset = ii.YearDaySet
	case Monthly:
		getdayset = ii.MonthDaySet
	case Weekly:
		getdayset = ii.WeekDaySet
	default:
		getdayset = ii.DayDaySet
	}

	var timeset []dtutil.TimeOfDay
	var gettimeset func(int, int, int) []dtutil.TimeOfDay
	if opts.freq < Hourly {
		timeset = opts.timeset
	} else {
		switch opts.freq {
		case Hourly:
			gettimeset = ii.HourTimeSet
		case Minutely:
			gettimeset = ii.MinuteTimeSet
		default:
			gettimeset = ii.SecondTimeSet
		}
		// The start instant's own time of day may already be excluded
		// at this frequency; the advance step then walks to the first
		// admitted time.
		if (len(opts.byhour) > 0 && !containsInt(opts.byhour, hour)) ||
			(opts.freq >= Minutely && len(opts.byminute) > 0 && !containsInt(opts.byminute, minute)) ||
			(opts.freq >= Secondly && len(opts.bysecond) > 0 && !containsInt(opts.bysecond, second)) {
			timeset = nil
		} else {
			timeset = gettimeset(hour, minute, second)
		}
	}

	count := opts.count
	hasUntil := !opts.until.IsZero()
	var kept []int

	for {
		dayset, start, end := getdayset(year, month, day)

		// Filtering: a candidate day is rejected if it fails any
		// active constraint family. filtered tracks the status of the
		// final day of the window; the sub-daily advance uses it to
		// fast-forward over fully filtered periods.
		kept = kept[:0]
		filtered := false
		for i := start; i < end; i++ {
			d := dayset[i]
			filtered = (len(opts.bymonth) > 0 && !containsInt(opts.bymonth, ii.Mmask[d])) ||
				(len(opts.byweekno) > 0 && !ii.Wnomask[d]) ||
				(len(opts.byweekday) > 0 && !containsInt(opts.byweekday, ii.Wdaymask[d])) ||
				(len(opts.bynweekday) > 0 && !ii.Nwdaymask[d]) ||
				(opts.byeaster != nil && !ii.IsEasterDay(d)) ||
				((len(opts.bymonthday) > 0 || len(opts.bynmonthday) > 0) &&
					!containsInt(opts.bymonthday, ii.Mdaymask[d]) &&
					!containsInt(opts.bynmonthday, ii.Nmdaymask[d])) ||
				(len(opts.byyearday) > 0 &&
					((d < ii.Yearlen &&
						!containsInt(opts.byyearday, d+1) &&
						!containsInt(opts.byyearday, -ii.Yearlen+d)) ||
						(d >= ii.Yearlen &&
							!containsInt(opts.byyearday, d+1-ii.Yearlen) &&
							!containsInt(opts.byyearday, -ii.Nextyearlen+d-ii.Yearlen))))
			if !filtered {
				kept = append(kept, d)
			}
		}

		// Emission: retained days crossed with the time set, or the
		// set-position selection over the period's candidate list.
		if len(opts.bysetpos) > 0 && len(timeset) > 0 {
			for _, t := range setposInstants(opts, kept, timeset, ii) {
				if hasUntil && t.After(opts.until) {
					return
				}
				if !t.Before(dtstart) {
					if !res.accept(t) {
						return
					}
					if count > 0 {
						count--
						if count == 0 {
							return
						}
					}
				}
			}
		} else {
			for _, d := range kept {
				dy, dm, dd := dtutil.FromOrdinal(ii.Yearordinal + d)
				for _, tod := range timeset {
					t := time.Date(dy, dm, dd, tod.Hour, tod.Minute, tod.Second, 0, opts.loc)
					if hasUntil && t.After(opts.until) {
						return
					}
					if !t.Before(dtstart) {
						if !res.accept(t) {
							return
						}
						if count > 0 {
							count--
							if count == 0 {
								return
							}
						}
					}
				}
			}
		}

		// Advancing: step to the next period per frequency.
		fixday := false
		switch opts.freq {
		case Yearly:
			year += opts.interval
			if year > dtutil.MaxYear {
				return
			}
			ii.Rebuild(year, month)

		case Monthly:
			month += opts.interval
			if month > 12 {
				div, mod := dtutil.Divmod(month, 12)
				month = mod
				year += div
				if month == 0 {
					month = 12
					year--
				}
				if year > dtutil.MaxYear {
					return
				}
			}
			ii.Rebuild(year, month)

		case Weekly:
			if opts.wkst > weekday {
				day += -(weekday + 1 + (6 - opts.wkst)) + opts.interval*7
			} else {
				day += -(weekday - opts.wkst) + opts.interval*7
			}
			weekday = opts.wkst
			fixday = true

		case Daily:
			day += opts.interval
			fixday = true

		case Hourly:
			if filtered {
				// Jump to one step before the next day.
				hour += (23 - hour) / opts.interval * opts.interval
			}
			for {
				hour += opts.interval
				div, mod := dtutil.Divmod(hour, 24)
				if div != 0 {
					hour = mod
					day += div
					fixday = true
				}
				if len(opts.byhour) == 0 || containsInt(opts.byhour, hour) {
					break
				}
			}
			timeset = gettimeset(hour, minute, second)

		case Minutely:
			if filtered {
				minute += (1439 - (hour*60 + minute)) / opts.interval * opts.interval
			}
			for {
				minute += opts.interval
				div, mod := dtutil.Divmod(minute, 60)
				if div != 0 {
					minute = mod
					hour += div
					div, mod = dtutil.Divmod(hour, 24)
					if div != 0 {
						hour = mod
						day += div
						fixday = true
						filtered = false
					}
				}
				if (len(opts.byhour) == 0 || containsInt(opts.byhour, hour)) &&
					(len(opts.byminute) == 0 || containsInt(opts.byminute, minute)) {
					break
				}
			}
			timeset = gettimeset(hour, minute, second)

		case Secondly:
			if filtered {
				second += (86399 - (hour*3600 + minute*60 + second)) / opts.interval * opts.interval
			}
			for {
				second += opts.interval
				div, mod := dtutil.Divmod(second, 60)
				if div != 0 {
					second = mod
					minute += div
					div, mod = dtutil.Divmod(minute, 60)
					if div != 0 {
						minute = mod
						hour += div
						div, mod = dtutil.Divmod(hour, 24)
						if div != 0 {
							hour = mod
							day += div
							fixday = true
						}
					}
				}
				if (len(opts.byhour) == 0 || containsInt(opts.byhour, hour)) &&
					(len(opts.byminute) == 0 || containsInt(opts.byminute, minute)) &&
					(len(opts.bysecond) == 0 || containsInt(opts.bysecond, second)) {
					break
				}
			}
			timeset = gettimeset(hour, minute, second)
		}

		// A rule anchored to a day of month that the target month does
		// not have rolls forward month by month until the day fits.
		if fixday && day > 28 {
			daysinmonth := dtutil.DaysInMonth(year, month)
			if day > daysinmonth {
				for day > daysinmonth {
					day -= daysinmonth
					month++
					if month == 13 {
						month = 1
						year++
						if year > dtutil.MaxYear {
							return
						}
					}
					daysinmonth = dtutil.DaysInMonth(year, month)
				}
				ii.Rebuild(year, month)
			}
		}
	}
}

// setposInstants resolves the period's set-position constraints into
// concrete instants, deduplicated and sorted. A signed rank maps to a
// (day, time) pair over the filtered candidate list; a rank with no
// candidate behind it is skipped rather than treated as an error.
func setposInstants(opts *parsedOptions, kept []int, timeset []dtutil.TimeOfDay, ii *calindex.Index) []time.Time {
	var poslist []time.Time
	for _, pos := range opts.bysetpos {
		var daypos, timepos int
		if pos < 0 {
			daypos, timepos = dtutil.Divmod(pos, len(timeset))
		} else {
			daypos, timepos = dtutil.Divmod(pos-1, len(timeset))
		}
		idx := daypos
		if idx < 0 {
			idx += len(kept)
		}
		if idx < 0 || idx >= len(kept) {
			continue
		}
		d := kept[idx]
		tod := timeset[timepos]
		dy, dm, dd := dtutil.FromOrdinal(ii.Yearordinal + d)
		t := time.Date(dy, dm, dd, tod.Hour, tod.Minute, tod.Second, 0, opts.loc)
		if !containsTime(poslist, t) {
			poslist = append(poslist, t)
		}
	}
	sort.Slice(poslist, func(i, j int) bool { return poslist[i].Before(poslist[j]) })
	return poslist
}

// indexConfig derives the calendar index configuration for one run.
func (po *parsedOptions) indexConfig() calindex.Config {
	scope := calindex.ScopeYear
	if po.freq == Monthly {
		scope = calindex.ScopeMonth
	}
	return calindex.Config{
		Wkst:       po.wkst,
		Scope:      scope,
		Bymonth:    po.bymonth,
		Byweekno:   po.byweekno,
		Bynweekday: po.bynweekday,
		Byeaster:   po.byeaster,
		Byminute:   po.byminute,
		Bysecond:   po.bysecond,
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsTime(s []time.Time, t time.Time) bool {
	for _, x := range s {
		if x.Equal(t) {
			return true
		}
	}
	return false
}
