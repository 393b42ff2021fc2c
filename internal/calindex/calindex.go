// Package calindex maintains the per-period calendar masks the
// recurrence enumerator filters against. An Index is rebuilt whenever
// enumeration advances into a new year or month; every mask is indexed
// by ordinal day within the extended year (year length plus one spill
// week into January of the following year).
package calindex

import (
	"sort"

	"github.com/cyp0633/librecur/internal/dtutil"
)

// Scope selects how ordinal-weekday ("Nth weekday") ranges are derived
// during a rebuild.
type Scope int

const (
	// ScopeYear computes ordinal weekdays over the whole year, or over
	// each requested month when a month filter is present.
	ScopeYear Scope = iota
	// ScopeMonth computes ordinal weekdays within the current month.
	ScopeMonth
)

// WeekdaySpec is one "Nth weekday of the period" constraint entry.
// N is a signed rank; -1 is the last such weekday of the period.
type WeekdaySpec struct {
	Weekday int
	N       int
}

// Config carries the rule fields the index needs to build its masks.
// All fields are read-only after construction.
type Config struct {
	Wkst       int // week start weekday, Monday = 0
	Scope      Scope
	Bymonth    []int
	Byweekno   []int
	Bynweekday []WeekdaySpec
	Byeaster   *int // day offset from Easter Sunday

	// Time-of-day sets for the sub-daily time-set accessors.
	Byminute []int
	Bysecond []int
}

// Index is the live calendar snapshot for one enumeration run. It must
// not be shared across concurrent runs.
type Index struct {
	cfg Config

	lastYear  int
	lastMonth int

	Yearlen     int
	Nextyearlen int
	Yearordinal int // proleptic ordinal of January 1st
	Yearweekday int // weekday of January 1st

	Mmask     []int // month number per day
	Mdaymask  []int // day of month per day
	Nmdaymask []int // negative day of month per day
	Wdaymask  []int // weekday per day
	Mrange    []int // cumulative day offset per month boundary

	Wnomask   []bool // ISO week membership, nil unless Byweekno is set
	Nwdaymask []bool // ordinal-weekday membership, nil unless Bynweekday is set

	easterYday int
	hasEaster  bool
}

// New returns an Index for the given rule configuration. Rebuild must
// be called before any accessor.
func New(cfg Config) *Index {
	return &Index{cfg: cfg, lastYear: -1, lastMonth: -1}
}

// Rebuild recomputes the masks for the given year and month. It is
// idempotent: rebuilding with unchanged arguments only refreshes the
// Easter mask, which depends on nothing else.
func (ix *Index) Rebuild(year, month int) {
	if year != ix.lastYear {
		ix.rebuildYear(year)
	}
	if len(ix.cfg.Bynweekday) > 0 && (month != ix.lastMonth || year != ix.lastYear) {
		ix.rebuildMonth(year, month)
	}
	if ix.cfg.Byeaster != nil {
		em, ed := dtutil.Easter(year)
		ix.easterYday = dtutil.ToOrdinal(year, em, ed) + *ix.cfg.Byeaster - ix.Yearordinal
		ix.hasEaster = true
	}
	ix.lastYear = year
	ix.lastMonth = month
}

func (ix *Index) rebuildYear(year int) {
	ix.Yearlen = dtutil.YearLen(year)
	ix.Nextyearlen = dtutil.YearLen(year + 1)
	ix.Yearordinal = dtutil.ToOrdinal(year, 1, 1)
	ix.Yearweekday = dtutil.WeekdayOfDate(year, 1, 1)

	if ix.Yearlen == 365 {
		ix.Mmask = m365Mask
		ix.Mdaymask = mday365Mask
		ix.Nmdaymask = nmday365Mask
		ix.Mrange = m365Range
	} else {
		ix.Mmask = m366Mask
		ix.Mdaymask = mday366Mask
		ix.Nmdaymask = nmday366Mask
		ix.Mrange = m366Range
	}
	ix.Wdaymask = wdayMaskBase[ix.Yearweekday:]

	if len(ix.cfg.Byweekno) == 0 {
		ix.Wnomask = nil
		return
	}
	ix.rebuildWeekNumbers(year)
}

// rebuildWeekNumbers marks the days belonging to the requested ISO
// week numbers, including week one of the following year and the final
// week of the preceding year when they overlap this year.
func (ix *Index) rebuildWeekNumbers(year int) {
	cfg := &ix.cfg
	ix.Wnomask = make([]bool, ix.Yearlen+7)

	firstwkst := dtutil.Pymod(7-ix.Yearweekday+cfg.Wkst, 7)
	no1wkst := firstwkst
	var wyearlen int
	if no1wkst >= 4 {
		no1wkst = 0
		// This year's week one claims days from the previous year.
		wyearlen = ix.Yearlen + dtutil.Pymod(ix.Yearweekday-cfg.Wkst, 7)
	} else {
		wyearlen = ix.Yearlen - no1wkst
	}
	numweeks := wyearlen/7 + wyearlen%7/4

	for _, n := range cfg.Byweekno {
		if n < 0 {
			n += numweeks + 1
		}
		if n <= 0 || n > numweeks {
			continue
		}
		var i int
		if n > 1 {
			i = no1wkst + (n-1)*7
			if no1wkst != firstwkst {
				i -= 7 - firstwkst
			}
		} else {
			i = no1wkst
		}
		for j := 0; j < 7; j++ {
			ix.Wnomask[i] = true
			i++
			if ix.Wdaymask[i] == cfg.Wkst {
				break
			}
		}
	}

	if containsInt(cfg.Byweekno, 1) {
		// Week one of the next year may start inside this year.
		i := no1wkst + numweeks*7
		if no1wkst != firstwkst {
			i -= 7 - firstwkst
		}
		if i < ix.Yearlen {
			for j := 0; j < 7; j++ {
				ix.Wnomask[i] = true
				i++
				if ix.Wdaymask[i] == cfg.Wkst {
					break
				}
			}
		}
	}

	if no1wkst != 0 {
		// Days before this year's week one belong to the last week of
		// the previous year.
		var lnumweeks int
		if !containsInt(cfg.Byweekno, -1) {
			lyearweekday := dtutil.WeekdayOfDate(year-1, 1, 1)
			lno1wkst := dtutil.Pymod(7-lyearweekday+cfg.Wkst, 7)
			lyearlen := dtutil.YearLen(year - 1)
			if lno1wkst >= 4 {
				lnumweeks = 52 + dtutil.Pymod(lyearlen+dtutil.Pymod(lyearweekday-cfg.Wkst, 7), 7)/4
			} else {
				lnumweeks = 52 + dtutil.Pymod(ix.Yearlen-no1wkst, 7)/4
			}
		} else {
			lnumweeks = -1
		}
		if containsInt(cfg.Byweekno, lnumweeks) {
			for i := 0; i < no1wkst; i++ {
				ix.Wnomask[i] = true
			}
		}
	}
}

func (ix *Index) rebuildMonth(year, month int) {
	cfg := &ix.cfg
	ix.Nwdaymask = make([]bool, ix.Yearlen+7)

	var ranges [][2]int
	switch cfg.Scope {
	case ScopeYear:
		if len(cfg.Bymonth) > 0 {
			for _, m := range cfg.Bymonth {
				ranges = append(ranges, [2]int{ix.Mrange[m-1], ix.Mrange[m]})
			}
		} else {
			ranges = [][2]int{{0, ix.Yearlen}}
		}
	case ScopeMonth:
		ranges = [][2]int{{ix.Mrange[month-1], ix.Mrange[month]}}
	}

	for _, rng := range ranges {
		first, last := rng[0], rng[1]-1
		for _, spec := range cfg.Bynweekday {
			var i int
			if spec.N < 0 {
				i = last + (spec.N+1)*7
				if i < 0 || i >= len(ix.Wdaymask) {
					continue
				}
				i -= dtutil.Pymod(ix.Wdaymask[i]-spec.Weekday, 7)
			} else {
				i = first + (spec.N-1)*7
				if i < 0 || i >= len(ix.Wdaymask) {
					continue
				}
				i += dtutil.Pymod(spec.Weekday-ix.Wdaymask[i], 7)
			}
			if first <= i && i <= last {
				ix.Nwdaymask[i] = true
			}
		}
	}
}

// IsEasterDay reports whether the given ordinal day is the configured
// Easter-offset day of the current year.
func (ix *Index) IsEasterDay(day int) bool {
	return ix.hasEaster && day == ix.easterYday
}

// YearDaySet returns the candidate window for yearly frequency: every
// day of the current year.
func (ix *Index) YearDaySet(_, _, _ int) ([]int, int, int) {
	set := make([]int, ix.Yearlen)
	for i := range set {
		set[i] = i
	}
	return set, 0, ix.Yearlen
}

// MonthDaySet returns the candidate window for monthly frequency: the
// days of the given month.
func (ix *Index) MonthDaySet(_, month, _ int) ([]int, int, int) {
	set := make([]int, ix.Yearlen)
	start, end := ix.Mrange[month-1], ix.Mrange[month]
	for i := start; i < end; i++ {
		set[i] = i
	}
	return set, start, end
}

// WeekDaySet returns the candidate window for weekly frequency: up to
// seven days starting at the given date, stopping at the week-start
// boundary.
func (ix *Index) WeekDaySet(year, month, day int) ([]int, int, int) {
	set := make([]int, ix.Yearlen+7)
	i := dtutil.ToOrdinal(year, month, day) - ix.Yearordinal
	start := i
	for j := 0; j < 7; j++ {
		set[i] = i
		i++
		if ix.Wdaymask[i] == ix.cfg.Wkst {
			break
		}
	}
	return set, start, i
}

// DayDaySet returns the candidate window for daily and finer
// frequencies: the given day only.
func (ix *Index) DayDaySet(year, month, day int) ([]int, int, int) {
	set := make([]int, ix.Yearlen+7)
	i := dtutil.ToOrdinal(year, month, day) - ix.Yearordinal
	set[i] = i
	return set, i, i + 1
}

// HourTimeSet returns the ordered time-of-day set for one hour at
// hourly frequency: the configured minutes crossed with the configured
// seconds.
func (ix *Index) HourTimeSet(hour, _, _ int) []dtutil.TimeOfDay {
	set := make([]dtutil.TimeOfDay, 0, len(ix.cfg.Byminute)*len(ix.cfg.Bysecond))
	for _, minute := range ix.cfg.Byminute {
		for _, second := range ix.cfg.Bysecond {
			set = append(set, dtutil.TimeOfDay{Hour: hour, Minute: minute, Second: second})
		}
	}
	sortTimes(set)
	return set
}

// MinuteTimeSet returns the ordered time-of-day set for one minute at
// minutely frequency: the configured seconds.
func (ix *Index) MinuteTimeSet(hour, minute, _ int) []dtutil.TimeOfDay {
	set := make([]dtutil.TimeOfDay, 0, len(ix.cfg.Bysecond))
	for _, second := range ix.cfg.Bysecond {
		set = append(set, dtutil.TimeOfDay{Hour: hour, Minute: minute, Second: second})
	}
	sortTimes(set)
	return set
}

// SecondTimeSet returns the single-entry time set for secondly
// frequency.
func (ix *Index) SecondTimeSet(hour, minute, second int) []dtutil.TimeOfDay {
	return []dtutil.TimeOfDay{{Hour: hour, Minute: minute, Second: second}}
}

func sortTimes(set []dtutil.TimeOfDay) {
	sort.Slice(set, func(i, j int) bool { return set[i].Before(set[j]) })
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Static masks shared by every index. They are read-only; day windows
// handed to the enumerator are freshly allocated instead of aliasing
// these.
var (
	m365Range = []int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}
	m366Range = []int{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366}

	m365Mask, mday365Mask, nmday365Mask = buildMonthMasks(365)
	m366Mask, mday366Mask, nmday366Mask = buildMonthMasks(366)

	wdayMaskBase = buildWeekdayMask()
)

func buildMonthMasks(yearlen int) (mmask, mdaymask, nmdaymask []int) {
	year := 2001 // any non-leap year
	if yearlen == 366 {
		year = 2000
	}
	for month := 1; month <= 12; month++ {
		days := dtutil.DaysInMonth(year, month)
		for d := 1; d <= days; d++ {
			mmask = append(mmask, month)
			mdaymask = append(mdaymask, d)
			nmdaymask = append(nmdaymask, d-days-1)
		}
	}
	// Spill week: the first seven days of the following January.
	for d := 1; d <= 7; d++ {
		mmask = append(mmask, 1)
		mdaymask = append(mdaymask, d)
		nmdaymask = append(nmdaymask, d-32)
	}
	return mmask, mdaymask, nmdaymask
}

func buildWeekdayMask() []int {
	mask := make([]int, 0, 55*7)
	for i := 0; i < 55; i++ {
		for wd := 0; wd < 7; wd++ {
			mask = append(mask, wd)
		}
	}
	return mask
}
