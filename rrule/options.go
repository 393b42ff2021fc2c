package rrule

import (
	"fmt"
	"sort"
	"time"

	"github.com/cyp0633/librecur/internal/calindex"
	"github.com/cyp0633/librecur/internal/dtutil"
)

// Options is the sparse rule specification a caller provides. Zero
// values mean "absent": nil slices, zero times, zero Count and
// Interval all fall back to the documented defaults during
// normalization. Byeaster uses a pointer because an offset of zero
// (Easter Sunday itself) is meaningful.
type Options struct {
	Freq       Frequency
	Dtstart    time.Time
	Interval   int
	Wkst       Weekday
	Count      int
	Until      time.Time
	Bysetpos   []int
	Bymonth    []int
	Bymonthday []int
	Byyearday  []int
	Byweekno   []int
	Byweekday  []Weekday
	Byhour     []int
	Byminute   []int
	Bysecond   []int
	Byeaster   *int
}

// parsedOptions is the canonical rule every query runs against. It is
// immutable after parseOptions returns it.
type parsedOptions struct {
	freq     Frequency
	dtstart  time.Time
	loc      *time.Location
	interval int
	wkst     int
	count    int
	until    time.Time

	bysetpos    []int
	bymonth     []int
	bymonthday  []int // positive day-of-month values
	bynmonthday []int // negative day-of-month values
	byyearday   []int
	byweekno    []int
	byweekday   []int // plain weekdays
	bynweekday  []calindex.WeekdaySpec
	byhour      []int
	byminute    []int
	bysecond    []int
	byeaster    *int

	// Fixed per-day time-of-day set, materialized only when the
	// frequency is coarser than hourly.
	timeset []dtutil.TimeOfDay
}

// parseOptions validates a sparse specification and normalizes it into
// the canonical rule. It fails fast; no partial rule is ever returned.
func parseOptions(opt Options) (*parsedOptions, error) {
	if err := validateOptions(opt); err != nil {
		return nil, err
	}

	po := &parsedOptions{}

	if opt.Byeaster != nil {
		// An Easter offset implies yearly frequency and bypasses the
		// frequency check.
		e := *opt.Byeaster
		po.byeaster = &e
		opt.Freq = Yearly
	} else if !opt.Freq.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrequency, int(opt.Freq))
	}
	po.freq = opt.Freq

	dtstart := opt.Dtstart
	if dtstart.IsZero() {
		dtstart = time.Now()
	}
	dtstart = dtstart.Truncate(time.Second)
	po.dtstart = dtstart
	po.loc = dtstart.Location()

	po.interval = opt.Interval
	if po.interval < 1 {
		po.interval = 1
	}
	po.wkst = opt.Wkst.Day()
	po.count = opt.Count
	po.until = opt.Until

	for _, v := range opt.Bysetpos {
		if v == 0 || v < -366 || v > 366 {
			return nil, fmt.Errorf("%w (got %d)", ErrInvalidSetPosition, v)
		}
	}
	po.bysetpos = copyInts(opt.Bysetpos)

	bymonth := copyInts(opt.Bymonth)
	bymonthday := copyInts(opt.Bymonthday)
	byweekday := copyWeekdays(opt.Byweekday)

	// Without an explicit day selector the day is pinned to the start
	// instant, so every rule has a deterministic day selection.
	noDaySelector := len(opt.Byweekno) == 0 && len(opt.Byyearday) == 0 &&
		len(bymonthday) == 0 && len(byweekday) == 0 && opt.Byeaster == nil
	if noDaySelector {
		switch po.freq {
		case Yearly:
			if len(bymonth) == 0 {
				bymonth = []int{int(dtstart.Month())}
			}
			bymonthday = []int{dtstart.Day()}
		case Monthly:
			bymonthday = []int{dtstart.Day()}
		case Weekly:
			byweekday = []Weekday{{weekday: dtutil.WeekdayOf(dtstart)}}
		}
	}

	po.bymonth = bymonth
	po.byyearday = copyInts(opt.Byyearday)
	po.byweekno = copyInts(opt.Byweekno)

	// Absolute and relative month days are filtered independently.
	for _, v := range bymonthday {
		if v > 0 {
			po.bymonthday = append(po.bymonthday, v)
		} else {
			po.bynmonthday = append(po.bynmonthday, v)
		}
	}

	// Ordinal weekdays only make sense at monthly scope or coarser;
	// at finer frequencies the ordinal is dropped.
	for _, wd := range byweekday {
		if wd.n == 0 || po.freq > Monthly {
			po.byweekday = append(po.byweekday, wd.weekday)
		} else {
			po.bynweekday = append(po.bynweekday, calindex.WeekdaySpec{Weekday: wd.weekday, N: wd.n})
		}
	}

	po.byhour = copyInts(opt.Byhour)
	if len(po.byhour) == 0 && po.freq < Hourly {
		po.byhour = []int{dtstart.Hour()}
	}
	po.byminute = copyInts(opt.Byminute)
	if len(po.byminute) == 0 && po.freq < Minutely {
		po.byminute = []int{dtstart.Minute()}
	}
	po.bysecond = copyInts(opt.Bysecond)
	if len(po.bysecond) == 0 && po.freq < Secondly {
		po.bysecond = []int{dtstart.Second()}
	}

	// For hourly and finer frequencies the time of day advances as
	// part of the period step instead.
	if po.freq < Hourly {
		for _, hour := range po.byhour {
			for _, minute := range po.byminute {
				for _, second := range po.bysecond {
					po.timeset = append(po.timeset, dtutil.TimeOfDay{Hour: hour, Minute: minute, Second: second})
				}
			}
		}
		sort.Slice(po.timeset, func(i, j int) bool { return po.timeset[i].Before(po.timeset[j]) })
	}

	return po, nil
}

func validateOptions(opt Options) error {
	if opt.Interval < 0 {
		return fmt.Errorf("%w: interval %d", ErrInvalidOption, opt.Interval)
	}
	for _, v := range opt.Bymonth {
		if v < 1 || v > 12 {
			return fmt.Errorf("%w: bymonth %d", ErrInvalidOption, v)
		}
	}
	for _, v := range opt.Bymonthday {
		if v == 0 || v < -31 || v > 31 {
			return fmt.Errorf("%w: bymonthday %d", ErrInvalidOption, v)
		}
	}
	for _, v := range opt.Byyearday {
		if v == 0 || v < -366 || v > 366 {
			return fmt.Errorf("%w: byyearday %d", ErrInvalidOption, v)
		}
	}
	for _, v := range opt.Byweekno {
		if v == 0 || v < -53 || v > 53 {
			return fmt.Errorf("%w: byweekno %d", ErrInvalidOption, v)
		}
	}
	for _, v := range opt.Byhour {
		if v < 0 || v > 23 {
			return fmt.Errorf("%w: byhour %d", ErrInvalidOption, v)
		}
	}
	for _, v := range opt.Byminute {
		if v < 0 || v > 59 {
			return fmt.Errorf("%w: byminute %d", ErrInvalidOption, v)
		}
	}
	for _, v := range opt.Bysecond {
		if v < 0 || v > 59 {
			return fmt.Errorf("%w: bysecond %d", ErrInvalidOption, v)
		}
	}
	return nil
}

func copyInts(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func copyWeekdays(s []Weekday) []Weekday {
	if len(s) == 0 {
		return nil
	}
	out := make([]Weekday, len(s))
	copy(out, s)
	return out
}
