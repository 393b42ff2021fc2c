// Package dtutil provides the calendar math primitives the recurrence
// engine is built on: proleptic Gregorian ordinal conversion, weekday
// math with Monday as day zero, month/year length tables, the Easter
// computation, and the fixed RRULE timestamp text format.
package dtutil

import (
	"fmt"
	"time"
)

// MaxYear is the largest year the engine enumerates into. Advancing a
// rule past it is a normal termination condition, not an error.
const MaxYear = 9999

// ordinal of 1970-01-01 in the proleptic Gregorian calendar, where
// 0001-01-01 is day 1.
const unixEpochOrdinal = 719163

const secondsPerDay = 86400

// TimeOfDay is one entry of a rule's materialized time-of-day set.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Before reports whether t sorts before u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	if t.Hour != u.Hour {
		return t.Hour < u.Hour
	}
	if t.Minute != u.Minute {
		return t.Minute < u.Minute
	}
	return t.Second < u.Second
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// YearLen returns the number of days in year.
func YearLen(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// DaysInMonth returns the number of days in the given month (1..12).
func DaysInMonth(year, month int) int {
	// Day 0 of the following month normalizes to the last day of month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeekdayOf returns the weekday of t with Monday as 0 and Sunday as 6.
func WeekdayOf(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayOfDate is WeekdayOf for a bare calendar date.
func WeekdayOfDate(year, month, day int) int {
	return WeekdayOf(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// ToOrdinal converts a calendar date to its proleptic Gregorian ordinal
// (0001-01-01 is day 1).
func ToOrdinal(year, month, day int) int {
	// Midnight UTC timestamps are exact multiples of a day, so integer
	// division is exact even for pre-1970 dates.
	secs := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Unix()
	return int(secs/secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal converts a proleptic Gregorian ordinal back to a date.
func FromOrdinal(ord int) (year int, month time.Month, day int) {
	return time.Unix(int64(ord-unixEpochOrdinal)*secondsPerDay, 0).UTC().Date()
}

// Pymod computes the Python-style modulo, whose result has the sign of
// the divisor. The enumerator depends on this when mapping negative
// set positions and rolling months.
func Pymod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// Divmod returns the floor division and Python modulo of a by b.
func Divmod(a, b int) (div, mod int) {
	mod = Pymod(a, b)
	return (a - mod) / b, mod
}

// Easter returns the month and day of Easter Sunday for year, using
// the anonymous Gregorian (Butcher) algorithm.
func Easter(year int) (month, day int) {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month = (h + l - 7*m + 114) / 31
	day = (h+l-7*m+114)%31 + 1
	return month, day
}

// untilLayout is the fixed RRULE timestamp encoding for DTSTART and
// UNTIL values. It is not locale dependent.
const untilLayout = "20060102T150405Z"

// FormatUntil renders t in the RRULE timestamp text format. The
// trailing Z is a literal: a non-UTC instant is rendered as its
// wall-clock time, so the wall fields round-trip through ParseUntil
// unchanged.
func FormatUntil(t time.Time) string {
	return t.Format(untilLayout)
}

// ParseUntil parses an RRULE timestamp. A bare date (YYYYMMDD) is
// accepted and taken as midnight; the trailing Z is optional.
func ParseUntil(s string) (time.Time, error) {
	for _, layout := range []string{untilLayout, "20060102T150405", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
