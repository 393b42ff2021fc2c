package rrule

import "fmt"

// Weekday identifies a weekday, optionally qualified with a signed
// ordinal within the enclosing period ("2nd Tuesday", "last Friday").
// The zero value is Monday with no ordinal, which is also the default
// week start.
type Weekday struct {
	weekday int
	n       int
}

// Weekday constants in RRULE order, Monday first.
var (
	MO = Weekday{weekday: 0}
	TU = Weekday{weekday: 1}
	WE = Weekday{weekday: 2}
	TH = Weekday{weekday: 3}
	FR = Weekday{weekday: 4}
	SA = Weekday{weekday: 5}
	SU = Weekday{weekday: 6}
)

var weekdayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Nth returns the weekday qualified with a signed ordinal. FR.Nth(-1)
// is the last Friday of the period.
func (w Weekday) Nth(n int) Weekday {
	return Weekday{weekday: w.weekday, n: n}
}

// Day returns the weekday number, Monday = 0 through Sunday = 6.
func (w Weekday) Day() int { return w.weekday }

// N returns the signed ordinal, or zero when the weekday is unqualified.
func (w Weekday) N() int { return w.n }

// String renders the weekday as an RRULE BYDAY token.
func (w Weekday) String() string {
	s := weekdayCodes[w.weekday]
	if w.n != 0 {
		s = fmt.Sprintf("%+d%s", w.n, s)
	}
	return s
}
