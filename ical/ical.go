// Package ical bridges recurrence rules to iCalendar components: it
// reads a rule out of a component's RRULE and DTSTART properties,
// writes a rule back, and expands a component's occurrences over a
// window. Recurrence-set algebra (RDATE/EXDATE) is out of scope; only
// the bare rule is interpreted.
package ical

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/librecur/rrule"
)

// RuleFromComponent builds a rule from a component's RRULE property.
// When the RRULE text itself carries no DTSTART, the component's
// DTSTART property supplies the start instant.
func RuleFromComponent(comp *ical.Component) (*rrule.RRule, error) {
	prop := comp.Props.Get(ical.PropRecurrenceRule)
	if prop == nil || prop.Value == "" {
		return nil, fmt.Errorf("component %s has no RRULE property", comp.Name)
	}
	opt, err := rrule.ParseString(prop.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE %q: %w", prop.Value, err)
	}
	if opt.Dtstart.IsZero() {
		if dtstart, err := comp.Props.DateTime(ical.PropDateTimeStart, nil); err == nil && !dtstart.IsZero() {
			opt.Dtstart = dtstart
		}
	}
	return rrule.New(opt)
}

// SetRule writes the rule onto a component as separate DTSTART and
// RRULE properties; the RRULE text never embeds the start instant,
// since iCalendar carries it as its own property.
func SetRule(comp *ical.Component, r *rrule.RRule) {
	opt := r.OrigOptions
	dtstart := opt.Dtstart
	if dtstart.IsZero() {
		dtstart = r.DTStart()
	}
	opt.Dtstart = time.Time{}

	comp.Props.SetDateTime(ical.PropDateTimeStart, dtstart)
	prop := ical.NewProp(ical.PropRecurrenceRule)
	prop.Value = rrule.OptionsToString(opt)
	comp.Props.Set(prop)
}

// ComponentOccurrences expands a recurring component's occurrence
// instants within (from, to); with inc, occurrences equal to a bound
// are included.
func ComponentOccurrences(comp *ical.Component, from, to time.Time, inc bool) ([]time.Time, error) {
	r, err := RuleFromComponent(comp)
	if err != nil {
		return nil, err
	}
	return r.Between(from, to, inc), nil
}
