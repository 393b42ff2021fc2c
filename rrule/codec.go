package rrule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cyp0633/librecur/internal/dtutil"
)

// bydayTokenRe matches one BYDAY token: an optional signed ordinal
// followed by a two-letter weekday code.
var bydayTokenRe = regexp.MustCompile(`^([+-]?\d+)?([A-Z]{2})$`)

// ParseString parses RRULE text (semicolon-separated KEY=VALUE pairs)
// into a sparse specification. An empty string yields empty Options;
// constructing a rule from those fails the frequency check.
func ParseString(s string) (Options, error) {
	var opt Options
	s = strings.TrimSpace(s)
	if s == "" {
		return opt, nil
	}
	for _, pair := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return Options{}, fmt.Errorf("%w: malformed pair %q", ErrInvalidOption, pair)
		}
		if err := applyProperty(&opt, key, value); err != nil {
			return Options{}, err
		}
	}
	return opt, nil
}

func applyProperty(opt *Options, key, value string) error {
	switch key {
	case "FREQ":
		f, ok := frequencyValues[value]
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
		}
		opt.Freq = f
	case "WKST":
		wd, ok := weekdayByCode(value)
		if !ok {
			return fmt.Errorf("%w: WKST value %q", ErrInvalidOption, value)
		}
		opt.Wkst = wd
	case "COUNT", "INTERVAL", "BYEASTER":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s value %q", ErrInvalidOption, key, value)
		}
		switch key {
		case "COUNT":
			opt.Count = n
		case "INTERVAL":
			opt.Interval = n
		case "BYEASTER":
			opt.Byeaster = &n
		}
	case "BYSETPOS", "BYMONTH", "BYMONTHDAY", "BYYEARDAY", "BYWEEKNO", "BYHOUR", "BYMINUTE", "BYSECOND":
		nums, err := parseIntList(value)
		if err != nil {
			return fmt.Errorf("%w: %s value %q", ErrInvalidOption, key, value)
		}
		switch key {
		case "BYSETPOS":
			opt.Bysetpos = nums
		case "BYMONTH":
			opt.Bymonth = nums
		case "BYMONTHDAY":
			opt.Bymonthday = nums
		case "BYYEARDAY":
			opt.Byyearday = nums
		case "BYWEEKNO":
			opt.Byweekno = nums
		case "BYHOUR":
			opt.Byhour = nums
		case "BYMINUTE":
			opt.Byminute = nums
		case "BYSECOND":
			opt.Bysecond = nums
		}
	case "BYDAY":
		days, err := parseByday(value)
		if err != nil {
			return err
		}
		opt.Byweekday = days
	case "DTSTART":
		t, err := dtutil.ParseUntil(value)
		if err != nil {
			return fmt.Errorf("%w: DTSTART value %q", ErrInvalidOption, value)
		}
		opt.Dtstart = t
	case "UNTIL":
		t, err := dtutil.ParseUntil(value)
		if err != nil {
			return fmt.Errorf("%w: UNTIL value %q", ErrInvalidOption, value)
		}
		opt.Until = t
	default:
		return fmt.Errorf("%w %q", ErrUnknownProperty, key)
	}
	return nil
}

func parseIntList(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func parseByday(value string) ([]Weekday, error) {
	tokens := strings.Split(value, ",")
	days := make([]Weekday, 0, len(tokens))
	for _, tok := range tokens {
		m := bydayTokenRe.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("%w: BYDAY token %q", ErrInvalidOption, tok)
		}
		wd, ok := weekdayByCode(m[2])
		if !ok {
			return nil, fmt.Errorf("%w: BYDAY token %q", ErrInvalidOption, tok)
		}
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("%w: BYDAY token %q", ErrInvalidOption, tok)
			}
			wd = wd.Nth(n)
		}
		days = append(days, wd)
	}
	return days, nil
}

func weekdayByCode(code string) (Weekday, bool) {
	for i, c := range weekdayCodes {
		if c == code {
			return Weekday{weekday: i}, true
		}
	}
	return Weekday{}, false
}

// FromString parses RRULE text and constructs a rule from it.
func FromString(s string) (*RRule, error) {
	opt, err := ParseString(s)
	if err != nil {
		return nil, err
	}
	return New(opt)
}

// OptionsToString serializes a specification back to RRULE text. Only
// set fields are emitted; plain and ordinal weekdays reunify into a
// single BYDAY value, and timestamps use the grammar's fixed layout.
func OptionsToString(opt Options) string {
	var pairs []string
	add := func(key, value string) {
		pairs = append(pairs, key+"="+value)
	}

	if opt.Freq.valid() {
		add("FREQ", opt.Freq.String())
	}
	if !opt.Dtstart.IsZero() {
		add("DTSTART", dtutil.FormatUntil(opt.Dtstart))
	}
	if opt.Interval != 0 {
		add("INTERVAL", strconv.Itoa(opt.Interval))
	}
	if opt.Wkst.Day() != 0 {
		add("WKST", opt.Wkst.String())
	}
	if opt.Count != 0 {
		add("COUNT", strconv.Itoa(opt.Count))
	}
	if !opt.Until.IsZero() {
		add("UNTIL", dtutil.FormatUntil(opt.Until))
	}
	if len(opt.Bysetpos) > 0 {
		add("BYSETPOS", joinInts(opt.Bysetpos))
	}
	if len(opt.Bymonth) > 0 {
		add("BYMONTH", joinInts(opt.Bymonth))
	}
	if len(opt.Bymonthday) > 0 {
		add("BYMONTHDAY", joinInts(opt.Bymonthday))
	}
	if len(opt.Byyearday) > 0 {
		add("BYYEARDAY", joinInts(opt.Byyearday))
	}
	if len(opt.Byweekno) > 0 {
		add("BYWEEKNO", joinInts(opt.Byweekno))
	}
	if len(opt.Byweekday) > 0 {
		tokens := make([]string, len(opt.Byweekday))
		for i, wd := range opt.Byweekday {
			tokens[i] = wd.String()
		}
		add("BYDAY", strings.Join(tokens, ","))
	}
	if len(opt.Byhour) > 0 {
		add("BYHOUR", joinInts(opt.Byhour))
	}
	if len(opt.Byminute) > 0 {
		add("BYMINUTE", joinInts(opt.Byminute))
	}
	if len(opt.Bysecond) > 0 {
		add("BYSECOND", joinInts(opt.Bysecond))
	}
	if opt.Byeaster != nil {
		add("BYEASTER", strconv.Itoa(*opt.Byeaster))
	}
	return strings.Join(pairs, ";")
}

// String serializes the rule's origin specification, not the
// normalized form; implicit day selectors derived from the start
// instant are therefore not emitted.
func (r *RRule) String() string {
	return OptionsToString(r.OrigOptions)
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
