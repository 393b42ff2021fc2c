package rrule

// Frequency is the coarsest repetition granularity of a rule. The zero
// value is not a valid frequency, so an unset field is detectable at
// construction time.
type Frequency int

const (
	Yearly Frequency = iota + 1
	Monthly
	Weekly
	Daily
	Hourly
	Minutely
	Secondly
)

var frequencyNames = map[Frequency]string{
	Yearly:   "YEARLY",
	Monthly:  "MONTHLY",
	Weekly:   "WEEKLY",
	Daily:    "DAILY",
	Hourly:   "HOURLY",
	Minutely: "MINUTELY",
	Secondly: "SECONDLY",
}

var frequencyValues = map[string]Frequency{
	"YEARLY":   Yearly,
	"MONTHLY":  Monthly,
	"WEEKLY":   Weekly,
	"DAILY":    Daily,
	"HOURLY":   Hourly,
	"MINUTELY": Minutely,
	"SECONDLY": Secondly,
}

func (f Frequency) valid() bool {
	return f >= Yearly && f <= Secondly
}

// String returns the RRULE grammar name of the frequency.
func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return "UNKNOWN"
}
