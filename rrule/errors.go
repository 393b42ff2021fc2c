package rrule

import "errors"

// Errors returned at construction or parse time. Enumeration itself
// has no error path: every malformed state is rejected before a rule
// is handed back to the caller.
var (
	// ErrInvalidOption reports a rule field whose value is outside the
	// range the grammar defines for it.
	ErrInvalidOption = errors.New("rrule: invalid option")

	// ErrInvalidFrequency reports a missing or unrecognized frequency
	// on a rule without an Easter offset.
	ErrInvalidFrequency = errors.New("rrule: invalid frequency")

	// ErrInvalidSetPosition reports a Bysetpos value outside
	// [-366,-1] and [1,366].
	ErrInvalidSetPosition = errors.New("rrule: bysetpos must be between 1 and 366, or between -366 and -1")

	// ErrUnknownProperty reports an unrecognized key in RRULE text.
	ErrUnknownProperty = errors.New("rrule: unknown property")
)
