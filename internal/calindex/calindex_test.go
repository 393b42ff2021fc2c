package calindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librecur/internal/dtutil"
)

func TestRebuildYearMasks(t *testing.T) {
	ix := New(Config{})
	ix.Rebuild(2024, 1)

	assert.Equal(t, 366, ix.Yearlen)
	assert.Equal(t, 365, ix.Nextyearlen)
	assert.Equal(t, 0, ix.Yearweekday, "2024 began on a Monday")
	assert.Equal(t, dtutil.ToOrdinal(2024, 1, 1), ix.Yearordinal)

	// January.
	assert.Equal(t, 1, ix.Mmask[0])
	assert.Equal(t, 1, ix.Mdaymask[0])
	assert.Equal(t, -31, ix.Nmdaymask[0])
	// February 29th sits at ordinal day 59.
	assert.Equal(t, 2, ix.Mmask[59])
	assert.Equal(t, 29, ix.Mdaymask[59])
	assert.Equal(t, -1, ix.Nmdaymask[59])
	// Spill week reads as next January.
	assert.Equal(t, 1, ix.Mmask[366])
	assert.Equal(t, 1, ix.Mdaymask[366])

	// Weekday mask starts at the year's first weekday.
	assert.Equal(t, 0, ix.Wdaymask[0])
	assert.Equal(t, 6, ix.Wdaymask[6])
	assert.Equal(t, 0, ix.Wdaymask[7])
}

func TestRebuildIsIdempotent(t *testing.T) {
	n := -1
	ix := New(Config{
		Scope:      ScopeYear,
		Bymonth:    []int{3},
		Bynweekday: []WeekdaySpec{{Weekday: 4, N: n}},
	})
	ix.Rebuild(2024, 1)
	first := ix.Nwdaymask
	ix.Rebuild(2024, 1)
	assert.Equal(t, first, ix.Nwdaymask)
}

func TestOrdinalWeekdayMask(t *testing.T) {
	// Last Friday of March at yearly scope.
	ix := New(Config{
		Scope:      ScopeYear,
		Bymonth:    []int{3},
		Bynweekday: []WeekdaySpec{{Weekday: 4, N: -1}},
	})
	ix.Rebuild(2024, 1)

	require.NotNil(t, ix.Nwdaymask)
	marked := []int{}
	for d, ok := range ix.Nwdaymask {
		if ok {
			marked = append(marked, d)
		}
	}
	// 2024-03-29 is ordinal day 88.
	assert.Equal(t, []int{88}, marked)
}

func TestOrdinalWeekdayMaskMonthly(t *testing.T) {
	// Second Tuesday, monthly scope, February 2024 = the 13th (day 43).
	ix := New(Config{
		Scope:      ScopeMonth,
		Bynweekday: []WeekdaySpec{{Weekday: 1, N: 2}},
	})
	ix.Rebuild(2024, 2)

	marked := []int{}
	for d, ok := range ix.Nwdaymask {
		if ok {
			marked = append(marked, d)
		}
	}
	assert.Equal(t, []int{43}, marked)
}

func TestWeekNumberMask(t *testing.T) {
	ix := New(Config{Byweekno: []int{1}})
	ix.Rebuild(2024, 1)

	require.NotNil(t, ix.Wnomask)
	// 2024-01-01 was a Monday, so ISO week 1 covers the first 7 days.
	for d := 0; d < 7; d++ {
		assert.True(t, ix.Wnomask[d], "day %d", d)
	}
	assert.False(t, ix.Wnomask[7])
	// Week 1 of 2025 starts on 2024-12-30 (ordinal day 364).
	assert.True(t, ix.Wnomask[364])
	assert.True(t, ix.Wnomask[365])
	assert.False(t, ix.Wnomask[363])
}

func TestWeekNumberMaskNegative(t *testing.T) {
	// Last ISO week of 2023 ends on 2023-12-31 (Sunday).
	ix := New(Config{Byweekno: []int{-1}})
	ix.Rebuild(2023, 1)

	require.NotNil(t, ix.Wnomask)
	// 2023-12-25 (Monday) through 12-31 are week 52, ordinal days 358..364.
	assert.True(t, ix.Wnomask[358])
	assert.True(t, ix.Wnomask[364])
	assert.False(t, ix.Wnomask[357])
}

func TestEasterMask(t *testing.T) {
	offset := 0
	ix := New(Config{Byeaster: &offset})
	ix.Rebuild(2024, 1)

	// Easter 2024 fell on March 31st, ordinal day 90.
	assert.True(t, ix.IsEasterDay(90))
	assert.False(t, ix.IsEasterDay(89))

	plusOne := 1
	ix = New(Config{Byeaster: &plusOne})
	ix.Rebuild(2024, 1)
	assert.True(t, ix.IsEasterDay(91))
}

func TestDaySets(t *testing.T) {
	ix := New(Config{})
	ix.Rebuild(2024, 2)

	days, start, end := ix.YearDaySet(2024, 2, 1)
	assert.Equal(t, 0, start)
	assert.Equal(t, 366, end)
	assert.Equal(t, 365, days[365])

	days, start, end = ix.MonthDaySet(2024, 2, 1)
	assert.Equal(t, 31, start)
	assert.Equal(t, 60, end)
	assert.Equal(t, 31, days[31])
	assert.Equal(t, 59, days[59])

	// Week window from Wednesday 2024-01-03 runs through Sunday with
	// Monday as week start.
	ix.Rebuild(2024, 1)
	_, start, end = ix.WeekDaySet(2024, 1, 3)
	assert.Equal(t, 2, start)
	assert.Equal(t, 7, end)

	_, start, end = ix.DayDaySet(2024, 1, 10)
	assert.Equal(t, 9, start)
	assert.Equal(t, 10, end)
}

func TestTimeSets(t *testing.T) {
	ix := New(Config{Byminute: []int{30, 0}, Bysecond: []int{0}})
	ix.Rebuild(2024, 1)

	set := ix.HourTimeSet(9, 0, 0)
	require.Len(t, set, 2)
	assert.Equal(t, dtutil.TimeOfDay{Hour: 9, Minute: 0, Second: 0}, set[0])
	assert.Equal(t, dtutil.TimeOfDay{Hour: 9, Minute: 30, Second: 0}, set[1])

	set = ix.MinuteTimeSet(9, 15, 0)
	require.Len(t, set, 1)
	assert.Equal(t, dtutil.TimeOfDay{Hour: 9, Minute: 15, Second: 0}, set[0])

	set = ix.SecondTimeSet(9, 15, 42)
	require.Len(t, set, 1)
	assert.Equal(t, dtutil.TimeOfDay{Hour: 9, Minute: 15, Second: 42}, set[0])
}
