package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

func date(s string) dateutil.Date { return dateutil.MustParseDate(s) }

func dates(ss ...string) []dateutil.Date {
	out := make([]dateutil.Date, 0, len(ss))
	for _, s := range ss {
		out = append(out, date(s))
	}
	return out
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		date    string
		matches bool
	}{
		{
			name:    "daily interval 1",
			rule:    Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01")},
			date:    "2025-01-15",
			matches: true,
		},
		{
			name:    "daily interval 3 off-step",
			rule:    Rule{Frequency: Daily, Interval: 3, StartDate: date("2025-01-01")},
			date:    "2025-01-03",
			matches: false,
		},
		{
			name:    "daily interval 3 on-step",
			rule:    Rule{Frequency: Daily, Interval: 3, StartDate: date("2025-01-01")},
			date:    "2025-01-07",
			matches: true,
		},
		{
			name:    "before start never matches",
			rule:    Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-10")},
			date:    "2025-01-09",
			matches: false,
		},
		{
			name:    "weekly defaults to start weekday",
			rule:    Rule{Frequency: Weekly, Interval: 1, StartDate: date("2025-01-06")}, // a Monday
			date:    "2025-01-13",
			matches: true,
		},
		{
			name:    "weekly wrong weekday",
			rule:    Rule{Frequency: Weekly, Interval: 1, StartDate: date("2025-01-06")},
			date:    "2025-01-14",
			matches: false,
		},
		{
			name: "weekly custom weekday set",
			rule: Rule{Frequency: Weekly, Interval: 1, StartDate: date("2025-01-06"),
				ByWeekday: []time.Weekday{time.Tuesday, time.Thursday}},
			date:    "2025-01-09", // Thursday
			matches: true,
		},
		{
			name: "weekdays-only rule excludes Saturday",
			rule: Rule{Frequency: Weekly, Interval: 1, StartDate: date("2025-01-06"),
				ByWeekday: Weekdays()},
			date:    "2025-01-11",
			matches: false,
		},
		{
			name: "monthly same date",
			rule: Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-15"),
				ByMonthDay: mo.Some(15)},
			date:    "2025-03-15",
			matches: true,
		},
		{
			name: "monthly day 31 clamps in February",
			rule: Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-31"),
				ByMonthDay: mo.Some(31)},
			date:    "2025-02-28",
			matches: true,
		},
		{
			name: "monthly day 31 does not fire on the 28th of a long month",
			rule: Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-31"),
				ByMonthDay: mo.Some(31)},
			date:    "2025-03-28",
			matches: false,
		},
		{
			name: "monthly interval 2 skips odd months",
			rule: Rule{Frequency: Monthly, Interval: 2, StartDate: date("2025-01-15"),
				ByMonthDay: mo.Some(15)},
			date:    "2025-02-15",
			matches: false,
		},
		{
			name: "monthly third Tuesday",
			rule: Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01"),
				ByWeekday: []time.Weekday{time.Tuesday}, BySetPosition: mo.Some(3)},
			date:    "2025-01-21",
			matches: true,
		},
		{
			name: "monthly last Friday",
			rule: Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01"),
				ByWeekday: []time.Weekday{time.Friday}, BySetPosition: mo.Some(-1)},
			date:    "2025-02-28",
			matches: true,
		},
		{
			name:    "yearly same month and day",
			rule:    Rule{Frequency: Yearly, Interval: 1, StartDate: date("2023-07-04")},
			date:    "2025-07-04",
			matches: true,
		},
		{
			name:    "yearly feb 29 falls back to feb 28",
			rule:    Rule{Frequency: Yearly, Interval: 1, StartDate: date("2024-02-29")},
			date:    "2025-02-28",
			matches: true,
		},
		{
			name:    "yearly feb 29 matches feb 29 in leap years",
			rule:    Rule{Frequency: Yearly, Interval: 1, StartDate: date("2024-02-29")},
			date:    "2028-02-29",
			matches: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Matches(date(tt.date), tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.matches, got)
		})
	}
}

func TestMatchesIgnoresExceptions(t *testing.T) {
	rule := Rule{
		Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
		ExceptionDates: dates("2025-01-05"),
	}
	got, err := Matches(date("2025-01-05"), rule)
	require.NoError(t, err)
	assert.True(t, got, "exceptions are layered on after pattern matching")
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name        string
		rule        Rule
		windowStart string
		windowEnd   string
		want        []dateutil.Date
	}{
		{
			name: "biweekly monday",
			rule: Rule{Frequency: Weekly, Interval: 2, StartDate: date("2025-01-06"),
				ByWeekday: []time.Weekday{time.Monday}},
			windowStart: "2025-01-01",
			windowEnd:   "2025-02-28",
			want:        dates("2025-01-06", "2025-01-20", "2025-02-03", "2025-02-17"),
		},
		{
			name: "monthly last friday over a quarter",
			rule: Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01"),
				ByWeekday: []time.Weekday{time.Friday}, BySetPosition: mo.Some(-1)},
			windowStart: "2025-01-01",
			windowEnd:   "2025-03-31",
			want:        dates("2025-01-31", "2025-02-28", "2025-03-28"),
		},
		{
			name:        "yearly feb 29 start over a non-leap year",
			rule:        Rule{Frequency: Yearly, Interval: 1, StartDate: date("2024-02-29")},
			windowStart: "2025-01-01",
			windowEnd:   "2025-12-31",
			want:        dates("2025-02-28"),
		},
		{
			name: "until is inclusive",
			rule: Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
				Until: mo.Some(date("2025-01-03"))},
			windowStart: "2025-01-01",
			windowEnd:   "2025-01-10",
			want:        dates("2025-01-01", "2025-01-02", "2025-01-03"),
		},
		{
			name:        "window boundaries are inclusive",
			rule:        Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01")},
			windowStart: "2025-01-05",
			windowEnd:   "2025-01-07",
			want:        dates("2025-01-05", "2025-01-06", "2025-01-07"),
		},
		{
			name: "exceptions are filtered out",
			rule: Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
				Until: mo.Some(date("2025-01-05")), ExceptionDates: dates("2025-01-03")},
			windowStart: "2025-01-01",
			windowEnd:   "2025-01-31",
			want:        dates("2025-01-01", "2025-01-02", "2025-01-04", "2025-01-05"),
		},
		{
			name:        "window entirely before start yields nothing",
			rule:        Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-06-01")},
			windowStart: "2025-01-01",
			windowEnd:   "2025-01-31",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.rule, date(tt.windowStart), date(tt.windowEnd))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandDeterministic(t *testing.T) {
	rule := Rule{Frequency: Weekly, Interval: 3, StartDate: date("2025-01-08"),
		ByWeekday: []time.Weekday{time.Wednesday, time.Friday}}

	first, err := Expand(rule, date("2025-01-01"), date("2025-12-31"))
	require.NoError(t, err)
	second, err := Expand(rule, date("2025-01-01"), date("2025-12-31"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpandCountIsGlobal(t *testing.T) {
	// 10 daily occurrences from Jan 1. A window starting Jan 8 must see only
	// the tail of the same canonical numbering, not 10 fresh dates.
	rule := Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
		Count: mo.Some(10)}

	full, err := Expand(rule, date("2025-01-01"), date("2025-01-31"))
	require.NoError(t, err)
	require.Len(t, full, 10)
	assert.Equal(t, date("2025-01-10"), full[9])

	tail, err := Expand(rule, date("2025-01-08"), date("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, dates("2025-01-08", "2025-01-09", "2025-01-10"), tail)
}

func TestExpandWindowMonotonicity(t *testing.T) {
	rule := Rule{Frequency: Daily, Interval: 2, StartDate: date("2025-01-01"),
		Count: mo.Some(8)}

	narrow, err := Expand(rule, date("2025-01-01"), date("2025-01-07"))
	require.NoError(t, err)
	wide, err := Expand(rule, date("2025-01-01"), date("2025-02-28"))
	require.NoError(t, err)

	require.True(t, len(narrow) <= len(wide))
	assert.Equal(t, wide[:len(narrow)], narrow)
}

func TestExpandExceptionsDoNotConsumeCount(t *testing.T) {
	rule := Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
		Count: mo.Some(3), ExceptionDates: dates("2025-01-02")}

	got, err := Expand(rule, date("2025-01-01"), date("2025-01-31"))
	require.NoError(t, err)
	assert.Equal(t, dates("2025-01-01", "2025-01-03", "2025-01-04"), got)
}

func TestExpandHardHorizon(t *testing.T) {
	rule := Rule{Frequency: Yearly, Interval: 1, StartDate: date("2025-03-01")}

	got, err := Expand(rule, date("2025-01-01"), date("2099-12-31"))
	require.NoError(t, err)
	// Open-ended rules stop at the 20-year horizon, start year included.
	assert.Len(t, got, HardHorizonYears+1)
	assert.Equal(t, date("2045-03-01"), got[len(got)-1])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"unknown frequency", Rule{Frequency: "HOURLY", Interval: 1, StartDate: date("2025-01-01")}},
		{"zero interval", Rule{Frequency: Daily, Interval: 0, StartDate: date("2025-01-01")}},
		{"negative interval", Rule{Frequency: Daily, Interval: -2, StartDate: date("2025-01-01")}},
		{"missing start date", Rule{Frequency: Daily, Interval: 1}},
		{"until and count together", Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
			Until: mo.Some(date("2025-06-01")), Count: mo.Some(5)}},
		{"monthly with no selector", Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01")}},
		{"monthly with both selectors", Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01"),
			ByMonthDay: mo.Some(15), ByWeekday: []time.Weekday{time.Friday}, BySetPosition: mo.Some(1)}},
		{"monthly day out of range", Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01"),
			ByMonthDay: mo.Some(32)}},
		{"set position zero", Rule{Frequency: Monthly, Interval: 1, StartDate: date("2025-01-01"),
			ByWeekday: []time.Weekday{time.Friday}, BySetPosition: mo.Some(0)}},
		{"daily with weekday set", Rule{Frequency: Daily, Interval: 1, StartDate: date("2025-01-01"),
			ByWeekday: []time.Weekday{time.Monday}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rule)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)

			_, err = Expand(tt.rule, date("2025-01-01"), date("2025-12-31"))
			assert.Error(t, err, "Expand must fail fast, not silently never-match")
		})
	}
}

func TestApplyExceptions(t *testing.T) {
	in := dates("2025-01-01", "2025-01-02", "2025-01-03")
	got := ApplyExceptions(in, dates("2025-01-02"))
	assert.Equal(t, dates("2025-01-01", "2025-01-03"), got)

	assert.Equal(t, in, ApplyExceptions(in, nil))
}
