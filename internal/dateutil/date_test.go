package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 9}, d)

	for _, bad := range []string{"", "2025-3-9", "09-03-2025", "2025-13-01", "2025-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := MustParseDate("2025-01-31")

	assert.Equal(t, MustParseDate("2025-02-01"), d.AddDays(1))
	assert.Equal(t, MustParseDate("2025-01-30"), d.AddDays(-1))

	// AddMonths clamps to the last day of shorter months.
	assert.Equal(t, MustParseDate("2025-02-28"), d.AddMonths(1))
	assert.Equal(t, MustParseDate("2024-02-29"), MustParseDate("2024-01-31").AddMonths(1))
	assert.Equal(t, MustParseDate("2025-04-30"), d.AddMonths(3))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(MustParseDate("2025-01-01"), MustParseDate("2025-01-01")))
	assert.Equal(t, 31, DaysBetween(MustParseDate("2025-01-01"), MustParseDate("2025-02-01")))
	assert.Equal(t, -1, DaysBetween(MustParseDate("2025-01-02"), MustParseDate("2025-01-01")))
	// Spans a leap day.
	assert.Equal(t, 366, DaysBetween(MustParseDate("2024-01-01"), MustParseDate("2025-01-01")))
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 1, MonthsBetween(MustParseDate("2025-01-15"), MustParseDate("2025-02-28")))
	assert.Equal(t, 12, MonthsBetween(MustParseDate("2024-03-01"), MustParseDate("2025-03-31")))
	assert.Equal(t, -2, MonthsBetween(MustParseDate("2025-03-01"), MustParseDate("2025-01-15")))
}

func TestWeekStartAndWeeksBetween(t *testing.T) {
	// Weeks start on Monday.
	assert.Equal(t, MustParseDate("2025-01-06"), WeekStart(MustParseDate("2025-01-06")))
	assert.Equal(t, MustParseDate("2025-01-06"), WeekStart(MustParseDate("2025-01-12")))
	assert.Equal(t, MustParseDate("2025-01-13"), WeekStart(MustParseDate("2025-01-13")))

	assert.Equal(t, 0, WeeksBetween(MustParseDate("2025-01-06"), MustParseDate("2025-01-12")))
	assert.Equal(t, 1, WeeksBetween(MustParseDate("2025-01-06"), MustParseDate("2025-01-13")))
	// Sunday and the following Monday land in different weeks.
	assert.Equal(t, 1, WeeksBetween(MustParseDate("2025-01-12"), MustParseDate("2025-01-13")))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2025, time.January))
	assert.Equal(t, 28, DaysInMonth(2025, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 30, DaysInMonth(2025, time.April))
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.False(t, IsLeapYear(2025))
	assert.False(t, IsLeapYear(1900))
	assert.True(t, IsLeapYear(2000))
}

func TestNthWeekdayOfMonth(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		weekday time.Weekday
		n       int
		want    string
		ok      bool
	}{
		{"first monday", 2025, time.January, time.Monday, 1, "2025-01-06", true},
		{"third tuesday", 2025, time.January, time.Tuesday, 3, "2025-01-21", true},
		{"last friday of january", 2025, time.January, time.Friday, -1, "2025-01-31", true},
		{"last friday of february", 2025, time.February, time.Friday, -1, "2025-02-28", true},
		{"second to last sunday", 2025, time.January, time.Sunday, -2, "2025-01-19", true},
		{"fifth saturday exists", 2025, time.March, time.Saturday, 5, "2025-03-29", true},
		{"fifth monday does not exist", 2025, time.February, time.Monday, 5, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NthWeekdayOfMonth(tt.year, tt.month, tt.weekday, tt.n)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, MustParseDate(tt.want), got)
			}
		})
	}
}

func TestIsNthWeekday(t *testing.T) {
	assert.True(t, IsNthWeekday(MustParseDate("2025-01-31"), time.Friday, -1))
	assert.False(t, IsNthWeekday(MustParseDate("2025-01-24"), time.Friday, -1))
	assert.True(t, IsNthWeekday(MustParseDate("2025-01-21"), time.Tuesday, 3))
	assert.False(t, IsNthWeekday(MustParseDate("2025-01-21"), time.Wednesday, 3))
}

func TestCompareHelpers(t *testing.T) {
	a := MustParseDate("2025-01-01")
	b := MustParseDate("2025-06-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, a, MinDate(a, b))
	assert.Equal(t, b, MaxDate(a, b))
}
