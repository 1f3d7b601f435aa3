// Package dateutil provides the calendar-date and time-of-day primitives the
// recurrence and conflict packages are built on. Dates are pure civil dates
// (no zone, no clock) exchanged as ISO YYYY-MM-DD strings at the boundary.
package dateutil

import (
	"fmt"
	"time"
)

// ISO layout used at every external boundary.
const DateLayout = "2006-01-02"

// Date is a civil calendar date. The zero value is not a valid date; use
// IsZero to detect it. Date is comparable and safe to use as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing out-of-range values the way time.Date
// does (e.g. February 30 becomes March 1 or 2).
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseDate is ParseDate that panics on error. Intended for constants and
// tests, not for request-path input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Weekday returns the day of week (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := d.Time().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// AddMonths returns the date n calendar months after d, clamped to the last
// day of the target month when d.Day does not exist there.
func (d Date) AddMonths(n int) Date {
	y, m := d.Year, int(d.Month)+n
	// Normalize month into [1,12] adjusting the year.
	y += (m - 1) / 12
	m = (m-1)%12 + 1
	if m < 1 {
		m += 12
		y--
	}
	day := d.Day
	if last := DaysInMonth(y, time.Month(m)); day > last {
		day = last
	}
	return Date{Year: y, Month: time.Month(m), Day: day}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Compare returns -1, 0 or +1 comparing d against other chronologically.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// DaysBetween returns the number of days from a to b (negative if b is
// earlier than a).
func DaysBetween(a, b Date) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

// MonthsBetween returns the number of whole calendar months from a to b,
// counting month boundaries only (2025-01-31 to 2025-02-01 is one month).
func MonthsBetween(a, b Date) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

// WeekStart returns the Monday on or before d. The engine uses a fixed
// Monday week-start convention for week-offset arithmetic.
func WeekStart(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0 .. Sunday = 6
	return d.AddDays(-offset)
}

// WeeksBetween returns the number of Monday-start week boundaries from a to b.
func WeeksBetween(a, b Date) int {
	return DaysBetween(WeekStart(a), WeekStart(b)) / 7
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	t := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return t.Day()
}

// IsLeapYear reports whether year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// NthWeekdayOfMonth returns the nth occurrence of weekday in the given month.
// Negative n counts from the end of the month (-1 is the last occurrence).
// ok is false when the month has no such occurrence (e.g. n=5 in a month with
// only four of that weekday).
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (Date, bool) {
	if n == 0 {
		return Date{}, false
	}
	last := DaysInMonth(year, month)
	if n > 0 {
		first := Date{Year: year, Month: month, Day: 1}
		firstOffset := (int(weekday) - int(first.Weekday()) + 7) % 7
		day := 1 + firstOffset + (n-1)*7
		if day > last {
			return Date{}, false
		}
		return Date{Year: year, Month: month, Day: day}, true
	}
	lastDate := Date{Year: year, Month: month, Day: last}
	lastOffset := (int(lastDate.Weekday()) - int(weekday) + 7) % 7
	day := last - lastOffset + (n+1)*7
	if day < 1 {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// IsNthWeekday reports whether d is the nth occurrence of its weekday within
// its month, with negative n counting from the end.
func IsNthWeekday(d Date, weekday time.Weekday, n int) bool {
	want, ok := NthWeekdayOfMonth(d.Year, d.Month, weekday, n)
	return ok && want == d
}

// MinDate returns the earlier of a and b.
func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of a and b.
func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}
