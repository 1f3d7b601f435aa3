package recurrence

import (
	"time"

	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// Matches reports whether date is a valid occurrence under the rule. The
// check ignores ExceptionDates; exceptions are a set-membership layer applied
// after pattern matching (see ApplyExceptions) so that rule validity can be
// tested independently of per-series exclusions.
func Matches(date dateutil.Date, rule Rule) (bool, error) {
	if err := Validate(rule); err != nil {
		return false, err
	}
	return matches(date, rule), nil
}

// matches assumes a validated rule.
func matches(date dateutil.Date, rule Rule) bool {
	if date.Before(rule.StartDate) {
		return false
	}

	switch rule.Frequency {
	case Daily:
		return dateutil.DaysBetween(rule.StartDate, date)%rule.Interval == 0

	case Weekly:
		if dateutil.WeeksBetween(rule.StartDate, date)%rule.Interval != 0 {
			return false
		}
		if len(rule.ByWeekday) == 0 {
			return date.Weekday() == rule.StartDate.Weekday()
		}
		return rule.containsWeekday(date.Weekday())

	case Monthly:
		if dateutil.MonthsBetween(rule.StartDate, date)%rule.Interval != 0 {
			return false
		}
		if day, ok := rule.ByMonthDay.Get(); ok {
			// Clamp to the month's last day so "the 31st" still fires in
			// short months.
			want := day
			if last := dateutil.DaysInMonth(date.Year, date.Month); want > last {
				want = last
			}
			return date.Day == want
		}
		pos, _ := rule.BySetPosition.Get()
		return dateutil.IsNthWeekday(date, rule.ByWeekday[0], pos)

	case Yearly:
		if (date.Year-rule.StartDate.Year)%rule.Interval != 0 {
			return false
		}
		// Feb 29 anchors fall back to Feb 28 in non-leap years.
		if rule.StartDate.Month == time.February && rule.StartDate.Day == 29 && !dateutil.IsLeapYear(date.Year) {
			return date.Month == time.February && date.Day == 28
		}
		return date.Month == rule.StartDate.Month && date.Day == rule.StartDate.Day

	default:
		return false
	}
}

// Expand enumerates, in ascending order, every occurrence of rule that falls
// inside [windowStart, windowEnd], both bounds inclusive. It is a pure
// function of its inputs: the same rule and window always produce the same
// dates, which is what lets the materialization workflow diff "should exist"
// against "already persisted" without spurious churn.
//
// Count is numbered globally from StartDate, so matches before windowStart
// still consume it; windowed queries over different sub-ranges of one rule
// therefore agree on a single canonical numbering. ExceptionDates are
// filtered out and do not consume Count.
//
// The scan is an intentional day-by-day walk rather than a closed-form jump:
// rule dimensions interact (e.g. "3rd Tuesday of every 2nd month") and the
// horizon bound keeps the walk finite.
func Expand(rule Rule, windowStart, windowEnd dateutil.Date) ([]dateutil.Date, error) {
	if err := Validate(rule); err != nil {
		return nil, err
	}
	if windowEnd.Before(windowStart) {
		return nil, validationErr("window", "end %s before start %s", windowEnd, windowStart)
	}

	scanEnd := dateutil.MinDate(windowEnd, rule.Horizon())

	// With a Count the walk has to start at StartDate to keep the global
	// numbering; without one, matching before the window is wasted work.
	cursor := rule.StartDate
	limit, hasLimit := rule.Count.Get()
	if !hasLimit {
		cursor = dateutil.MaxDate(rule.StartDate, windowStart)
	}

	var out []dateutil.Date
	produced := 0
	for !cursor.After(scanEnd) {
		if matches(cursor, rule) && !rule.IsException(cursor) {
			produced++
			if !cursor.Before(windowStart) {
				out = append(out, cursor)
			}
			if hasLimit && produced >= limit {
				break
			}
		}
		cursor = cursor.AddDays(1)
	}
	return out, nil
}
