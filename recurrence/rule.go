// Package recurrence implements the canonical recurrence model: a single
// Rule type, a Matches predicate, and a pure Expand function that enumerates
// concrete occurrence dates inside an arbitrary window. Every other part of
// the system that needs recurrence semantics calls into this package rather
// than carrying its own copy of the date arithmetic.
package recurrence

import (
	"time"

	"github.com/samber/mo"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// Frequency is the base repetition unit of a rule.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// HardHorizonYears caps open-ended expansion at this many years past the
// rule's start date, so a rule with neither Until nor Count can never drive
// an unbounded scan.
const HardHorizonYears = 20

// Rule describes how an event repeats. Exactly one of Until set, Count set,
// or neither (open-ended, capped at HardHorizonYears) governs termination.
// On a MONTHLY rule, ByMonthDay and ByWeekday+BySetPosition are mutually
// exclusive.
type Rule struct {
	Frequency Frequency
	// Interval is the step in units of Frequency: every N days, weeks,
	// months or years. Must be >= 1.
	Interval int
	// ByWeekday restricts WEEKLY rules to the listed weekdays and, combined
	// with BySetPosition, selects the nth weekday on MONTHLY rules. An empty
	// set on a WEEKLY rule means the weekday of StartDate.
	ByWeekday []time.Weekday
	// ByMonthDay selects the "same date every month" MONTHLY mode. Days past
	// the end of a short month clamp to the month's last day.
	ByMonthDay mo.Option[int]
	// BySetPosition is the ordinal for the MONTHLY nth-weekday mode.
	// Negative values count from the end of the month (-1 = last).
	BySetPosition mo.Option[int]
	// StartDate is the first possible occurrence; no date before it ever
	// matches.
	StartDate dateutil.Date
	// Until is the inclusive end date of the series.
	Until mo.Option[dateutil.Date]
	// Count is the maximum number of occurrences across the whole series,
	// numbered from StartDate regardless of any query window.
	Count mo.Option[int]
	// ExceptionDates are dates excluded from the otherwise-matching series.
	ExceptionDates []dateutil.Date
}

// Weekdays is the ByWeekday set for the common Monday-to-Friday pattern.
func Weekdays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}

// IsException reports whether d is explicitly excluded from the series.
func (r Rule) IsException(d dateutil.Date) bool {
	for _, e := range r.ExceptionDates {
		if e == d {
			return true
		}
	}
	return false
}

// containsWeekday reports whether wd is in the rule's ByWeekday set.
func (r Rule) containsWeekday(wd time.Weekday) bool {
	for _, w := range r.ByWeekday {
		if w == wd {
			return true
		}
	}
	return false
}

// Horizon returns the last date expansion will ever consider for this rule:
// Until when set, otherwise HardHorizonYears past StartDate.
func (r Rule) Horizon() dateutil.Date {
	if until, ok := r.Until.Get(); ok {
		return until
	}
	return dateutil.NewDate(r.StartDate.Year+HardHorizonYears, r.StartDate.Month, r.StartDate.Day)
}

// ApplyExceptions filters exceptions out of an already-expanded date list.
// Separate from Expand so callers holding externally stored exception sets
// (e.g. per-series overrides) can layer them on the same way.
func ApplyExceptions(dates []dateutil.Date, exceptions []dateutil.Date) []dateutil.Date {
	if len(exceptions) == 0 {
		return dates
	}
	excluded := make(map[dateutil.Date]struct{}, len(exceptions))
	for _, e := range exceptions {
		excluded[e] = struct{}{}
	}
	out := dates[:0:0]
	for _, d := range dates {
		if _, skip := excluded[d]; !skip {
			out = append(out, d)
		}
	}
	return out
}
