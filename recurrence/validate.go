package recurrence

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed rule or template field. Malformed rules
// always fail fast; they are never silently treated as "never matches".
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants of a rule. Expand and Matches
// reject rules that do not pass.
func Validate(r Rule) error {
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return validationErr("frequency", "unknown frequency %q", string(r.Frequency))
	}

	if r.Interval < 1 {
		return validationErr("interval", "must be a positive integer, got %d", r.Interval)
	}

	if r.StartDate.IsZero() {
		return validationErr("startDate", "is required")
	}

	if r.Until.IsPresent() && r.Count.IsPresent() {
		return validationErr("until", "mutually exclusive with count")
	}
	if count, ok := r.Count.Get(); ok && count < 1 {
		return validationErr("count", "must be a positive integer, got %d", count)
	}

	for _, wd := range r.ByWeekday {
		if wd < time.Sunday || wd > time.Saturday {
			return validationErr("byWeekday", "weekday index %d out of range 0-6", int(wd))
		}
	}

	if day, ok := r.ByMonthDay.Get(); ok && (day < 1 || day > 31) {
		return validationErr("byMonthDay", "day %d out of range 1-31", day)
	}
	if pos, ok := r.BySetPosition.Get(); ok && (pos == 0 || pos < -5 || pos > 5) {
		return validationErr("bySetPosition", "ordinal %d out of range (-5..-1, 1..5)", pos)
	}

	switch r.Frequency {
	case Monthly:
		byDay := r.ByMonthDay.IsPresent()
		byPos := len(r.ByWeekday) > 0 && r.BySetPosition.IsPresent()
		if byDay && byPos {
			return validationErr("byMonthDay", "mutually exclusive with byWeekday+bySetPosition")
		}
		if !byDay && !byPos {
			return validationErr("frequency", "MONTHLY rule needs byMonthDay or byWeekday+bySetPosition")
		}
		if len(r.ByWeekday) > 1 {
			return validationErr("byWeekday", "MONTHLY rule takes a single weekday, got %d", len(r.ByWeekday))
		}
	case Weekly:
		if r.ByMonthDay.IsPresent() {
			return validationErr("byMonthDay", "only valid on MONTHLY rules")
		}
		if r.BySetPosition.IsPresent() {
			return validationErr("bySetPosition", "only valid on MONTHLY rules")
		}
	case Daily, Yearly:
		if len(r.ByWeekday) > 0 {
			return validationErr("byWeekday", "only valid on WEEKLY and MONTHLY rules")
		}
		if r.ByMonthDay.IsPresent() {
			return validationErr("byMonthDay", "only valid on MONTHLY rules")
		}
		if r.BySetPosition.IsPresent() {
			return validationErr("bySetPosition", "only valid on MONTHLY rules")
		}
	}

	return nil
}
