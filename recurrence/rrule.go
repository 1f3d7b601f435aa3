package recurrence

import (
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// RRULE interop for exchanging rules with iCalendar producers and consumers.
//
// Two engine behaviors have no RFC 5545 equivalent and are lost on export:
// month-end clamping of ByMonthDay (RRULE skips short months instead) and the
// Feb-29 to Feb-28 YEARLY fallback. Exported rules are otherwise equivalent.

// ROption converts a rule to an rrule-go option set, with DTSTART at the
// rule's start date.
func ROption(r Rule) (rrule.ROption, error) {
	if err := Validate(r); err != nil {
		return rrule.ROption{}, err
	}

	opt := rrule.ROption{
		Dtstart:  r.StartDate.Time(),
		Interval: r.Interval,
		Wkst:     rrule.MO,
	}

	switch r.Frequency {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
	case Yearly:
		opt.Freq = rrule.YEARLY
	}

	for _, wd := range r.ByWeekday {
		opt.Byweekday = append(opt.Byweekday, toRRuleWeekday(wd))
	}
	if day, ok := r.ByMonthDay.Get(); ok {
		opt.Bymonthday = []int{day}
	}
	if pos, ok := r.BySetPosition.Get(); ok {
		opt.Bysetpos = []int{pos}
	}
	if until, ok := r.Until.Get(); ok {
		opt.Until = until.Time()
	}
	if count, ok := r.Count.Get(); ok {
		opt.Count = count
	}

	return opt, nil
}

// RRuleString renders the rule as an RRULE property value (without the
// "RRULE:" prefix or DTSTART line).
func RRuleString(r Rule) (string, error) {
	opt, err := ROption(r)
	if err != nil {
		return "", err
	}
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("failed to build RRULE: %w", err)
	}
	return rr.String(), nil
}

// ParseRRule builds a Rule from an RRULE property value and a series start
// date. Multi-valued BYMONTHDAY/BYSETPOS lists collapse to their first entry;
// the engine's rule model carries at most one of each.
func ParseRRule(value string, start dateutil.Date) (Rule, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to parse RRULE %q: %w", value, err)
	}

	r := Rule{
		Interval:  opt.Interval,
		StartDate: start,
	}
	if r.Interval < 1 {
		r.Interval = 1
	}

	switch opt.Freq {
	case rrule.DAILY:
		r.Frequency = Daily
	case rrule.WEEKLY:
		r.Frequency = Weekly
	case rrule.MONTHLY:
		r.Frequency = Monthly
	case rrule.YEARLY:
		r.Frequency = Yearly
	default:
		return Rule{}, validationErr("frequency", "unsupported RRULE frequency %v", opt.Freq)
	}

	for _, wd := range opt.Byweekday {
		r.ByWeekday = append(r.ByWeekday, fromRRuleWeekday(wd))
	}
	if len(opt.Bymonthday) > 0 {
		r.ByMonthDay = mo.Some(opt.Bymonthday[0])
	}
	if len(opt.Bysetpos) > 0 {
		r.BySetPosition = mo.Some(opt.Bysetpos[0])
	}
	if !opt.Until.IsZero() {
		u := opt.Until.UTC()
		r.Until = mo.Some(dateutil.NewDate(u.Year(), u.Month(), u.Day()))
	}
	if opt.Count > 0 {
		r.Count = mo.Some(opt.Count)
	}

	if err := Validate(r); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func toRRuleWeekday(wd time.Weekday) rrule.Weekday {
	switch wd {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	// rrule-go numbers weekdays from Monday=0; time.Weekday from Sunday=0.
	return time.Weekday((wd.Day() + 1) % 7)
}
