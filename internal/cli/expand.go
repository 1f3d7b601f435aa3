package cli

import (
	"fmt"

	"github.com/samber/mo"
	"github.com/teamcal-dev/teamcal/recurrence"
)

// ExpandCmd prints the concrete occurrence dates of a rule inside a window.
type ExpandCmd struct {
	Freq     string `help:"Frequency: daily, weekly, monthly or yearly." required:""`
	Interval int    `help:"Step in units of the frequency." default:"1"`
	Start    string `help:"Series start date (YYYY-MM-DD)." required:""`
	Until    string `help:"Inclusive series end date."`
	Count    int    `help:"Maximum number of occurrences."`
	Weekdays string `help:"Weekday set, e.g. mon,wed,fri."`
	MonthDay int    `help:"Day of month for monthly rules."`
	SetPos   int    `help:"Ordinal weekday for monthly rules (-1 = last)."`
	Except   string `help:"Comma-separated exception dates."`
	From     string `help:"Window start (YYYY-MM-DD)." required:""`
	To       string `help:"Window end (YYYY-MM-DD)." required:""`
	Rrule    bool   `help:"Also print the rule as an RRULE string."`
}

func (c *ExpandCmd) Run(ctx *Context) error {
	rule, err := c.rule()
	if err != nil {
		return err
	}

	from, err := parseDateFlag("from", c.From)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", c.To)
	if err != nil {
		return err
	}

	dates, err := recurrence.Expand(rule, from, to)
	if err != nil {
		return err
	}

	if c.Rrule {
		value, err := recurrence.RRuleString(rule)
		if err != nil {
			return err
		}
		fmt.Printf("RRULE:%s\n", value)
	}
	for _, d := range dates {
		fmt.Println(d)
	}
	if len(dates) == 0 {
		ctx.Logger.Info("no occurrences in window", "from", c.From, "to", c.To)
	}
	return nil
}

func (c *ExpandCmd) rule() (recurrence.Rule, error) {
	var freq recurrence.Frequency
	switch c.Freq {
	case "daily":
		freq = recurrence.Daily
	case "weekly":
		freq = recurrence.Weekly
	case "monthly":
		freq = recurrence.Monthly
	case "yearly":
		freq = recurrence.Yearly
	case "weekdays":
		freq = recurrence.Weekly
	default:
		return recurrence.Rule{}, fmt.Errorf("unknown frequency %q", c.Freq)
	}

	start, err := parseDateFlag("start", c.Start)
	if err != nil {
		return recurrence.Rule{}, err
	}

	rule := recurrence.Rule{
		Frequency: freq,
		Interval:  c.Interval,
		StartDate: start,
	}

	if c.Freq == "weekdays" {
		rule.ByWeekday = recurrence.Weekdays()
	} else if c.Weekdays != "" {
		if rule.ByWeekday, err = parseWeekdays(c.Weekdays); err != nil {
			return recurrence.Rule{}, err
		}
	}
	if c.MonthDay != 0 {
		rule.ByMonthDay = mo.Some(c.MonthDay)
	}
	if c.SetPos != 0 {
		rule.BySetPosition = mo.Some(c.SetPos)
	}
	if c.Until != "" {
		until, err := parseDateFlag("until", c.Until)
		if err != nil {
			return recurrence.Rule{}, err
		}
		rule.Until = mo.Some(until)
	}
	if c.Count > 0 {
		rule.Count = mo.Some(c.Count)
	}
	for _, s := range splitIDs(c.Except) {
		d, err := parseDateFlag("except", s)
		if err != nil {
			return recurrence.Rule{}, err
		}
		rule.ExceptionDates = append(rule.ExceptionDates, d)
	}
	return rule, nil
}
