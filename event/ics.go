package event

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
)

const icsProductID = "-//teamcal//teamcal//EN"

// ICalendar renders templates as a VCALENDAR. Recurring templates carry an
// RRULE (and EXDATE entries for exception dates); range templates become one
// multi-day VEVENT; single templates one timed VEVENT.
func ICalendar(templates []Template) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	for _, t := range templates {
		ev, err := icsEvent(t)
		if err != nil {
			return nil, fmt.Errorf("failed to render event %q: %w", t.Title, err)
		}
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal, nil
}

// WriteICS encodes the templates to w in iCalendar format.
func WriteICS(w io.Writer, templates []Template) error {
	cal, err := ICalendar(templates)
	if err != nil {
		return err
	}
	return ical.NewEncoder(w).Encode(cal)
}

func icsEvent(t Template) (*ical.Event, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	ev := ical.NewEvent()
	uid := t.ID
	if uid == "" {
		uid = NewID()
	}
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ev.Props.SetText(ical.PropSummary, t.Title)
	if t.Description != "" {
		ev.Props.SetText(ical.PropDescription, t.Description)
	}
	if t.Location != "" {
		ev.Props.SetText(ical.PropLocation, t.Location)
	}

	switch t.DateType {
	case Single:
		ev.Props.SetDateTime(ical.PropDateTimeStart, clockOn(t.Date, t.StartTime))
		ev.Props.SetDateTime(ical.PropDateTimeEnd, clockOn(t.Date, t.EndTime))

	case Range:
		ev.Props.SetDateTime(ical.PropDateTimeStart, clockOn(t.StartDate, t.StartTime))
		ev.Props.SetDateTime(ical.PropDateTimeEnd, clockOn(t.EndDate, t.EndTime))

	case Recurring:
		ev.Props.SetDateTime(ical.PropDateTimeStart, clockOn(t.Rule.StartDate, t.StartTime))
		ev.Props.SetDateTime(ical.PropDateTimeEnd, clockOn(t.Rule.StartDate, t.EndTime))

		value, err := recurrence.RRuleString(*t.Rule)
		if err != nil {
			return nil, err
		}
		// Raw prop: SetText would escape the commas in BYDAY lists.
		ev.Props.Set(&ical.Prop{Name: ical.PropRecurrenceRule, Value: strings.TrimPrefix(value, "RRULE:")})

		if len(t.Rule.ExceptionDates) > 0 {
			values := make([]string, 0, len(t.Rule.ExceptionDates))
			for _, d := range t.Rule.ExceptionDates {
				values = append(values, d.Time().Format("20060102"))
			}
			exdate := ical.NewProp(ical.PropExceptionDates)
			exdate.Params.Set(ical.ParamValue, "DATE")
			exdate.Value = strings.Join(values, ",")
			ev.Props.Set(exdate)
		}
	}

	return ev, nil
}

func clockOn(d dateutil.Date, c dateutil.ClockTime) time.Time {
	return d.Time().Add(time.Duration(c) * time.Minute)
}
