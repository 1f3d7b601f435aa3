package event

import (
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
)

// Bounds on the forward-looking window scanned when checking conflicts for an
// open-ended recurring template. Far-future virtual occurrences past these
// bounds are not worth warning about at creation time.
const (
	ConflictScanMonths      = 6
	ConflictScanOccurrences = 200
)

// Expand produces the template's concrete occurrences inside
// [windowStart, windowEnd]. Single templates yield at most one occurrence;
// range templates yield one per day of the span (each day conflicts
// independently); recurring templates delegate to the recurrence engine.
func Expand(t Template, windowStart, windowEnd dateutil.Date) ([]Occurrence, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if windowEnd.Before(windowStart) {
		return nil, &recurrence.ValidationError{Field: "window", Reason: "end before start"}
	}

	switch t.DateType {
	case Single:
		if t.Date.Before(windowStart) || t.Date.After(windowEnd) {
			return nil, nil
		}
		return []Occurrence{occurrenceFromTemplate(t, t.Date, t.Date)}, nil

	case Range:
		var out []Occurrence
		for d := dateutil.MaxDate(t.StartDate, windowStart); !d.After(dateutil.MinDate(t.EndDate, windowEnd)); d = d.AddDays(1) {
			out = append(out, occurrenceFromTemplate(t, d, d))
		}
		return out, nil

	default: // Recurring, guaranteed by Validate
		dates, err := recurrence.Expand(*t.Rule, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		out := make([]Occurrence, 0, len(dates))
		for _, d := range dates {
			out = append(out, occurrenceFromTemplate(t, d, d))
		}
		return out, nil
	}
}

// ConflictCandidates expands the template over the window a conflict check
// should cover: the event's own dates for single and range templates, and a
// capped forward scan (ConflictScanMonths / ConflictScanOccurrences) for
// recurring ones.
func ConflictCandidates(t Template) ([]Occurrence, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	switch t.DateType {
	case Single:
		return Expand(t, t.Date, t.Date)
	case Range:
		return Expand(t, t.StartDate, t.EndDate)
	default:
		start := t.Rule.StartDate
		end := dateutil.MinDate(start.AddMonths(ConflictScanMonths), t.Rule.Horizon())
		occs, err := Expand(t, start, end)
		if err != nil {
			return nil, err
		}
		if len(occs) > ConflictScanOccurrences {
			occs = occs[:ConflictScanOccurrences]
		}
		return occs, nil
	}
}
