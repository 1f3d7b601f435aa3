// Package event defines the user-facing event template, the concrete
// Occurrence derived from it, and the expansion of one into the other.
package event

import (
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
)

// DateType selects which date fields of a Template are populated.
type DateType string

const (
	// Single is one event on one date.
	Single DateType = "single"
	// Range is a consecutive multi-day span.
	Range DateType = "range"
	// Recurring is a series governed by a recurrence rule.
	Recurring DateType = "recurring"
)

// Priority classifies an event for display purposes.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Template is the validated form of an event before expansion. It is a
// tagged union on DateType: exactly one of Date, StartDate+EndDate, or Rule
// is consulted. Validation happens here, at the boundary, before anything
// reaches the recurrence engine or the conflict detector.
type Template struct {
	ID          string
	Title       string
	DateType    DateType
	Date        dateutil.Date // single
	StartDate   dateutil.Date // range
	EndDate     dateutil.Date // range
	Rule        *recurrence.Rule
	StartTime   dateutil.ClockTime
	EndTime     dateutil.ClockTime
	Location    string
	Description string
	Priority    Priority
	EventType   string
	Private     bool

	ParticipantIDs []string
	FacilityIDs    []string
	EquipmentIDs   []string
}

// Validate checks the template's structural invariants: a populated variant
// matching DateType, end time strictly after start time, and (for range) end
// date not before start date. Recurring templates also run rule validation.
func (t Template) Validate() error {
	if t.Title == "" {
		return &recurrence.ValidationError{Field: "title", Reason: "is required"}
	}
	if !t.StartTime.Valid() || !t.EndTime.Valid() {
		return &recurrence.ValidationError{Field: "startTime", Reason: "time of day out of range"}
	}
	if t.EndTime <= t.StartTime {
		return &recurrence.ValidationError{Field: "endTime", Reason: "must be after startTime"}
	}

	switch t.DateType {
	case Single:
		if t.Date.IsZero() {
			return &recurrence.ValidationError{Field: "date", Reason: "is required for single events"}
		}
	case Range:
		if t.StartDate.IsZero() || t.EndDate.IsZero() {
			return &recurrence.ValidationError{Field: "startDate", Reason: "start and end dates are required for range events"}
		}
		if t.EndDate.Before(t.StartDate) {
			return &recurrence.ValidationError{Field: "endDate", Reason: "must not be before startDate"}
		}
	case Recurring:
		if t.Rule == nil {
			return &recurrence.ValidationError{Field: "recurrenceRule", Reason: "is required for recurring events"}
		}
		if err := recurrence.Validate(*t.Rule); err != nil {
			return err
		}
	default:
		return &recurrence.ValidationError{Field: "dateType", Reason: "must be single, range or recurring"}
	}

	return nil
}

// Duration returns the event's time-of-day length in minutes.
func (t Template) Duration() int {
	return int(t.EndTime - t.StartTime)
}
