package event

import (
	"github.com/google/uuid"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// Occurrence is one concrete, dated instance of an event. Occurrences are
// produced transiently by expansion; a subset may later be persisted
// ("materialized"), at which point the persisted record is authoritative for
// its date and suppresses virtual regeneration.
type Occurrence struct {
	ID       string
	MasterID string
	Title    string
	// Date is the occurrence's calendar date; EndDate equals Date except for
	// multi-day spans.
	Date        dateutil.Date
	EndDate     dateutil.Date
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

	// IsException marks an occurrence whose fields were edited independently
	// of its master rule; OriginalDate keeps the date it overrode.
	IsException  bool
	OriginalDate dateutil.Date
	// Virtual is true for occurrences computed on demand and false for
	// persisted ones.
	Virtual bool
}

// NewID returns a fresh occurrence identifier.
func NewID() string {
	return uuid.NewString()
}

// occurrenceFromTemplate copies the template's common fields onto a dated
// instance.
func occurrenceFromTemplate(t Template, date, endDate dateutil.Date) Occurrence {
	return Occurrence{
		ID:             NewID(),
		MasterID:       t.ID,
		Title:          t.Title,
		Date:           date,
		EndDate:        endDate,
		StartTime:      t.StartTime,
		EndTime:        t.EndTime,
		Location:       t.Location,
		Description:    t.Description,
		Priority:       t.Priority,
		EventType:      t.EventType,
		Private:        t.Private,
		ParticipantIDs: t.ParticipantIDs,
		FacilityIDs:    t.FacilityIDs,
		EquipmentIDs:   t.EquipmentIDs,
		Virtual:        true,
	}
}
