// Package conflict implements resource conflict detection over expanded
// occurrences: participant and facility double-booking, equipment pool
// exhaustion, facility capacity, plus best-effort alternative suggestions.
// Conflicts are data, not errors; detection only fails on malformed input.
package conflict

import (
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// ResourceType identifies which kind of resource a conflict is about.
type ResourceType string

const (
	ResourceParticipant ResourceType = "participant"
	ResourceFacility    ResourceType = "facility"
	ResourceEquipment   ResourceType = "equipment"
)

// Record is one conflict for one resource against one overlapping event.
// Records are never deduplicated implicitly; a participant double-booked
// across three overlapping events yields three records. Use Dedupe when a
// caller wants one record per (type, id, date, start).
type Record struct {
	ResourceType ResourceType
	ResourceID   string
	Date         dateutil.Date
	StartTime    dateutil.ClockTime
	EndTime      dateutil.ClockTime
	EventTitle   string
	// Detail carries the quantity or capacity arithmetic for equipment and
	// capacity conflicts, empty otherwise.
	Detail string
}

// Severity is the coarse classification of a whole report.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Severity thresholds. A report is high when total records reach
// HighTotalThreshold or facility records reach HighFacilityThreshold; medium
// when total records reach MediumTotalThreshold or participant records reach
// MediumParticipantThreshold; low otherwise.
const (
	HighTotalThreshold         = 5
	HighFacilityThreshold      = 2
	MediumTotalThreshold       = 2
	MediumParticipantThreshold = 2
)

// Report is the outcome of a conflict check.
type Report struct {
	Records  []Record
	Severity Severity
}

// HasConflicts reports whether any record was produced.
func (r Report) HasConflicts() bool { return len(r.Records) > 0 }

// Facility is a bookable room with a static capacity (0 = unlimited).
type Facility struct {
	ID       string
	Name     string
	Capacity int
}

// Equipment is a pooled resource with a bookable quantity.
type Equipment struct {
	ID       string
	Name     string
	Quantity int
}

// Catalog is the static resource inventory consulted for quantity and
// capacity checks.
type Catalog struct {
	Facilities []Facility
	Equipment  []Equipment
}

func (c Catalog) facility(id string) (Facility, bool) {
	for _, f := range c.Facilities {
		if f.ID == id {
			return f, true
		}
	}
	return Facility{}, false
}

func (c Catalog) equipment(id string) (Equipment, bool) {
	for _, e := range c.Equipment {
		if e.ID == id {
			return e, true
		}
	}
	return Equipment{}, false
}

// Dedupe collapses records sharing (resourceType, resourceId, date,
// startTime), keeping the first in input order.
func Dedupe(records []Record) []Record {
	type key struct {
		rt    ResourceType
		id    string
		date  dateutil.Date
		start dateutil.ClockTime
	}
	seen := make(map[key]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		k := key{r.ResourceType, r.ResourceID, r.Date, r.StartTime}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
