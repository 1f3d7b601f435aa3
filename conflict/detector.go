package conflict

import (
	"errors"
	"fmt"

	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// ErrInvalidCandidate is returned when a candidate occurrence is missing or
// has inverted time fields. Detection itself never errors on conflicts.
var ErrInvalidCandidate = errors.New("invalid candidate occurrence")

// Detector checks candidate occurrences against a pool of existing events.
// It is purely functional: it never fetches; callers pass in the existing
// events covering the candidates' date span along with the resource catalog.
type Detector struct {
	Catalog Catalog
	// Business hours bound the time slots SuggestAlternatives will propose.
	BusinessStart dateutil.ClockTime
	BusinessEnd   dateutil.ClockTime
}

// NewDetector builds a detector with default 08:00-20:00 business hours.
func NewDetector(catalog Catalog) *Detector {
	return &Detector{
		Catalog:       catalog,
		BusinessStart: dateutil.ClockTime(8 * 60),
		BusinessEnd:   dateutil.ClockTime(20 * 60),
	}
}

// ExcludeEvent filters the occurrence with the given id (or derived from the
// master with that id) out of the pool. Update flows use it so an event does
// not conflict with itself.
func ExcludeEvent(existing []event.Occurrence, id string) []event.Occurrence {
	if id == "" {
		return existing
	}
	out := existing[:0:0]
	for _, occ := range existing {
		if occ.ID == id || occ.MasterID == id {
			continue
		}
		out = append(out, occ)
	}
	return out
}

// CheckConflicts reports every resource conflict between the candidates and
// the existing pool. Per candidate occurrence: existing events on the same
// date whose time range overlaps (half-open; back-to-back is not a conflict)
// produce one record per shared participant or facility per overlapping
// event. Equipment conflicts once concurrent existing usage has consumed the
// pool; facility capacity is checked against the candidate alone, independent
// of any overlap.
func (d *Detector) CheckConflicts(candidates, existing []event.Occurrence) (Report, error) {
	for _, c := range candidates {
		if c.Date.IsZero() || !c.StartTime.Valid() || !c.EndTime.Valid() || c.EndTime <= c.StartTime {
			return Report{}, fmt.Errorf("%w: %q on %s (%s-%s)",
				ErrInvalidCandidate, c.Title, c.Date, c.StartTime, c.EndTime)
		}
	}

	var records []Record
	for _, c := range candidates {
		overlapping := overlappingOn(existing, c)

		records = append(records, participantConflicts(c, overlapping)...)
		records = append(records, facilityConflicts(c, overlapping)...)
		records = append(records, d.equipmentConflicts(c, overlapping)...)
		records = append(records, d.capacityConflicts(c)...)
	}

	return Report{Records: records, Severity: classify(records)}, nil
}

func overlappingOn(existing []event.Occurrence, c event.Occurrence) []event.Occurrence {
	var out []event.Occurrence
	for _, e := range existing {
		if e.Date != c.Date {
			continue
		}
		if dateutil.Overlaps(c.StartTime, c.EndTime, e.StartTime, e.EndTime) {
			out = append(out, e)
		}
	}
	return out
}

func participantConflicts(c event.Occurrence, overlapping []event.Occurrence) []Record {
	var records []Record
	for _, id := range c.ParticipantIDs {
		for _, e := range overlapping {
			if contains(e.ParticipantIDs, id) {
				records = append(records, Record{
					ResourceType: ResourceParticipant,
					ResourceID:   id,
					Date:         c.Date,
					StartTime:    e.StartTime,
					EndTime:      e.EndTime,
					EventTitle:   e.Title,
				})
			}
		}
	}
	return records
}

func facilityConflicts(c event.Occurrence, overlapping []event.Occurrence) []Record {
	var records []Record
	for _, id := range c.FacilityIDs {
		for _, e := range overlapping {
			if contains(e.FacilityIDs, id) {
				records = append(records, Record{
					ResourceType: ResourceFacility,
					ResourceID:   id,
					Date:         c.Date,
					StartTime:    e.StartTime,
					EndTime:      e.EndTime,
					EventTitle:   e.Title,
				})
			}
		}
	}
	return records
}

// equipmentConflicts models bookable pools: sharing an id is fine until the
// concurrent usage across overlapping events has consumed the configured
// quantity, then the candidate gets exactly one record for that pool.
func (d *Detector) equipmentConflicts(c event.Occurrence, overlapping []event.Occurrence) []Record {
	var records []Record
	for _, id := range c.EquipmentIDs {
		eq, ok := d.Catalog.equipment(id)
		if !ok || eq.Quantity <= 0 {
			continue
		}
		concurrent := 0
		for _, e := range overlapping {
			for _, usedID := range e.EquipmentIDs {
				if usedID == id {
					concurrent++
				}
			}
		}
		if concurrent >= eq.Quantity {
			records = append(records, Record{
				ResourceType: ResourceEquipment,
				ResourceID:   id,
				Date:         c.Date,
				StartTime:    c.StartTime,
				EndTime:      c.EndTime,
				EventTitle:   eq.Name,
				Detail:       fmt.Sprintf("%d of %d in use", concurrent, eq.Quantity),
			})
		}
	}
	return records
}

// capacityConflicts flags facilities whose static capacity the candidate's
// own participant list exceeds, regardless of other events.
func (d *Detector) capacityConflicts(c event.Occurrence) []Record {
	var records []Record
	for _, id := range c.FacilityIDs {
		f, ok := d.Catalog.facility(id)
		if !ok || f.Capacity <= 0 {
			continue
		}
		if len(c.ParticipantIDs) > f.Capacity {
			records = append(records, Record{
				ResourceType: ResourceFacility,
				ResourceID:   id,
				Date:         c.Date,
				StartTime:    0,
				EndTime:      dateutil.ClockTime(dateutil.MinutesPerDay),
				EventTitle:   f.Name,
				Detail:       fmt.Sprintf("%d participants over capacity %d", len(c.ParticipantIDs), f.Capacity),
			})
		}
	}
	return records
}

func classify(records []Record) Severity {
	if len(records) == 0 {
		return SeverityLow
	}
	var participants, facilities int
	for _, r := range records {
		switch r.ResourceType {
		case ResourceParticipant:
			participants++
		case ResourceFacility:
			facilities++
		}
	}
	switch {
	case len(records) >= HighTotalThreshold || facilities >= HighFacilityThreshold:
		return SeverityHigh
	case len(records) >= MediumTotalThreshold || participants >= MediumParticipantThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
