package conflict

import (
	"sort"

	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

// Scoring knobs for alternative time slots. Base score loses
// overlapPenalty per overlapping event; the time-of-day adjustments encode a
// mild business-hours preference (late morning favored, early evening
// penalized).
const (
	overlapPenalty       = 0.2
	morningBonus         = 0.2 // 09:00-11:59 starts
	earlyAfternoonBonus  = 0.1 // 13:00-15:59 starts
	eveningPenalty       = 0.1 // 17:00+ starts
	minSuggestionScore   = 0.5
	maxSlotSuggestions   = 5
	maxResourceProposals = 3
)

// Candidate start-time shifts, in minutes, tried in this order. Order is
// part of the contract: ties keep input order, so suggestions stay
// deterministic.
var slotShifts = []int{-60, 60, -30, 30}

// TimeSlot is a proposed alternative time with its heuristic score.
type TimeSlot struct {
	Date      dateutil.Date
	StartTime dateutil.ClockTime
	EndTime   dateutil.ClockTime
	Score     float64
}

// Suggestions is the advisory output of SuggestAlternatives. It never blocks
// a save; empty suggestions are a normal outcome.
type Suggestions struct {
	TimeSlots  []TimeSlot
	Facilities []Facility
	Equipment  []Equipment
}

// SuggestAlternatives proposes shifted time slots with fewer conflicts on the
// report's conflict dates, plus unselected facilities and equipment that
// could stand in for the contended ones. existing must cover the report's
// dates; scoring counts overlaps against it.
func (d *Detector) SuggestAlternatives(t event.Template, report Report, existing []event.Occurrence) Suggestions {
	var s Suggestions
	if !report.HasConflicts() {
		return s
	}

	s.TimeSlots = d.alternativeSlots(t, report, existing)

	var hasFacility, hasEquipment bool
	for _, r := range report.Records {
		switch r.ResourceType {
		case ResourceFacility:
			hasFacility = true
		case ResourceEquipment:
			hasEquipment = true
		}
	}
	if hasFacility {
		s.Facilities = d.alternativeFacilities(t)
	}
	if hasEquipment {
		s.Equipment = d.alternativeEquipment(t)
	}
	return s
}

func (d *Detector) alternativeSlots(t event.Template, report Report, existing []event.Occurrence) []TimeSlot {
	duration := t.Duration()

	var dates []dateutil.Date
	seen := make(map[dateutil.Date]struct{})
	for _, r := range report.Records {
		if _, dup := seen[r.Date]; dup {
			continue
		}
		seen[r.Date] = struct{}{}
		dates = append(dates, r.Date)
	}

	var slots []TimeSlot
	for _, date := range dates {
		for _, shift := range slotShifts {
			start := t.StartTime.AddMinutes(shift)
			end := start.AddMinutes(duration)
			if start < d.BusinessStart || end > d.BusinessEnd || end <= start {
				continue
			}
			score := d.scoreSlot(date, start, end, existing)
			if score > minSuggestionScore {
				slots = append(slots, TimeSlot{Date: date, StartTime: start, EndTime: end, Score: score})
			}
		}
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Score > slots[j].Score })
	if len(slots) > maxSlotSuggestions {
		slots = slots[:maxSlotSuggestions]
	}
	return slots
}

func (d *Detector) scoreSlot(date dateutil.Date, start, end dateutil.ClockTime, existing []event.Occurrence) float64 {
	overlaps := 0
	for _, e := range existing {
		if e.Date == date && dateutil.Overlaps(start, end, e.StartTime, e.EndTime) {
			overlaps++
		}
	}

	score := 1.0 - float64(overlaps)*overlapPenalty
	if score < 0 {
		score = 0
	}

	switch hour := start.Hour(); {
	case hour >= 9 && hour <= 11:
		score += morningBonus
	case hour >= 13 && hour <= 15:
		score += earlyAfternoonBonus
	case hour >= 17:
		score -= eveningPenalty
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func (d *Detector) alternativeFacilities(t event.Template) []Facility {
	var out []Facility
	for _, f := range d.Catalog.Facilities {
		if contains(t.FacilityIDs, f.ID) {
			continue
		}
		if f.Capacity > 0 && len(t.ParticipantIDs) > f.Capacity {
			continue
		}
		out = append(out, f)
		if len(out) == maxResourceProposals {
			break
		}
	}
	return out
}

func (d *Detector) alternativeEquipment(t event.Template) []Equipment {
	var out []Equipment
	for _, eq := range d.Catalog.Equipment {
		if contains(t.EquipmentIDs, eq.ID) || eq.Quantity <= 0 {
			continue
		}
		out = append(out, eq)
		if len(out) == maxResourceProposals {
			break
		}
	}
	return out
}
