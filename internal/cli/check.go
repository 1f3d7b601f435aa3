package cli

import (
	"context"
	"fmt"

	"github.com/teamcal-dev/teamcal/conflict"
	"github.com/teamcal-dev/teamcal/event"
)

// CheckCmd runs conflict detection for a proposed single event against the
// stored calendar.
type CheckCmd struct {
	Date         string `help:"Event date (YYYY-MM-DD)." required:""`
	Start        string `help:"Start time (HH:MM)." required:""`
	End          string `help:"End time (HH:MM)." required:""`
	Title        string `help:"Event title." default:"(proposed event)"`
	Participants string `help:"Comma-separated participant ids."`
	Facilities   string `help:"Comma-separated facility ids."`
	Equipment    string `help:"Comma-separated equipment ids."`
	Exclude      string `help:"Event id to exclude (update flow)."`
	Suggest      bool   `help:"Propose alternative slots and resources."`
}

func (c *CheckCmd) Run(cliCtx *Context) error {
	ctx := context.Background()

	date, err := parseDateFlag("date", c.Date)
	if err != nil {
		return err
	}
	start, err := parseClockFlag("start", c.Start)
	if err != nil {
		return err
	}
	end, err := parseClockFlag("end", c.End)
	if err != nil {
		return err
	}

	tmpl := event.Template{
		ID:             event.NewID(),
		Title:          c.Title,
		DateType:       event.Single,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		ParticipantIDs: splitIDs(c.Participants),
		FacilityIDs:    splitIDs(c.Facilities),
		EquipmentIDs:   splitIDs(c.Equipment),
	}

	candidates, err := event.ConflictCandidates(tmpl)
	if err != nil {
		return err
	}

	existing, err := cliCtx.Store.EventsInRange(ctx, date, date)
	if err != nil {
		return err
	}
	existing = conflict.ExcludeEvent(existing, c.Exclude)

	catalog, err := cliCtx.Store.Catalog(ctx)
	if err != nil {
		return err
	}

	detector := conflict.NewDetector(catalog)
	if bh, err := parseClockFlag("business-hours-start", cliCtx.Config.BusinessHoursStart); err == nil {
		detector.BusinessStart = bh
	}
	if bh, err := parseClockFlag("business-hours-end", cliCtx.Config.BusinessHoursEnd); err == nil {
		detector.BusinessEnd = bh
	}

	report, err := detector.CheckConflicts(candidates, existing)
	if err != nil {
		return err
	}

	fmt.Printf("severity: %s, %d conflict(s)\n", report.Severity, len(report.Records))
	for _, r := range report.Records {
		line := fmt.Sprintf("  %s %s %s-%s %s: %q", r.ResourceType, r.ResourceID, r.StartTime, r.EndTime, r.Date, r.EventTitle)
		if r.Detail != "" {
			line += " (" + r.Detail + ")"
		}
		fmt.Println(line)
	}

	if c.Suggest && report.HasConflicts() {
		suggestions := detector.SuggestAlternatives(tmpl, report, existing)
		for _, slot := range suggestions.TimeSlots {
			fmt.Printf("  try %s %s-%s (score %.2f)\n", slot.Date, slot.StartTime, slot.EndTime, slot.Score)
		}
		for _, f := range suggestions.Facilities {
			fmt.Printf("  alternative facility: %s (%s)\n", f.Name, f.ID)
		}
		for _, eq := range suggestions.Equipment {
			fmt.Printf("  alternative equipment: %s (%s)\n", eq.Name, eq.ID)
		}
	}
	return nil
}
