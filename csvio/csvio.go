// Package csvio imports and exports occurrences as CSV. Import is
// header-mapped and validates row by row; bad rows are reported individually
// instead of aborting the file.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
)

var header = []string{
	"id", "master_id", "title", "date", "end_date", "start_time", "end_time",
	"location", "description", "priority", "event_type", "private",
	"participants", "facilities", "equipment",
}

// listSeparator joins multi-valued id columns inside one CSV cell.
const listSeparator = ";"

// RowError reports a single rejected row; Line is 1-based and counts the
// header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Export writes the occurrences as CSV with a header row.
func Export(w io.Writer, occurrences []event.Occurrence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, occ := range occurrences {
		record := []string{
			occ.ID, occ.MasterID, occ.Title,
			occ.Date.String(), occ.EndDate.String(),
			occ.StartTime.String(), occ.EndTime.String(),
			occ.Location, occ.Description, string(occ.Priority), occ.EventType,
			boolString(occ.Private),
			strings.Join(occ.ParticipantIDs, listSeparator),
			strings.Join(occ.FacilityIDs, listSeparator),
			strings.Join(occ.EquipmentIDs, listSeparator),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads CSV rows into occurrences. Unknown header columns are
// ignored; missing required ones fail the whole import. Invalid rows come
// back as RowErrors alongside the rows that did parse. Rows without an id
// get a fresh one.
func Import(r io.Reader) ([]event.Occurrence, []RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(head))
	for i, name := range head {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"title", "date", "start_time", "end_time"} {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("missing required CSV column %q", required)
		}
	}

	var out []event.Occurrence
	var rowErrs []RowError
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		occ, err := parseRow(columns, record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		out = append(out, occ)
	}
	return out, rowErrs, nil
}

func parseRow(columns map[string]int, record []string) (event.Occurrence, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	occ := event.Occurrence{
		ID:          field("id"),
		MasterID:    field("master_id"),
		Title:       field("title"),
		Location:    field("location"),
		Description: field("description"),
		Priority:    event.Priority(field("priority")),
		EventType:   field("event_type"),
		Private:     field("private") == "true",
	}
	if occ.ID == "" {
		occ.ID = event.NewID()
	}
	if occ.Title == "" {
		return event.Occurrence{}, fmt.Errorf("title is required")
	}

	var err error
	if occ.Date, err = dateutil.ParseDate(field("date")); err != nil {
		return event.Occurrence{}, err
	}
	occ.EndDate = occ.Date
	if endDate := field("end_date"); endDate != "" {
		if occ.EndDate, err = dateutil.ParseDate(endDate); err != nil {
			return event.Occurrence{}, err
		}
		if occ.EndDate.Before(occ.Date) {
			return event.Occurrence{}, fmt.Errorf("end_date %s before date %s", occ.EndDate, occ.Date)
		}
	}
	if occ.StartTime, err = dateutil.ParseClock(field("start_time")); err != nil {
		return event.Occurrence{}, err
	}
	if occ.EndTime, err = dateutil.ParseClock(field("end_time")); err != nil {
		return event.Occurrence{}, err
	}
	if occ.EndTime <= occ.StartTime {
		return event.Occurrence{}, fmt.Errorf("end_time %s not after start_time %s", occ.EndTime, occ.StartTime)
	}

	occ.ParticipantIDs = splitList(field("participants"))
	occ.FacilityIDs = splitList(field("facilities"))
	occ.EquipmentIDs = splitList(field("equipment"))
	return occ, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
