// Package sqlite is a file-backed Store using modernc.org/sqlite (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/teamcal-dev/teamcal/conflict"
	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
	"github.com/teamcal-dev/teamcal/storage"

	_ "modernc.org/sqlite"
)

// ISO dates compare correctly as strings, so range queries work on the raw
// date column.
const schema = `
CREATE TABLE IF NOT EXISTS events (
	id              TEXT PRIMARY KEY,
	master_id       TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL,
	date            TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	start_time      TEXT NOT NULL,
	end_time        TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	priority        TEXT NOT NULL DEFAULT '',
	event_type      TEXT NOT NULL DEFAULT '',
	private         INTEGER NOT NULL DEFAULT 0,
	participant_ids TEXT NOT NULL DEFAULT '[]',
	facility_ids    TEXT NOT NULL DEFAULT '[]',
	equipment_ids   TEXT NOT NULL DEFAULT '[]',
	is_exception    INTEGER NOT NULL DEFAULT 0,
	original_date   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_master ON events(master_id);

CREATE TABLE IF NOT EXISTS templates (
	id        TEXT PRIMARY KEY,
	recurring INTEGER NOT NULL,
	payload   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS facilities (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	capacity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	quantity INTEGER NOT NULL
);
`

// Store implements storage.Store on a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

const eventColumns = `id, master_id, title, date, end_date, start_time, end_time,
	location, description, priority, event_type, private,
	participant_ids, facility_ids, equipment_ids, is_exception, original_date`

func (s *Store) EventsInRange(ctx context.Context, start, end dateutil.Date) ([]event.Occurrence, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", storage.ErrInvalidInput, end, start)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date >= ? AND date <= ? ORDER BY date, start_time, id`,
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	return scanOccurrences(rows)
}

func (s *Store) EventsByResourceInRange(ctx context.Context, resourceType conflict.ResourceType, resourceID string, start, end dateutil.Date) ([]event.Occurrence, error) {
	// Resource id lists live in JSON columns; filter after the indexed range
	// scan rather than teaching SQL about the encoding.
	all, err := s.EventsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var out []event.Occurrence
	for _, occ := range all {
		var ids []string
		switch resourceType {
		case conflict.ResourceParticipant:
			ids = occ.ParticipantIDs
		case conflict.ResourceFacility:
			ids = occ.FacilityIDs
		case conflict.ResourceEquipment:
			ids = occ.EquipmentIDs
		default:
			return nil, fmt.Errorf("%w: unknown resource type %q", storage.ErrInvalidInput, resourceType)
		}
		for _, id := range ids {
			if id == resourceID {
				out = append(out, occ)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) PutEvents(ctx context.Context, occurrences []event.Occurrence) (storage.BatchResult, error) {
	result := storage.BatchResult{Items: make([]storage.BatchItem, 0, len(occurrences))}
	for _, occ := range occurrences {
		item := storage.BatchItem{ID: occ.ID}
		item.Err = s.putEvent(ctx, occ)
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *Store) putEvent(ctx context.Context, occ event.Occurrence) error {
	if occ.ID == "" {
		return fmt.Errorf("%w: occurrence has no id", storage.ErrInvalidInput)
	}

	participants, err := json.Marshal(occ.ParticipantIDs)
	if err != nil {
		return err
	}
	facilities, err := json.Marshal(occ.FacilityIDs)
	if err != nil {
		return err
	}
	equipment, err := json.Marshal(occ.EquipmentIDs)
	if err != nil {
		return err
	}

	originalDate := ""
	if !occ.OriginalDate.IsZero() {
		originalDate = occ.OriginalDate.String()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		occ.ID, occ.MasterID, occ.Title, occ.Date.String(), occ.EndDate.String(),
		occ.StartTime.String(), occ.EndTime.String(),
		occ.Location, occ.Description, string(occ.Priority), occ.EventType, boolToInt(occ.Private),
		string(participants), string(facilities), string(equipment),
		boolToInt(occ.IsException), originalDate)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) DeleteEvents(ctx context.Context, ids []string) (storage.BatchResult, error) {
	result := storage.BatchResult{Items: make([]storage.BatchItem, 0, len(ids))}
	for _, id := range ids {
		item := storage.BatchItem{ID: id}
		res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			item.Err = fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
		} else if n, _ := res.RowsAffected(); n == 0 {
			item.Err = fmt.Errorf("%w: occurrence %q", storage.ErrNotFound, id)
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *Store) RecurrenceRule(ctx context.Context, masterID string) (recurrence.Rule, error) {
	tmpl, err := s.template(ctx, masterID)
	if err != nil {
		return recurrence.Rule{}, err
	}
	if tmpl.Rule == nil {
		return recurrence.Rule{}, fmt.Errorf("%w: recurrence rule for master %q", storage.ErrNotFound, masterID)
	}
	return *tmpl.Rule, nil
}

func (s *Store) SaveTemplate(ctx context.Context, template event.Template) error {
	if template.ID == "" {
		return fmt.Errorf("%w: template has no id", storage.ErrInvalidInput)
	}
	if err := template.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	payload, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO templates (id, recurring, payload) VALUES (?, ?, ?)`,
		template.ID, boolToInt(template.DateType == event.Recurring), string(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) template(ctx context.Context, id string) (event.Template, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM templates WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return event.Template{}, fmt.Errorf("%w: template %q", storage.ErrNotFound, id)
	}
	if err != nil {
		return event.Template{}, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	var tmpl event.Template
	if err := json.Unmarshal([]byte(payload), &tmpl); err != nil {
		return event.Template{}, fmt.Errorf("failed to decode template %q: %w", id, err)
	}
	return tmpl, nil
}

func (s *Store) RecurringTemplates(ctx context.Context) ([]event.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM templates WHERE recurring = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []event.Template
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var tmpl event.Template
		if err := json.Unmarshal([]byte(payload), &tmpl); err != nil {
			return nil, fmt.Errorf("failed to decode template: %w", err)
		}
		out = append(out, tmpl)
	}
	return out, rows.Err()
}

// SetCatalog replaces the stored facility and equipment inventory.
func (s *Store) SetCatalog(ctx context.Context, catalog conflict.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM facilities`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM equipment`); err != nil {
		return err
	}
	for _, f := range catalog.Facilities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO facilities (id, name, capacity) VALUES (?, ?, ?)`, f.ID, f.Name, f.Capacity); err != nil {
			return err
		}
	}
	for _, e := range catalog.Equipment {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO equipment (id, name, quantity) VALUES (?, ?, ?)`, e.ID, e.Name, e.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Catalog(ctx context.Context) (conflict.Catalog, error) {
	var catalog conflict.Catalog

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, capacity FROM facilities ORDER BY id`)
	if err != nil {
		return catalog, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var f conflict.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Capacity); err != nil {
			return catalog, err
		}
		catalog.Facilities = append(catalog.Facilities, f)
	}
	if err := rows.Err(); err != nil {
		return catalog, err
	}

	eqRows, err := s.db.QueryContext(ctx, `SELECT id, name, quantity FROM equipment ORDER BY id`)
	if err != nil {
		return catalog, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer eqRows.Close()
	for eqRows.Next() {
		var e conflict.Equipment
		if err := eqRows.Scan(&e.ID, &e.Name, &e.Quantity); err != nil {
			return catalog, err
		}
		catalog.Equipment = append(catalog.Equipment, e)
	}
	return catalog, eqRows.Err()
}

func scanOccurrences(rows *sql.Rows) ([]event.Occurrence, error) {
	var out []event.Occurrence
	for rows.Next() {
		var (
			occ                                 event.Occurrence
			date, endDate, startTime, endTime   string
			priority, originalDate              string
			private, isException                int
			participants, facilities, equipment string
		)
		if err := rows.Scan(&occ.ID, &occ.MasterID, &occ.Title, &date, &endDate, &startTime, &endTime,
			&occ.Location, &occ.Description, &priority, &occ.EventType, &private,
			&participants, &facilities, &equipment, &isException, &originalDate); err != nil {
			return nil, err
		}

		var err error
		if occ.Date, err = dateutil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		if occ.EndDate, err = dateutil.ParseDate(endDate); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		if occ.StartTime, err = dateutil.ParseClock(startTime); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		if occ.EndTime, err = dateutil.ParseClock(endTime); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		if originalDate != "" {
			if occ.OriginalDate, err = dateutil.ParseDate(originalDate); err != nil {
				return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
			}
		}
		occ.Priority = event.Priority(priority)
		occ.Private = private != 0
		occ.IsException = isException != 0
		if err := json.Unmarshal([]byte(participants), &occ.ParticipantIDs); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		if err := json.Unmarshal([]byte(facilities), &occ.FacilityIDs); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		if err := json.Unmarshal([]byte(equipment), &occ.EquipmentIDs); err != nil {
			return nil, fmt.Errorf("corrupt event row %q: %w", occ.ID, err)
		}
		out = append(out, occ)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
