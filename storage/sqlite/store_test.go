package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcal-dev/teamcal/conflict"
	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
	"github.com/teamcal-dev/teamcal/storage"
)

func d(s string) dateutil.Date { return dateutil.MustParseDate(s) }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEventRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	occ := event.Occurrence{
		ID:             "evt-1",
		MasterID:       "m1",
		Title:          "planning",
		Date:           d("2025-03-10"),
		EndDate:        d("2025-03-10"),
		StartTime:      dateutil.MustParseClock("10:00"),
		EndTime:        dateutil.MustParseClock("11:30"),
		Location:       "Room A",
		Description:    "quarterly planning",
		Priority:       event.PriorityHigh,
		EventType:      "meeting",
		Private:        true,
		ParticipantIDs: []string{"alice", "bob"},
		FacilityIDs:    []string{"room-a"},
		EquipmentIDs:   []string{"proj"},
		IsException:    true,
		OriginalDate:   d("2025-03-09"),
	}

	result, err := s.PutEvents(ctx, []event.Occurrence{occ})
	require.NoError(t, err)
	require.True(t, result.Ok())

	got, err := s.EventsInRange(ctx, d("2025-03-01"), d("2025-03-31"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, occ, got[0])
}

func TestEventsInRangeOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := event.Occurrence{
		Title:     "e",
		EndDate:   d("2025-03-10"),
		StartTime: dateutil.MustParseClock("10:00"),
		EndTime:   dateutil.MustParseClock("11:00"),
	}
	later := base
	later.ID, later.Date = "later", d("2025-03-11")
	later.EndDate = later.Date
	earlier := base
	earlier.ID, earlier.Date = "earlier", d("2025-03-10")
	sameDay := base
	sameDay.ID, sameDay.Date = "a-same-day", d("2025-03-10")
	sameDay.StartTime = dateutil.MustParseClock("09:00")

	_, err := s.PutEvents(ctx, []event.Occurrence{later, earlier, sameDay})
	require.NoError(t, err)

	got, err := s.EventsInRange(ctx, d("2025-03-01"), d("2025-03-31"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a-same-day", got[0].ID)
	assert.Equal(t, "earlier", got[1].ID)
	assert.Equal(t, "later", got[2].ID)

	_, err = s.EventsInRange(ctx, d("2025-03-31"), d("2025-03-01"))
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestEventsByResourceInRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	busy := event.Occurrence{
		ID: "busy", Title: "busy",
		Date: d("2025-03-10"), EndDate: d("2025-03-10"),
		StartTime: dateutil.MustParseClock("10:00"), EndTime: dateutil.MustParseClock("11:00"),
		FacilityIDs: []string{"room-a"},
	}
	other := busy
	other.ID, other.FacilityIDs = "other", []string{"room-b"}
	_, err := s.PutEvents(ctx, []event.Occurrence{busy, other})
	require.NoError(t, err)

	got, err := s.EventsByResourceInRange(ctx, conflict.ResourceFacility, "room-a", d("2025-03-01"), d("2025-03-31"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "busy", got[0].ID)

	_, err = s.EventsByResourceInRange(ctx, "robot", "r2", d("2025-03-01"), d("2025-03-31"))
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPutEventsUpsertsAndReportsPerItem(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	occ := event.Occurrence{
		ID: "evt-1", Title: "v1",
		Date: d("2025-03-10"), EndDate: d("2025-03-10"),
		StartTime: dateutil.MustParseClock("10:00"), EndTime: dateutil.MustParseClock("11:00"),
	}
	result, err := s.PutEvents(ctx, []event.Occurrence{occ, {Title: "no id"}})
	require.NoError(t, err)
	require.Len(t, result.Failed(), 1)
	assert.ErrorIs(t, result.Failed()[0].Err, storage.ErrInvalidInput)

	occ.Title = "v2"
	result, err = s.PutEvents(ctx, []event.Occurrence{occ})
	require.NoError(t, err)
	require.True(t, result.Ok())

	got, err := s.EventsInRange(ctx, d("2025-03-10"), d("2025-03-10"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Title)
}

func TestDeleteEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	occ := event.Occurrence{
		ID: "evt-1", Title: "e",
		Date: d("2025-03-10"), EndDate: d("2025-03-10"),
		StartTime: dateutil.MustParseClock("10:00"), EndTime: dateutil.MustParseClock("11:00"),
	}
	_, err := s.PutEvents(ctx, []event.Occurrence{occ})
	require.NoError(t, err)

	result, err := s.DeleteEvents(ctx, []string{"evt-1", "ghost"})
	require.NoError(t, err)
	require.Len(t, result.Failed(), 1)
	assert.ErrorIs(t, result.Failed()[0].Err, storage.ErrNotFound)

	got, err := s.EventsInRange(ctx, d("2025-03-01"), d("2025-03-31"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTemplateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tmpl := event.Template{
		ID:        "m1",
		Title:     "payday reminder",
		DateType:  event.Recurring,
		StartTime: dateutil.MustParseClock("09:00"),
		EndTime:   dateutil.MustParseClock("09:15"),
		Rule: &recurrence.Rule{
			Frequency:  recurrence.Monthly,
			Interval:   1,
			StartDate:  d("2025-01-25"),
			ByMonthDay: mo.Some(25),
			Count:      mo.Some(12),
			ExceptionDates: []dateutil.Date{
				d("2025-05-25"),
			},
		},
	}
	require.NoError(t, s.SaveTemplate(ctx, tmpl))

	rule, err := s.RecurrenceRule(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, *tmpl.Rule, rule)

	templates, err := s.RecurringTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, tmpl, templates[0])

	_, err = s.RecurrenceRule(ctx, "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveTemplateValidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.SaveTemplate(ctx, event.Template{Title: "no id"})
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	err = s.SaveTemplate(ctx, event.Template{ID: "bad"})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestCatalogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	catalog := conflict.Catalog{
		Facilities: []conflict.Facility{
			{ID: "hall", Name: "Hall", Capacity: 0},
			{ID: "room-a", Name: "Room A", Capacity: 4},
		},
		Equipment: []conflict.Equipment{
			{ID: "cam", Name: "Camera", Quantity: 1},
			{ID: "proj", Name: "Projector", Quantity: 2},
		},
	}
	require.NoError(t, s.SetCatalog(ctx, catalog))

	got, err := s.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog, got)

	// Replacing drops the old inventory.
	require.NoError(t, s.SetCatalog(ctx, conflict.Catalog{
		Facilities: []conflict.Facility{{ID: "room-b", Name: "Room B", Capacity: 10}},
	}))
	got, err = s.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, got.Facilities, 1)
	assert.Empty(t, got.Equipment)
}
