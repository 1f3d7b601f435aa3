package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
)

func validSingle() Template {
	return Template{
		Title:     "standup",
		DateType:  Single,
		Date:      dateutil.MustParseDate("2025-03-10"),
		StartTime: dateutil.MustParseClock("10:00"),
		EndTime:   dateutil.MustParseClock("10:30"),
	}
}

func TestTemplateValidate(t *testing.T) {
	t.Run("valid single", func(t *testing.T) {
		assert.NoError(t, validSingle().Validate())
	})

	t.Run("valid range", func(t *testing.T) {
		tmpl := validSingle()
		tmpl.DateType = Range
		tmpl.Date = dateutil.Date{}
		tmpl.StartDate = dateutil.MustParseDate("2025-03-10")
		tmpl.EndDate = dateutil.MustParseDate("2025-03-12")
		assert.NoError(t, tmpl.Validate())
	})

	t.Run("valid recurring", func(t *testing.T) {
		tmpl := validSingle()
		tmpl.DateType = Recurring
		tmpl.Date = dateutil.Date{}
		tmpl.Rule = &recurrence.Rule{
			Frequency: recurrence.Weekly,
			Interval:  1,
			StartDate: dateutil.MustParseDate("2025-03-10"),
			ByWeekday: []time.Weekday{time.Monday},
		}
		assert.NoError(t, tmpl.Validate())
	})

	invalid := []struct {
		name   string
		mutate func(*Template)
	}{
		{"missing title", func(tm *Template) { tm.Title = "" }},
		{"end not after start", func(tm *Template) { tm.EndTime = tm.StartTime }},
		{"single without date", func(tm *Template) { tm.Date = dateutil.Date{} }},
		{"unknown date type", func(tm *Template) { tm.DateType = "sometimes" }},
		{"range missing dates", func(tm *Template) {
			tm.DateType = Range
		}},
		{"range end before start", func(tm *Template) {
			tm.DateType = Range
			tm.StartDate = dateutil.MustParseDate("2025-03-12")
			tm.EndDate = dateutil.MustParseDate("2025-03-10")
		}},
		{"recurring without rule", func(tm *Template) { tm.DateType = Recurring }},
		{"recurring with invalid rule", func(tm *Template) {
			tm.DateType = Recurring
			tm.Rule = &recurrence.Rule{Frequency: recurrence.Daily}
		}},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validSingle()
			tt.mutate(&tmpl)
			err := tmpl.Validate()
			require.Error(t, err)
			var verr *recurrence.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestTemplateDuration(t *testing.T) {
	tmpl := validSingle()
	assert.Equal(t, 30, tmpl.Duration())
}
