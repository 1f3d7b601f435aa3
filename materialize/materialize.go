// Package materialize implements the write workflow that persists
// occurrences of recurring rules over a rolling horizon. Because expansion is
// a pure function of (rule, window), the set of dates that should exist can
// be diffed against the set already persisted without spurious adds or
// removes; re-running the job is idempotent.
package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
	"github.com/teamcal-dev/teamcal/storage"
)

// DefaultHorizonMonths is how far past "today" the scheduled job
// materializes.
const DefaultHorizonMonths = 3

// Plan is the computed difference between the occurrences a rule says should
// exist in a window and the ones already persisted there.
type Plan struct {
	MasterID string
	Create   []event.Occurrence
	Remove   []event.Occurrence
}

// Empty reports whether applying the plan would change nothing.
func (p Plan) Empty() bool { return len(p.Create) == 0 && len(p.Remove) == 0 }

// Materializer plans and applies occurrence materialization.
type Materializer struct {
	store   storage.Store
	horizon int // months
	logger  *slog.Logger
	today   func() dateutil.Date
}

// New builds a materializer. horizonMonths <= 0 means DefaultHorizonMonths;
// logger may be nil for slog.Default.
func New(store storage.Store, horizonMonths int, logger *slog.Logger) *Materializer {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		store:   store,
		horizon: horizonMonths,
		logger:  logger,
		today: func() dateutil.Date {
			now := time.Now().UTC()
			return dateutil.NewDate(now.Year(), now.Month(), now.Day())
		},
	}
}

// Plan computes the create/remove sets for one recurring template over
// [windowStart, windowEnd]. Exception/override records are never removed:
// they are authoritative edits, not stale expansion output.
func (m *Materializer) Plan(ctx context.Context, tmpl event.Template, windowStart, windowEnd dateutil.Date) (Plan, error) {
	if tmpl.DateType != event.Recurring || tmpl.Rule == nil {
		return Plan{}, &recurrence.ValidationError{Field: "dateType", Reason: "materialization needs a recurring template"}
	}

	dates, err := recurrence.Expand(*tmpl.Rule, windowStart, windowEnd)
	if err != nil {
		return Plan{}, err
	}
	want := make(map[dateutil.Date]struct{}, len(dates))
	for _, d := range dates {
		want[d] = struct{}{}
	}

	persisted, err := m.store.EventsInRange(ctx, windowStart, windowEnd)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to fetch persisted occurrences: %w", err)
	}

	plan := Plan{MasterID: tmpl.ID}
	have := make(map[dateutil.Date]struct{})
	for _, occ := range persisted {
		if occ.MasterID != tmpl.ID {
			continue
		}
		have[occ.Date] = struct{}{}
		if _, stillWanted := want[occ.Date]; !stillWanted && !occ.IsException {
			plan.Remove = append(plan.Remove, occ)
		}
	}

	for _, d := range dates {
		if _, exists := have[d]; exists {
			continue
		}
		occs, err := event.Expand(tmpl, d, d)
		if err != nil {
			return Plan{}, err
		}
		for _, occ := range occs {
			occ.Virtual = false
			plan.Create = append(plan.Create, occ)
		}
	}

	return plan, nil
}

// Apply writes the plan to storage. Per-item failures are collected in the
// returned result and logged; only a failure of the batch as a whole is an
// error.
func (m *Materializer) Apply(ctx context.Context, plan Plan) (storage.BatchResult, error) {
	var combined storage.BatchResult

	if len(plan.Create) > 0 {
		result, err := m.store.PutEvents(ctx, plan.Create)
		if err != nil {
			return combined, fmt.Errorf("failed to write occurrences for %q: %w", plan.MasterID, err)
		}
		combined.Items = append(combined.Items, result.Items...)
	}

	if len(plan.Remove) > 0 {
		ids := make([]string, 0, len(plan.Remove))
		for _, occ := range plan.Remove {
			ids = append(ids, occ.ID)
		}
		result, err := m.store.DeleteEvents(ctx, ids)
		if err != nil {
			return combined, fmt.Errorf("failed to delete stale occurrences for %q: %w", plan.MasterID, err)
		}
		combined.Items = append(combined.Items, result.Items...)
	}

	for _, item := range combined.Failed() {
		m.logger.Warn("materialization item failed", "master_id", plan.MasterID, "id", item.ID, "error", item.Err)
	}
	m.logger.Info("materialization applied",
		"master_id", plan.MasterID, "created", len(plan.Create), "removed", len(plan.Remove),
		"failed", len(combined.Failed()))
	return combined, nil
}

// RunOnce materializes every stored recurring template from today through
// the rolling horizon. Individual template failures are logged and skipped
// so one bad rule cannot starve the rest.
func (m *Materializer) RunOnce(ctx context.Context) error {
	templates, err := m.store.RecurringTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list recurring templates: %w", err)
	}

	start := m.today()
	end := start.AddMonths(m.horizon)

	for _, tmpl := range templates {
		plan, err := m.Plan(ctx, tmpl, start, end)
		if err != nil {
			m.logger.Error("failed to plan materialization", "master_id", tmpl.ID, "error", err)
			continue
		}
		if plan.Empty() {
			continue
		}
		if _, err := m.Apply(ctx, plan); err != nil {
			m.logger.Error("failed to apply materialization", "master_id", tmpl.ID, "error", err)
		}
	}
	return nil
}
