// Package calendar implements the read path: materialized occurrences from
// storage merged with virtual occurrences synthesized from recurrence rules
// that have not been materialized for the requested window. Materialized
// records are authoritative and suppress regeneration of the same date.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/teamcal-dev/teamcal/cache"
	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/storage"
)

// DefaultWindowTTL is how long a window query result stays cached.
const DefaultWindowTTL = 15 * time.Minute

// Service answers calendar window queries.
type Service struct {
	store  storage.Store
	cache  *cache.Cache[[]event.Occurrence]
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds a read service. cache may be nil to disable caching;
// logger may be nil for slog.Default.
func NewService(store storage.Store, c *cache.Cache[[]event.Occurrence], ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultWindowTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: c, ttl: ttl, logger: logger}
}

// EventsInWindow returns every occurrence, materialized or virtual, with a
// date in [start, end], ordered by date then start time.
func (s *Service) EventsInWindow(ctx context.Context, start, end dateutil.Date) ([]event.Occurrence, error) {
	if s.cache == nil {
		return s.loadWindow(ctx, start, end)
	}

	key := fmt.Sprintf("window/%s/%s", start, end)
	result, err := s.cache.Get(ctx, key, s.ttl, func(ctx context.Context) ([]event.Occurrence, error) {
		return s.loadWindow(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}
	if result.FromCache {
		s.logger.Debug("window served from cache", "start", start.String(), "end", end.String(), "age", time.Since(result.Timestamp))
	}
	return result.Value, nil
}

// Invalidate drops the cached result for one window. Write flows call this
// after materializing into the window.
func (s *Service) Invalidate(start, end dateutil.Date) {
	if s.cache != nil {
		s.cache.Invalidate(fmt.Sprintf("window/%s/%s", start, end))
	}
}

func (s *Service) loadWindow(ctx context.Context, start, end dateutil.Date) ([]event.Occurrence, error) {
	materialized, err := s.store.EventsInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events in range: %w", err)
	}

	templates, err := s.store.RecurringTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recurring templates: %w", err)
	}

	var virtual []event.Occurrence
	for _, tmpl := range templates {
		occs, err := event.Expand(tmpl, start, end)
		if err != nil {
			// A malformed stored rule should not take down the whole window.
			s.logger.Warn("skipping template with invalid rule", "master_id", tmpl.ID, "error", err)
			continue
		}
		virtual = append(virtual, occs...)
	}

	merged := Merge(materialized, virtual)
	s.logger.Debug("window loaded",
		"start", start.String(), "end", end.String(),
		"materialized", len(materialized), "virtual", len(virtual), "merged", len(merged))
	return merged, nil
}

// Merge combines materialized and virtual occurrences. When both carry the
// same (masterID, date), the materialized record wins; this is what makes
// persisted overrides authoritative over recomputation. Output is sorted by
// date, start time, then id.
func Merge(materialized, virtual []event.Occurrence) []event.Occurrence {
	type key struct {
		masterID string
		date     dateutil.Date
	}
	taken := make(map[key]struct{}, len(materialized))
	for _, occ := range materialized {
		taken[key{occ.MasterID, occ.Date}] = struct{}{}
	}

	out := make([]event.Occurrence, 0, len(materialized)+len(virtual))
	out = append(out, materialized...)
	for _, occ := range virtual {
		if _, exists := taken[key{occ.MasterID, occ.Date}]; exists {
			continue
		}
		out = append(out, occ)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}
