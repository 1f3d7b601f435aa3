// Package memory is a map-backed Store for tests and examples.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/teamcal-dev/teamcal/conflict"
	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
	"github.com/teamcal-dev/teamcal/storage"
)

// Store implements storage.Store using in-memory maps.
type Store struct {
	mu        sync.RWMutex
	events    map[string]event.Occurrence // key: occurrence ID
	templates map[string]event.Template   // key: template ID
	catalog   conflict.Catalog
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		events:    make(map[string]event.Occurrence),
		templates: make(map[string]event.Template),
	}
}

// SetCatalog replaces the resource inventory.
func (s *Store) SetCatalog(catalog conflict.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

func (s *Store) EventsInRange(_ context.Context, start, end dateutil.Date) ([]event.Occurrence, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", storage.ErrInvalidInput, end, start)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []event.Occurrence
	for _, occ := range s.events {
		if occ.Date.Before(start) || occ.Date.After(end) {
			continue
		}
		out = append(out, occ)
	}
	sortOccurrences(out)
	return out, nil
}

func (s *Store) EventsByResourceInRange(ctx context.Context, resourceType conflict.ResourceType, resourceID string, start, end dateutil.Date) ([]event.Occurrence, error) {
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

func (s *Store) PutEvents(_ context.Context, occurrences []event.Occurrence) (storage.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := storage.BatchResult{Items: make([]storage.BatchItem, 0, len(occurrences))}
	for _, occ := range occurrences {
		item := storage.BatchItem{ID: occ.ID}
		if occ.ID == "" {
			item.Err = fmt.Errorf("%w: occurrence has no id", storage.ErrInvalidInput)
		} else {
			occ.Virtual = false
			s.events[occ.ID] = occ
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *Store) DeleteEvents(_ context.Context, ids []string) (storage.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := storage.BatchResult{Items: make([]storage.BatchItem, 0, len(ids))}
	for _, id := range ids {
		item := storage.BatchItem{ID: id}
		if _, ok := s.events[id]; !ok {
			item.Err = fmt.Errorf("%w: occurrence %q", storage.ErrNotFound, id)
		} else {
			delete(s.events, id)
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *Store) RecurrenceRule(_ context.Context, masterID string) (recurrence.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[masterID]
	if !ok || tmpl.Rule == nil {
		return recurrence.Rule{}, fmt.Errorf("%w: recurrence rule for master %q", storage.ErrNotFound, masterID)
	}
	return *tmpl.Rule, nil
}

func (s *Store) SaveTemplate(_ context.Context, template event.Template) error {
	if template.ID == "" {
		return fmt.Errorf("%w: template has no id", storage.ErrInvalidInput)
	}
	if err := template.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[template.ID] = template
	return nil
}

func (s *Store) RecurringTemplates(_ context.Context) ([]event.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []event.Template
	for _, tmpl := range s.templates {
		if tmpl.DateType == event.Recurring && tmpl.Rule != nil {
			out = append(out, tmpl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Catalog(_ context.Context) (conflict.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, nil
}

func sortOccurrences(occs []event.Occurrence) {
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].Date != occs[j].Date {
			return occs[i].Date.Before(occs[j].Date)
		}
		if occs[i].StartTime != occs[j].StartTime {
			return occs[i].StartTime < occs[j].StartTime
		}
		return occs[i].ID < occs[j].ID
	})
}
