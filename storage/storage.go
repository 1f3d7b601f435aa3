// Package storage defines the collaborator interfaces the calendar core
// consumes: date-range and per-resource event queries, recurrence-rule
// records, batch writes with per-item failure visibility, and the static
// resource catalog. Implementations live in the subpackages; please return
// the error values provided here.
package storage

import (
	"context"
	"errors"

	"github.com/teamcal-dev/teamcal/conflict"
	"github.com/teamcal-dev/teamcal/event"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/recurrence"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput is returned when the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input parameters")
	// ErrAlreadyExists is returned when a record with the same id exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrStorageUnavailable is returned when the backend is unavailable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store connects a backend (document database, SQL, in-memory) with the
// calendar core. Dates are inclusive on both ends of every range.
type Store interface {
	// EventsInRange retrieves materialized occurrences whose date lies in
	// [start, end].
	EventsInRange(ctx context.Context, start, end dateutil.Date) ([]event.Occurrence, error)
	// EventsByResourceInRange retrieves materialized occurrences in
	// [start, end] whose participant, facility or equipment list contains
	// resourceID.
	EventsByResourceInRange(ctx context.Context, resourceType conflict.ResourceType, resourceID string, start, end dateutil.Date) ([]event.Occurrence, error)
	// PutEvents persists occurrences. Partial failure is visible per item in
	// the result; a non-nil error means the batch as a whole never ran.
	PutEvents(ctx context.Context, occurrences []event.Occurrence) (BatchResult, error)
	// DeleteEvents removes occurrences by id. Missing ids are reported per
	// item, not as a batch error.
	DeleteEvents(ctx context.Context, ids []string) (BatchResult, error)

	// RecurrenceRule retrieves the rule record for a master event.
	RecurrenceRule(ctx context.Context, masterID string) (recurrence.Rule, error)
	// SaveTemplate stores (or replaces) a master template; recurring ones
	// carry the rule the read path and materializer expand.
	SaveTemplate(ctx context.Context, template event.Template) error
	// RecurringTemplates lists every stored template with a recurrence rule.
	RecurringTemplates(ctx context.Context) ([]event.Template, error)

	// Catalog retrieves the facility and equipment inventory consulted by
	// conflict detection.
	Catalog(ctx context.Context) (conflict.Catalog, error)
}

// BatchItem is the outcome of one write or delete within a batch.
type BatchItem struct {
	ID  string
	Err error
}

// BatchResult reports a batch operation item by item.
type BatchResult struct {
	Items []BatchItem
}

// Failed returns the items that did not succeed.
func (r BatchResult) Failed() []BatchItem {
	var out []BatchItem
	for _, item := range r.Items {
		if item.Err != nil {
			out = append(out, item)
		}
	}
	return out
}

// Ok reports whether every item in the batch succeeded.
func (r BatchResult) Ok() bool { return len(r.Failed()) == 0 }
