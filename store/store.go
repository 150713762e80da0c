package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"encanto-system/models"
)

// ErrNotFound is returned when an event id does not resolve to a record.
var ErrNotFound = errors.New("store: event not found")

// Filter narrows event listings. Zero values mean "no constraint"; the
// literal "all" is accepted for category/status because that is what the
// filter UI submits.
type Filter struct {
	StartDate time.Time
	EndDate   time.Time
	Category  string
	Status    string
	Search    string
}

func (f Filter) hasCategory() bool {
	return f.Category != "" && f.Category != "all"
}

func (f Filter) hasStatus() bool {
	return f.Status != "" && f.Status != "all"
}

// Matches applies the filter predicate to a single event: inclusive lower
// bound on start, inclusive upper bound on end, exact category/status and a
// case-insensitive substring search ORed across title, description and
// location.
func (f Filter) Matches(ev models.Event) bool {
	if !f.StartDate.IsZero() && ev.StartDate.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && ev.EndDate.After(f.EndDate) {
		return false
	}
	if f.hasCategory() && string(ev.Category) != f.Category {
		return false
	}
	if f.hasStatus() && string(ev.Status) != f.Status {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(ev.Title), needle) &&
			!strings.Contains(strings.ToLower(ev.Description), needle) &&
			!strings.Contains(strings.ToLower(ev.Location), needle) {
			return false
		}
	}
	return true
}

// EventInput carries the fields a caller may set on create.
type EventInput struct {
	Title        string
	Description  string
	Location     string
	StartDate    time.Time
	EndDate      time.Time
	Category     models.EventCategory
	Status       models.EventStatus
	MaxAttendees *int
	CreatedBy    string
}

// EventStore is the persistence contract for event records plus a
// broadcast-capable change feed. Errors surface as-is; retry policy belongs
// to the caller.
type EventStore interface {
	List(ctx context.Context, f Filter) ([]models.Event, error)
	Get(ctx context.Context, id string) (models.Event, error)
	Create(ctx context.Context, in EventInput) (models.Event, error)
	Update(ctx context.Context, ev models.Event) error
	Delete(ctx context.Context, id string) error

	// UpdateStatusBatch sets the status on all named ids in one write.
	UpdateStatusBatch(ctx context.Context, ids []string, status models.EventStatus) error

	// Subscribe registers a coalesced "something changed" callback and
	// returns its unsubscribe. No payload guarantees.
	Subscribe(onChange func()) (unsubscribe func())
}
