package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"encanto-system/models"
)

const eventsCollection = "events"

// PBEventStore persists events in the embedded PocketBase database and
// exposes its record hooks as the change feed.
type PBEventStore struct {
	app core.App
}

func NewPBEventStore(app core.App) *PBEventStore {
	return &PBEventStore{app: app}
}

func (s *PBEventStore) List(ctx context.Context, f Filter) ([]models.Event, error) {
	expr, params := buildFilterExpr(f)

	var records []*core.Record
	var err error

	if expr == "" {
		records = []*core.Record{}
		err = s.app.RecordQuery(eventsCollection).
			OrderBy("start_date ASC").
			WithContext(ctx).
			All(&records)
	} else {
		records, err = s.app.FindRecordsByFilter(eventsCollection, expr, "+start_date", 0, 0, params)
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]models.Event, 0, len(records))
	for _, r := range records {
		events = append(events, eventFromRecord(r))
	}
	return events, nil
}

func (s *PBEventStore) Get(ctx context.Context, id string) (models.Event, error) {
	record, err := s.app.FindRecordById(eventsCollection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return eventFromRecord(record), nil
}

func (s *PBEventStore) Create(ctx context.Context, in EventInput) (models.Event, error) {
	collection, err := s.app.FindCollectionByNameOrId(eventsCollection)
	if err != nil {
		return models.Event{}, fmt.Errorf("find events collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("title", in.Title)
	record.Set("description", in.Description)
	record.Set("location", in.Location)
	record.Set("start_date", in.StartDate.UTC())
	record.Set("end_date", in.EndDate.UTC())
	record.Set("category", string(in.Category))
	record.Set("status", string(in.Status))
	record.Set("created_by", in.CreatedBy)
	if in.MaxAttendees != nil {
		record.Set("max_attendees", *in.MaxAttendees)
	}

	if err := s.app.Save(record); err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}
	return eventFromRecord(record), nil
}

func (s *PBEventStore) Update(ctx context.Context, ev models.Event) error {
	record, err := s.app.FindRecordById(eventsCollection, ev.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find event %s: %w", ev.ID, err)
	}

	record.Set("title", ev.Title)
	record.Set("description", ev.Description)
	record.Set("location", ev.Location)
	record.Set("start_date", ev.StartDate.UTC())
	record.Set("end_date", ev.EndDate.UTC())
	record.Set("category", string(ev.Category))
	record.Set("status", string(ev.Status))
	if ev.MaxAttendees != nil {
		record.Set("max_attendees", *ev.MaxAttendees)
	} else {
		record.Set("max_attendees", nil)
	}

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("update event %s: %w", ev.ID, err)
	}
	return nil
}

func (s *PBEventStore) Delete(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById(eventsCollection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find event %s: %w", id, err)
	}
	if err := s.app.Delete(record); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// UpdateStatusBatch issues one UPDATE naming all matching ids. Going through
// dbx bypasses the record hooks, so reconciliation writes do not re-trigger
// the change feed.
func (s *PBEventStore) UpdateStatusBatch(ctx context.Context, ids []string, status models.EventStatus) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.app.DB().Update(
		eventsCollection,
		dbx.Params{
			"status":  string(status),
			"updated": time.Now().UTC().Format(types.DefaultDateLayout),
		},
		dbx.In("id", args...),
	).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("batch status update to %s: %w", status, err)
	}
	return nil
}

// Subscribe binds to the events record hooks. Hook bindings live for the
// app lifetime; unsubscribe flips a flag so a torn-down subscriber stops
// receiving callbacks.
func (s *PBEventStore) Subscribe(onChange func()) func() {
	var closed atomic.Bool

	notify := func(e *core.RecordEvent) error {
		if !closed.Load() {
			onChange()
		}
		return e.Next()
	}

	s.app.OnRecordAfterCreateSuccess(eventsCollection).BindFunc(notify)
	s.app.OnRecordAfterUpdateSuccess(eventsCollection).BindFunc(notify)
	s.app.OnRecordAfterDeleteSuccess(eventsCollection).BindFunc(notify)

	return func() { closed.Store(true) }
}

// buildFilterExpr translates a Filter into a PocketBase filter expression
// equivalent to Filter.Matches. `~` is PocketBase's case-insensitive
// contains operator.
func buildFilterExpr(f Filter) (string, dbx.Params) {
	var parts []string
	params := dbx.Params{}

	if !f.StartDate.IsZero() {
		parts = append(parts, "start_date >= {:from}")
		params["from"] = f.StartDate.UTC().Format(types.DefaultDateLayout)
	}
	if !f.EndDate.IsZero() {
		parts = append(parts, "end_date <= {:until}")
		params["until"] = f.EndDate.UTC().Format(types.DefaultDateLayout)
	}
	if f.hasCategory() {
		parts = append(parts, "category = {:category}")
		params["category"] = f.Category
	}
	if f.hasStatus() {
		parts = append(parts, "status = {:status}")
		params["status"] = f.Status
	}
	if f.Search != "" {
		parts = append(parts, "(title ~ {:search} || description ~ {:search} || location ~ {:search})")
		params["search"] = f.Search
	}

	return strings.Join(parts, " && "), params
}

func eventFromRecord(r *core.Record) models.Event {
	ev := models.Event{
		ID:               r.Id,
		Title:            r.GetString("title"),
		Description:      r.GetString("description"),
		Location:         r.GetString("location"),
		StartDate:        r.GetDateTime("start_date").Time(),
		EndDate:          r.GetDateTime("end_date").Time(),
		Category:         models.EventCategory(r.GetString("category")),
		Status:           models.EventStatus(r.GetString("status")),
		CurrentAttendees: r.GetInt("current_attendees"),
		CreatedBy:        r.GetString("created_by"),
		CreatedAt:        r.GetDateTime("created").Time(),
		UpdatedAt:        r.GetDateTime("updated").Time(),
	}
	if max := r.GetInt("max_attendees"); max > 0 {
		ev.MaxAttendees = &max
	}
	return ev
}
