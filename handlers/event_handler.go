package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"encanto-system/models"
	"encanto-system/services"
	"encanto-system/store"
)

type EventHandler struct {
	app    *pocketbase.PocketBase
	events *services.EventService
}

func NewEventHandler(app *pocketbase.PocketBase, events *services.EventService) *EventHandler {
	return &EventHandler{
		app:    app,
		events: events,
	}
}

type eventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Category     string `json:"category"`
	MaxAttendees *int   `json:"max_attendees"`
}

// validate enforces the form-layer invariants before anything reaches the
// core (which assumes start < end but must not crash without it).
func (r eventRequest) validate() (start, end time.Time, err error) {
	if r.Title == "" {
		return start, end, errors.New("title is required")
	}
	start, err = time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return start, end, errors.New("start_date must be RFC3339")
	}
	end, err = time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return start, end, errors.New("end_date must be RFC3339")
	}
	if !start.Before(end) {
		return start, end, errors.New("start_date must be before end_date")
	}
	if r.Category != "" && !models.EventCategory(r.Category).Valid() {
		return start, end, errors.New("unknown category")
	}
	return start, end, nil
}

// List - fetch events with optional filters
func (h *EventHandler) List(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	filter, err := parseEventFilters(e.Request.URL.Query())
	if err != nil {
		return apis.NewBadRequestError("Invalid filters", err)
	}

	events, err := h.events.Fetch(e.Request.Context(), filter)
	if err != nil {
		slog.Error("fetch events failed", "error", err)
		return apis.NewApiError(http.StatusBadGateway, "Error al cargar los eventos", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"events":  events,
		"loading": h.events.Loading(),
	})
}

// Create - create an event; the creator is the authenticated record
func (h *EventHandler) Create(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	start, end, err := req.validate()
	if err != nil {
		return apis.NewBadRequestError("Error al crear el evento", err)
	}

	category := models.EventCategory(req.Category)
	if req.Category == "" {
		category = models.CategoryOtro
	}

	created, err := h.events.Create(e.Request.Context(), store.EventInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartDate:    start,
		EndDate:      end,
		Category:     category,
		MaxAttendees: req.MaxAttendees,
		CreatedBy:    e.Auth.Id,
	})
	if err != nil {
		return apis.NewBadRequestError("Error al crear el evento", err)
	}

	return e.JSON(http.StatusCreated, created)
}

// Update - update an existing event
func (h *EventHandler) Update(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Event id required", nil)
	}

	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	start, end, err := req.validate()
	if err != nil {
		return apis.NewBadRequestError("Error al actualizar el evento", err)
	}

	category := models.EventCategory(req.Category)
	if req.Category == "" {
		category = models.CategoryOtro
	}

	err = h.events.Update(e.Request.Context(), models.Event{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartDate:    start,
		EndDate:      end,
		Category:     category,
		MaxAttendees: req.MaxAttendees,
		CreatedBy:    e.Auth.Id,
	})
	if errors.Is(err, store.ErrNotFound) {
		return apis.NewNotFoundError("Event not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Error al actualizar el evento", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Evento actualizado exitosamente"})
}

// Delete - delete an event (notifies "cancelled" with the captured title)
func (h *EventHandler) Delete(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	id := e.Request.PathValue("id")
	if id == "" {
		return apis.NewBadRequestError("Event id required", nil)
	}

	err := h.events.Delete(e.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return apis.NewNotFoundError("Event not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Error al eliminar el evento", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Evento eliminado exitosamente"})
}

// Refresh - manual refresh: reconcile statuses, then re-fetch
func (h *EventHandler) Refresh(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	events, err := h.events.Refresh(e.Request.Context())
	if err != nil {
		slog.Error("manual refresh failed", "error", err)
		return apis.NewApiError(http.StatusBadGateway, "Error al actualizar eventos", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"events": events})
}

// parseEventFilters maps the filter UI query params onto a store filter.
func parseEventFilters(q url.Values) (store.Filter, error) {
	f := store.Filter{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
	}

	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return store.Filter{}, errors.New("start_date must be RFC3339")
		}
		f.StartDate = t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return store.Filter{}, errors.New("end_date must be RFC3339")
		}
		f.EndDate = t
	}

	if f.Category != "" && f.Category != "all" && !models.EventCategory(f.Category).Valid() {
		return store.Filter{}, errors.New("unknown category")
	}
	if f.Status != "" && f.Status != "all" && !models.EventStatus(f.Status).Valid() {
		return store.Filter{}, errors.New("unknown status")
	}

	return f, nil
}
