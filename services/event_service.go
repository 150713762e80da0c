package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"encanto-system/models"
	"encanto-system/monitoring"
	"encanto-system/store"
	"encanto-system/utils"
)

type reminderManager interface {
	ArmEventReminders(ctx context.Context, ev models.Event) int
	RearmEventReminders(ctx context.Context, ev models.Event) int
	CancelEventReminders(eventID string)
	HorizonScan(ctx context.Context, events []models.Event) int
	Stop()
}

type updateNotifier interface {
	NotifyEventUpdate(ctx context.Context, userID string, ev models.Event, kind string)
}

type statusReconciler interface {
	Reconcile(ctx context.Context) error
}

// EventService coordinates the event lifecycle: fetch-with-filter, writes
// with their reminder/notification side effects, periodic reconciliation
// and the change-feed subscription. It owns the authoritative in-memory
// snapshot the UI reads; nothing else writes it.
type EventService struct {
	store      store.EventStore
	reconciler statusReconciler
	reminders  reminderManager
	notifier   updateNotifier
	monitor    *monitoring.Monitor
	clock      utils.Clock

	reconcileEvery string
	horizonEvery   string

	cron        *cron.Cron
	unsubscribe func()

	mu         sync.RWMutex
	events     []models.Event
	lastFilter store.Filter

	loading  atomic.Bool
	fetchGen atomic.Uint64
}

func NewEventService(
	eventStore store.EventStore,
	reconciler statusReconciler,
	reminders reminderManager,
	notifier updateNotifier,
	monitor *monitoring.Monitor,
	clock utils.Clock,
	reconcileEvery, horizonEvery string,
) *EventService {
	return &EventService{
		store:          eventStore,
		reconciler:     reconciler,
		reminders:      reminders,
		notifier:       notifier,
		monitor:        monitor,
		clock:          clock,
		reconcileEvery: reconcileEvery,
		horizonEvery:   horizonEvery,
	}
}

// Start runs the initial reconcile+fetch, subscribes to the change feed and
// schedules the recurring jobs. The cron instance is the single owner of
// the recurring handles; Shutdown tears everything down in one call.
func (s *EventService) Start(ctx context.Context) error {
	if err := s.ReconcileStatuses(ctx); err != nil {
		// Non-fatal: the next tick self-corrects.
		log.Printf("Initial status reconciliation failed: %v", err)
	}

	s.unsubscribe = s.store.Subscribe(s.onStoreChange)

	c := cron.New()
	if _, err := c.AddFunc("@every "+s.reconcileEvery, func() {
		if err := s.ReconcileStatuses(context.Background()); err != nil {
			log.Printf("Scheduled status reconciliation failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule reconciliation: %w", err)
	}
	if _, err := c.AddFunc("@every "+s.horizonEvery, func() {
		s.reminders.HorizonScan(context.Background(), s.Events())
	}); err != nil {
		return fmt.Errorf("schedule horizon scan: %w", err)
	}
	c.Start()
	s.cron = c

	log.Printf("Event coordinator started (reconcile @%s, horizon scan @%s)", s.reconcileEvery, s.horizonEvery)
	return nil
}

// onStoreChange handles a change-feed fire: any change, regardless of
// field, triggers an opportunistic reconcile and a re-fetch.
func (s *EventService) onStoreChange() {
	go func() {
		if err := s.ReconcileStatuses(context.Background()); err != nil {
			log.Printf("Change-feed reconciliation failed: %v", err)
		}
	}()
}

// Fetch loads the filtered event list, installs it as the snapshot and runs
// a horizon scan over the result. Overlapping fetches are resolved by a
// generation counter: only the latest issued request may install its
// response, stale ones are discarded.
func (s *EventService) Fetch(ctx context.Context, f store.Filter) ([]models.Event, error) {
	gen := s.fetchGen.Add(1)

	s.loading.Store(true)
	defer s.loading.Store(false)

	events, err := s.store.List(ctx, f)
	if err != nil {
		// Read failure: snapshot keeps its previous value.
		log.Printf("Error fetching events: %v", err)
		return nil, err
	}

	if s.fetchGen.Load() != gen {
		s.monitor.TrackFetchDiscard()
		return events, nil
	}

	s.mu.Lock()
	s.events = events
	s.lastFilter = f
	s.mu.Unlock()
	s.monitor.SetEventCount(len(events))

	s.reminders.HorizonScan(ctx, events)

	return s.Events(), nil
}

// Create writes the event, arms its reminders and refreshes the snapshot.
// The persisted status starts as the derived status, not a caller value.
func (s *EventService) Create(ctx context.Context, in store.EventInput) (models.Event, error) {
	in.Status = DeriveStatus(models.Event{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    models.StatusProximo,
	}, s.clock.Now())

	created, err := s.store.Create(ctx, in)
	if err != nil {
		return models.Event{}, err
	}

	s.reminders.ArmEventReminders(ctx, created)

	if _, err := s.Fetch(ctx, s.currentFilter()); err != nil {
		log.Printf("Refresh after create failed: %v", err)
	}

	return created, nil
}

// Update persists the changes, re-arms reminders against the (possibly
// moved) start date and notifies the owner. A changed start date renders
// the "rescheduled" template instead of the plain update one.
func (s *EventService) Update(ctx context.Context, ev models.Event) error {
	previous, err := s.store.Get(ctx, ev.ID)
	if err != nil {
		return err
	}

	ev.Status = DeriveStatus(ev, s.clock.Now())
	if err := s.store.Update(ctx, ev); err != nil {
		return err
	}

	s.reminders.RearmEventReminders(ctx, ev)

	kind := models.KindUpdated
	if !previous.StartDate.Equal(ev.StartDate) {
		kind = models.KindRescheduled
	}
	s.notifier.NotifyEventUpdate(ctx, ev.CreatedBy, ev, kind)

	if _, err := s.Fetch(ctx, s.currentFilter()); err != nil {
		log.Printf("Refresh after update failed: %v", err)
	}

	return nil
}

// Delete captures the record before removing it: the "cancelled"
// notification needs the title after the row is gone.
func (s *EventService) Delete(ctx context.Context, id string) error {
	captured, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.reminders.CancelEventReminders(id)
	s.notifier.NotifyEventUpdate(ctx, captured.CreatedBy, captured, models.KindCancelled)

	if _, err := s.Fetch(ctx, s.currentFilter()); err != nil {
		log.Printf("Refresh after delete failed: %v", err)
	}

	return nil
}

// ReconcileStatuses runs one reconciliation pass and refreshes the
// snapshot. Timer-driven callers log-and-drop the error; the manual
// refresh path surfaces it.
func (s *EventService) ReconcileStatuses(ctx context.Context) error {
	if err := s.reconciler.Reconcile(ctx); err != nil {
		return err
	}
	_, err := s.Fetch(ctx, s.currentFilter())
	return err
}

// Refresh is the manual refresh action: reconcile, then re-fetch with the
// current filters.
func (s *EventService) Refresh(ctx context.Context) ([]models.Event, error) {
	if err := s.reconciler.Reconcile(ctx); err != nil {
		return nil, err
	}
	return s.Fetch(ctx, s.currentFilter())
}

// Events returns a copy of the current snapshot.
func (s *EventService) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *EventService) Loading() bool {
	return s.loading.Load()
}

func (s *EventService) currentFilter() store.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFilter
}

// Shutdown unsubscribes from the change feed, stops the recurring jobs and
// cancels every armed reminder timer.
func (s *EventService) Shutdown() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cron != nil {
		s.cron.Stop()
	}
	s.reminders.Stop()
	log.Println("Event coordinator stopped")
}
