package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"encanto-system/models"
	"encanto-system/monitoring"
	"encanto-system/utils"
)

// horizonBand is a tolerance window around a lead-time boundary, expressed
// in hours until the event starts. The width absorbs scan-interval
// granularity: an hourly scan cannot hit the boundary exactly.
type horizonBand struct {
	min   float64
	max   float64
	label string
}

var horizonBands = []horizonBand{
	{0.9, 1.1, "en 1 hora"},
	{23.5, 24.5, "mañana"},
	{167, 169, "en 1 semana"},
}

// matchBand returns the band the hours-until-start falls in, if any. Bounds
// are exclusive on both sides, matching the original windows.
func matchBand(hoursUntil float64) (horizonBand, bool) {
	for _, b := range horizonBands {
		if hoursUntil > b.min && hoursUntil < b.max {
			return b, true
		}
	}
	return horizonBand{}, false
}

type reminderNotifier interface {
	NotifyReminder(ctx context.Context, userID string, ev models.Event, when string)
}

type reminderSettings interface {
	Get(ctx context.Context, userID string) models.NotificationSettings
}

type armedReminder struct {
	reminder models.ScheduledReminder
	timer    *time.Timer
}

// ReminderScheduler owns both reminder mechanisms: deferred one-shot timers
// armed at create/update time, and the periodic horizon scan over the live
// event set. All armed handles are tracked per event id so an update or
// delete cancels stale timers instead of letting them fire for a gone or
// rescheduled event.
type ReminderScheduler struct {
	notifier reminderNotifier
	settings reminderSettings
	monitor  *monitoring.Monitor
	clock    utils.Clock
	leads    []time.Duration

	mu    sync.Mutex
	armed map[string][]armedReminder
}

func NewReminderScheduler(notifier reminderNotifier, settings reminderSettings, monitor *monitoring.Monitor, clock utils.Clock, leads []time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		notifier: notifier,
		settings: settings,
		monitor:  monitor,
		clock:    clock,
		leads:    leads,
		armed:    make(map[string][]armedReminder),
	}
}

// ArmEventReminders arms one deferred timer per configured lead time whose
// fire instant is still strictly in the future. Already-elapsed windows are
// skipped silently: there is no catch-up firing. Returns how many timers
// were armed.
func (s *ReminderScheduler) ArmEventReminders(ctx context.Context, ev models.Event) int {
	if !s.settings.Get(ctx, ev.CreatedBy).EventReminders {
		return 0
	}

	now := s.clock.Now()
	armed := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lead := range s.leads {
		fireAt := ev.StartDate.Add(-lead)
		if !fireAt.After(now) {
			continue
		}

		lead := lead
		event := ev
		timer := time.AfterFunc(fireAt.Sub(now), func() {
			s.fireDeferred(event, lead)
		})

		s.armed[ev.ID] = append(s.armed[ev.ID], armedReminder{
			reminder: models.ScheduledReminder{
				EventID:    ev.ID,
				EventTitle: ev.Title,
				Lead:       lead,
				FireAt:     fireAt,
			},
			timer: timer,
		})
		s.monitor.TrackReminderArmed()
		armed++
	}

	return armed
}

func (s *ReminderScheduler) fireDeferred(ev models.Event, lead time.Duration) {
	ctx := context.Background()

	// Re-check the flag at fire time: the user may have disabled reminders
	// after the timer was armed.
	if !s.settings.Get(ctx, ev.CreatedBy).EventReminders {
		s.forget(ev.ID, lead)
		return
	}

	hours := int(lead / time.Hour)
	when := "en 1 hora"
	if hours != 1 {
		when = fmt.Sprintf("en %d horas", hours)
	}

	s.notifier.NotifyReminder(ctx, ev.CreatedBy, ev, when)
	s.monitor.TrackReminderFired("deferred")
	s.forget(ev.ID, lead)
}

// forget drops the bookkeeping entry for a fired timer.
func (s *ReminderScheduler) forget(eventID string, lead time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.armed[eventID][:0]
	for _, a := range s.armed[eventID] {
		if a.reminder.Lead != lead {
			remaining = append(remaining, a)
		}
	}
	if len(remaining) == 0 {
		delete(s.armed, eventID)
	} else {
		s.armed[eventID] = remaining
	}
}

// CancelEventReminders stops and drops every armed timer for the event.
func (s *ReminderScheduler) CancelEventReminders(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.armed[eventID] {
		a.timer.Stop()
	}
	delete(s.armed, eventID)
}

// RearmEventReminders replaces the event's timers after a reschedule.
func (s *ReminderScheduler) RearmEventReminders(ctx context.Context, ev models.Event) int {
	s.CancelEventReminders(ev.ID)
	return s.ArmEventReminders(ctx, ev)
}

// ArmedReminders returns a snapshot of the event's pending reminders.
func (s *ReminderScheduler) ArmedReminders(eventID string) []models.ScheduledReminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ScheduledReminder, 0, len(s.armed[eventID]))
	for _, a := range s.armed[eventID] {
		out = append(out, a.reminder)
	}
	return out
}

// HorizonScan sweeps upcoming events against the tolerance bands and fires
// a reminder for every match. Scans do not deduplicate across passes; an
// event that stays inside a band over two consecutive scans notifies twice
// (source behavior, kept deliberately). Returns the number fired.
func (s *ReminderScheduler) HorizonScan(ctx context.Context, events []models.Event) int {
	now := s.clock.Now()
	fired := 0

	for _, ev := range events {
		if ev.Status != models.StatusProximo {
			continue
		}
		if !s.settings.Get(ctx, ev.CreatedBy).EventReminders {
			continue
		}

		hoursUntil := ev.StartDate.Sub(now).Hours()
		band, ok := matchBand(hoursUntil)
		if !ok {
			continue
		}

		s.notifier.NotifyReminder(ctx, ev.CreatedBy, ev, band.label)
		s.monitor.TrackReminderFired(band.label)
		fired++
	}

	return fired
}

// Stop cancels every armed timer. Called once on teardown.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	stopped := 0
	for id, reminders := range s.armed {
		for _, a := range reminders {
			a.timer.Stop()
			stopped++
		}
		delete(s.armed, id)
	}
	if stopped > 0 {
		log.Printf("Reminder scheduler stopped, %d pending timers cancelled", stopped)
	}
}
