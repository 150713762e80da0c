package services

import (
	"context"
	"fmt"
	"time"

	"encanto-system/models"
	"encanto-system/monitoring"
	"encanto-system/store"
	"encanto-system/utils"
)

// DeriveStatus computes the lifecycle status an event should carry at the
// given instant. The persisted status field is only a write-behind cache of
// this function. Terminal statuses (finalizado, cancelado) never move; in
// particular cancelado is only ever set by the deletion path.
func DeriveStatus(ev models.Event, now time.Time) models.EventStatus {
	if ev.Status.Terminal() {
		return ev.Status
	}
	if !now.Before(ev.EndDate) {
		return models.StatusFinalizado
	}
	if !now.Before(ev.StartDate) {
		return models.StatusEnCurso
	}
	return models.StatusProximo
}

// StatusReconciler moves persisted event statuses forward in time with two
// batched writes per pass instead of one write per event.
type StatusReconciler struct {
	store   store.EventStore
	monitor *monitoring.Monitor
	clock   utils.Clock
}

func NewStatusReconciler(eventStore store.EventStore, monitor *monitoring.Monitor, clock utils.Clock) *StatusReconciler {
	return &StatusReconciler{
		store:   eventStore,
		monitor: monitor,
		clock:   clock,
	}
}

// Reconcile runs one pass: partition the live event set into "needs
// en_curso" and "needs finalizado", then issue one batched update per
// partition. Running it again without a time advance is a no-op.
func (r *StatusReconciler) Reconcile(ctx context.Context) error {
	events, err := r.store.List(ctx, store.Filter{})
	if err != nil {
		r.monitor.TrackReconcile("error")
		return fmt.Errorf("reconcile: %w", err)
	}

	now := r.clock.Now()

	var toOngoing, toFinished []string
	for _, ev := range events {
		target := DeriveStatus(ev, now)
		if target == ev.Status {
			continue
		}
		switch target {
		case models.StatusEnCurso:
			toOngoing = append(toOngoing, ev.ID)
		case models.StatusFinalizado:
			toFinished = append(toFinished, ev.ID)
		}
	}

	if len(toOngoing) > 0 {
		if err := r.store.UpdateStatusBatch(ctx, toOngoing, models.StatusEnCurso); err != nil {
			r.monitor.TrackReconcile("error")
			return fmt.Errorf("reconcile: %w", err)
		}
		r.monitor.TrackTransitions(string(models.StatusEnCurso), len(toOngoing))
	}

	if len(toFinished) > 0 {
		if err := r.store.UpdateStatusBatch(ctx, toFinished, models.StatusFinalizado); err != nil {
			r.monitor.TrackReconcile("error")
			return fmt.Errorf("reconcile: %w", err)
		}
		r.monitor.TrackTransitions(string(models.StatusFinalizado), len(toFinished))
	}

	r.monitor.TrackReconcile("ok")
	return nil
}
