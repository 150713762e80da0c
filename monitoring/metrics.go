package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcilePasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_reconcile_passes_total",
			Help: "Status reconciliation passes by result",
		},
		[]string{"result"},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_status_transitions_total",
			Help: "Batched event status transitions by target status",
		},
		[]string{"to"},
	)

	remindersArmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_reminders_armed_total",
			Help: "One-shot reminders armed",
		},
	)

	remindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_reminders_fired_total",
			Help: "Reminder notifications fired by horizon band",
		},
		[]string{"band"},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notifications published by kind and channel",
		},
		[]string{"kind", "channel"},
	)

	fetchDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_fetch_discards_total",
			Help: "Fetch responses discarded by the latest-request-wins guard",
		},
	)

	eventsInMemory = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_in_memory_total",
			Help: "Events currently held in the coordinator snapshot",
		},
	)
)

// Monitor is the handle services use to record metrics.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) TrackReconcile(result string) {
	reconcilePasses.WithLabelValues(result).Inc()
}

func (m *Monitor) TrackTransitions(to string, count int) {
	statusTransitions.WithLabelValues(to).Add(float64(count))
}

func (m *Monitor) TrackReminderArmed() {
	remindersArmed.Inc()
}

func (m *Monitor) TrackReminderFired(band string) {
	remindersFired.WithLabelValues(band).Inc()
}

func (m *Monitor) TrackNotification(kind, channel string) {
	notificationsSent.WithLabelValues(kind, channel).Inc()
}

func (m *Monitor) TrackFetchDiscard() {
	fetchDiscards.Inc()
}

func (m *Monitor) SetEventCount(n int) {
	eventsInMemory.Set(float64(n))
}
