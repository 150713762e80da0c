package services

import (
	"context"
	"fmt"
	"log"

	pubnub "github.com/pubnub/go/v7"

	"encanto-system/models"
	"encanto-system/monitoring"
	"encanto-system/utils"
)

// Fixed user-facing templates per update kind. Unknown kinds fall back to
// the generic message instead of erroring.
var updateMessages = map[string]string{
	models.KindUpdated:     `El evento "%s" ha sido actualizado`,
	models.KindCancelled:   `El evento "%s" ha sido cancelado`,
	models.KindRescheduled: `El evento "%s" ha sido reprogramado`,
	models.KindStarting:    `El evento "%s" está comenzando`,
}

const genericUpdateMessage = `Actualización del evento "%s"`

// soundDescriptor mirrors the client-side beep: a two-tone oscillator
// stepping 800Hz→600Hz after 100ms with exponential amplitude decay.
var soundDescriptor = map[string]any{
	"start_hz":    800,
	"end_hz":      600,
	"step_ms":     100,
	"duration_ms": 200,
	"gain":        0.1,
	"decay":       "exponential",
}

// Publisher delivers a message payload to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message map[string]any) error
}

// PubNubPublisher publishes over the user's real-time channel.
type PubNubPublisher struct {
	pn *pubnub.PubNub
}

func NewPubNubPublisher(pn *pubnub.PubNub) *PubNubPublisher {
	return &PubNubPublisher{pn: pn}
}

func (p *PubNubPublisher) Publish(ctx context.Context, channel string, message map[string]any) error {
	_, _, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	return err
}

type settingsSource interface {
	Get(ctx context.Context, userID string) models.NotificationSettings
	Permission(ctx context.Context, userID string) models.Permission
	SetPermission(ctx context.Context, userID string, perm models.Permission) error
}

// NotificationService renders and delivers user alerts: an in-app toast on
// every call, plus a push payload when permission is granted and push is
// enabled. Delivery is best-effort; failures are logged and dropped.
type NotificationService struct {
	publisher Publisher
	settings  settingsSource
	breaker   *utils.CircuitBreaker
	monitor   *monitoring.Monitor
	clock     utils.Clock
}

func NewNotificationService(publisher Publisher, settings settingsSource, monitor *monitoring.Monitor, clock utils.Clock) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		settings:  settings,
		breaker:   utils.NewCircuitBreaker("notifications"),
		monitor:   monitor,
		clock:     clock,
	}
}

func userChannel(userID string) string {
	return fmt.Sprintf("user-%s", userID)
}

// Notify delivers a notification to one user. The toast is always sent; the
// push payload additionally requires granted permission and the push flag.
func (s *NotificationService) Notify(ctx context.Context, userID, title, body, kind string) {
	s.notifyEvent(ctx, userID, title, body, kind, "", "")
}

func (s *NotificationService) notifyEvent(ctx context.Context, userID, title, body, kind, eventID, eventTitle string) {
	id, err := utils.GenerateCode(8)
	if err != nil {
		id = fmt.Sprintf("n%d", s.clock.Now().UnixNano())
	}

	notification := models.EventNotification{
		ID:         id,
		Kind:       kind,
		Title:      title,
		Message:    body,
		EventID:    eventID,
		EventTitle: eventTitle,
		CreatedAt:  s.clock.Now(),
	}

	s.publish(ctx, userID, map[string]any{
		"type":         "toast",
		"notification": notification,
		"duration_ms":  5000,
	})
	s.monitor.TrackNotification(kind, "toast")

	prefs := s.settings.Get(ctx, userID)
	if !prefs.PushNotifications || s.settings.Permission(ctx, userID) != models.PermissionGranted {
		return
	}

	push := map[string]any{
		"type":            "push",
		"notification":    notification,
		"tag":             "encanto-business",
		"renotify":        true,
		"auto_dismiss_ms": 5000,
	}
	if prefs.SoundEnabled {
		push["sound"] = soundDescriptor
	}

	s.publish(ctx, userID, push)
	s.monitor.TrackNotification(kind, "push")
}

// publish sends through the circuit breaker: when the broker is down the
// breaker sheds calls instead of letting them pile up. Best-effort only.
func (s *NotificationService) publish(ctx context.Context, userID string, message map[string]any) {
	err := s.breaker.Do(func() error {
		return s.publisher.Publish(ctx, userChannel(userID), message)
	})
	if err != nil {
		log.Printf("Error publishing notification to %s: %v", userID, err)
	}
}

// NotifyEventUpdate renders the fixed template for the update kind and
// delivers it, gated by the user's event-updates flag.
func (s *NotificationService) NotifyEventUpdate(ctx context.Context, userID string, ev models.Event, kind string) {
	if !s.settings.Get(ctx, userID).EventUpdates {
		return
	}

	template, ok := updateMessages[kind]
	if !ok {
		template = genericUpdateMessage
	}

	s.notifyEvent(ctx, userID,
		"Actualización de Evento",
		fmt.Sprintf(template, ev.Title),
		kind, ev.ID, ev.Title)
}

// NotifyReminder delivers a reminder; the caller phrases when the event
// starts ("en 1 hora", "mañana", ...). Reminder gating happens in the
// scheduler, which knows whether the firing came from a scan or a timer.
func (s *NotificationService) NotifyReminder(ctx context.Context, userID string, ev models.Event, when string) {
	s.notifyEvent(ctx, userID,
		fmt.Sprintf("Recordatorio: %s", ev.Title),
		fmt.Sprintf("El evento comienza %s", when),
		models.KindReminder, ev.ID, ev.Title)
}

// RequestPermission is idempotent: a settled state is returned untouched
// (denied is never re-prompted). Only from "default" does it publish a
// prompt request for the client to surface; the client reports the outcome
// through SetPermission.
func (s *NotificationService) RequestPermission(ctx context.Context, userID string) models.Permission {
	perm := s.settings.Permission(ctx, userID)
	if perm != models.PermissionDefault {
		return perm
	}

	s.publish(ctx, userID, map[string]any{
		"type": "permission_request",
	})
	return models.PermissionDefault
}

// SetPermission records the state the client reported after the prompt.
func (s *NotificationService) SetPermission(ctx context.Context, userID string, perm models.Permission) error {
	return s.settings.SetPermission(ctx, userID, perm)
}

// TestNotification lets the settings screen verify the pipeline end to end.
func (s *NotificationService) TestNotification(ctx context.Context, userID string) {
	s.Notify(ctx, userID,
		"Notificación de Prueba",
		"Las notificaciones están funcionando correctamente",
		models.KindTest)
}
