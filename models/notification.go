package models

import "time"

// Permission mirrors the platform notification permission states. Once
// denied, the system never re-prompts programmatically.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func (p Permission) Valid() bool {
	switch p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return true
	}
	return false
}

// Notification kinds carried on published payloads.
const (
	KindReminder    = "event_reminder"
	KindUpdated     = "updated"
	KindCancelled   = "cancelled"
	KindRescheduled = "rescheduled"
	KindStarting    = "starting"
	KindLowStock    = "low_stock"
	KindTest        = "test"
)

// NotificationSettings is the per-user settings object, persisted as one
// JSON blob. Only the four event/push flags gate core behavior; the
// inventory and system flags ride along because the original app persists a
// single object.
type NotificationSettings struct {
	PushNotifications  bool `json:"pushNotifications"`
	LowStockAlerts     bool `json:"lowStockAlerts"`
	InventoryMovements bool `json:"inventoryMovements"`
	SystemAlerts       bool `json:"systemAlerts"`
	EmailNotifications bool `json:"emailNotifications"`
	SoundEnabled       bool `json:"soundEnabled"`
	EventReminders     bool `json:"eventReminders"`
	EventUpdates       bool `json:"eventUpdates"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		PushNotifications:  true,
		LowStockAlerts:     true,
		InventoryMovements: true,
		SystemAlerts:       false,
		EmailNotifications: true,
		SoundEnabled:       true,
		EventReminders:     true,
		EventUpdates:       true,
	}
}

// EventNotification is the rendered message delivered to a user channel.
type EventNotification struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EventID    string    `json:"event_id,omitempty"`
	EventTitle string    `json:"event_title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScheduledReminder is an armed one-shot reminder. Ephemeral: handles live
// in memory only and are lost on restart.
type ScheduledReminder struct {
	EventID    string        `json:"event_id"`
	EventTitle string        `json:"event_title"`
	Lead       time.Duration `json:"lead"`
	FireAt     time.Time     `json:"fire_at"`
}
