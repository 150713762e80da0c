package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCategory_Valid(t *testing.T) {
	for _, c := range []EventCategory{CategorySocial, CategoryAcademico, CategoryCultural, CategoryComercial, CategoryTaller, CategoryOtro} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, EventCategory("deportivo").Valid())
	assert.False(t, EventCategory("").Valid())
}

func TestEventStatus_ValidAndTerminal(t *testing.T) {
	tests := []struct {
		status   EventStatus
		valid    bool
		terminal bool
	}{
		{StatusProximo, true, false},
		{StatusEnCurso, true, false},
		{StatusFinalizado, true, true},
		{StatusCancelado, true, true},
		{EventStatus("pendiente"), false, false},
		{EventStatus(""), false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.status.Valid(), string(tt.status))
		assert.Equal(t, tt.terminal, tt.status.Terminal(), string(tt.status))
	}
}

func TestPermission_Valid(t *testing.T) {
	for _, p := range []Permission{PermissionDefault, PermissionGranted, PermissionDenied} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, Permission("blocked").Valid())
}

func TestDefaultNotificationSettings(t *testing.T) {
	s := DefaultNotificationSettings()

	assert.True(t, s.PushNotifications)
	assert.True(t, s.LowStockAlerts)
	assert.True(t, s.InventoryMovements)
	assert.True(t, s.EmailNotifications)
	assert.True(t, s.SoundEnabled)
	assert.True(t, s.EventReminders)
	assert.True(t, s.EventUpdates)
	assert.False(t, s.SystemAlerts, "system alerts default off")
}

func TestNotificationSettings_JSONKeys(t *testing.T) {
	data, err := json.Marshal(DefaultNotificationSettings())
	require.NoError(t, err)

	// The settings blob uses the client's camelCase field names.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"pushNotifications", "lowStockAlerts", "soundEnabled", "eventReminders", "eventUpdates"} {
		assert.Contains(t, raw, key)
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	max := 120
	ev := Event{
		ID:           "ev1",
		Title:        "Feria Artesanal",
		Location:     "Plaza Central",
		StartDate:    time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 1, 22, 0, 0, 0, time.UTC),
		Category:     CategorySocial,
		Status:       StatusProximo,
		MaxAttendees: &max,
		CreatedBy:    "u1",
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "start_date")
	assert.Contains(t, raw, "max_attendees")

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ev, decoded)
}
