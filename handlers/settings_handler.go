package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"encanto-system/models"
	"encanto-system/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get - current notification settings plus permission state
func (h *SettingsHandler) Get(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	ctx := e.Request.Context()
	return e.JSON(http.StatusOK, map[string]any{
		"settings":   h.settings.Get(ctx, e.Auth.Id),
		"permission": h.settings.Permission(ctx, e.Auth.Id),
	})
}

// Update - replace the full settings document
func (h *SettingsHandler) Update(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var settings models.NotificationSettings
	if err := e.BindBody(&settings); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.settings.Save(e.Request.Context(), e.Auth.Id, settings); err != nil {
		return apis.NewBadRequestError("Error al guardar la configuración", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":  "Configuración guardada",
		"settings": settings,
	})
}

// Reset - restore defaults
func (h *SettingsHandler) Reset(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	if err := h.settings.Reset(e.Request.Context(), e.Auth.Id); err != nil {
		return apis.NewBadRequestError("Error al restablecer la configuración", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":  "Configuración restablecida",
		"settings": models.DefaultNotificationSettings(),
	})
}
