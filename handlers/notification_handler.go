package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"encanto-system/models"
	"encanto-system/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RequestPermission - ask for notification permission; settled states are
// returned as-is, only "default" triggers a client prompt
func (h *NotificationHandler) RequestPermission(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	perm := h.notifications.RequestPermission(e.Request.Context(), e.Auth.Id)
	return e.JSON(http.StatusOK, map[string]any{"permission": perm})
}

type permissionReport struct {
	Permission string `json:"permission"`
}

// ReportPermission - the client reports the prompt outcome
func (h *NotificationHandler) ReportPermission(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req permissionReport
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	perm := models.Permission(req.Permission)
	if err := h.notifications.SetPermission(e.Request.Context(), e.Auth.Id, perm); err != nil {
		return apis.NewBadRequestError("Invalid permission state", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"permission": perm})
}

// Test - fire a test notification through the full pipeline
func (h *NotificationHandler) Test(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	h.notifications.TestNotification(e.Request.Context(), e.Auth.Id)
	return e.JSON(http.StatusOK, map[string]string{"message": "Notificación de prueba enviada"})
}
