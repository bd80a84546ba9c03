package api

import (
	"net/http"

	"github.com/okian/goalcast/internal/domain/model"
)

// NotificationsResponse is the payload of GET /api/notifications.
type NotificationsResponse struct {
	Notifications []model.NotificationView `json:"notifications"`
	Count         int                      `json:"count"`
}

// NotificationsHandler serves the notification board.
type NotificationsHandler struct {
	source NotificationSource
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(source NotificationSource) *NotificationsHandler {
	return &NotificationsHandler{source: source}
}

// HandleNotifications handles GET /api/notifications, newest first.
func (h *NotificationsHandler) HandleNotifications(w http.ResponseWriter, _ *http.Request) {
	list := h.source.Notifications()
	if list == nil {
		list = []model.NotificationView{}
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: list, Count: len(list)})
}
