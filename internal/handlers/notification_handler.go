package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/findit/backend/internal/services"
)

type NotificationHandler struct {
	notifications services.NotificationStore
}

func NewNotificationHandler(notifications services.NotificationStore) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	limit := queryInt(r, "limit", 50)

	notifications, err := h.notifications.ListByUser(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[notifications] list for user %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	notification, err := h.notifications.MarkRead(r.Context(), id)
	if err != nil {
		if err == services.ErrNotificationNotFound {
			respondError(w, http.StatusNotFound, "Notification not found")
			return
		}
		log.Printf("[notifications] mark read %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	writeJSON(w, http.StatusOK, notification)
}
