package http

import (
	"net/http"

	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
)

type NotificationsHandler struct {
	feed *notify.Feed
}

func NewNotificationsHandler(feed *notify.Feed) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

type NotificationsResponseDTO struct {
	Notifications []notify.Notification `json:"notifications"`
}

// Drain returns the session's pending notifications and clears them; they
// are transient toasts, not a persisted inbox.
func (h *NotificationsHandler) Drain(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	notifications := h.feed.Drain(sessionID)
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	respondJSON(w, http.StatusOK, NotificationsResponseDTO{Notifications: notifications})
}
