package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type NotificationHandler struct {
	Svc *services.NotificationService
}

func NewNotificationHandler(svc *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Svc: svc}
}

// List: ?since=<RFC3339>&limit=N. Clients poll again after poll_after_seconds.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if v := query(r, "since"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "bad_request", "since must be RFC3339", nil)
			return
		}
		since = t
	}
	feed, err := h.Svc.List(r.Context(), principal(r), since, httpx.QueryInt(r, "limit", 50))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, feed)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.UnreadCount(r.Context(), principal(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{
		"unread":             n,
		"poll_after_seconds": services.PollAfterSeconds,
	})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.MarkAllRead(r.Context(), principal(r)); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
