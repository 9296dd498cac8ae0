// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

type NotificationHandler struct {
	store *Store
}

func NewNotificationHandler(store *Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List handles GET /notifications/?skip&limit&unread_only
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	skip, limit := pageParams(r)
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ids := sortedIDs(h.store.notifications, func(rec *notificationRecord) bool {
		return rec.userID == u.ID && (!unreadOnly || !rec.n.IsRead)
	}, true)

	out := make([]models.Notification, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		out = append(out, h.store.notifications[id].n)
	}
	JSONResponse(w, http.StatusOK, out)
}

// Stats handles GET /notifications/stats
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	var stats models.NotificationStats
	for _, rec := range h.store.notifications {
		if rec.userID != u.ID {
			continue
		}
		stats.TotalCount++
		if !rec.n.IsRead {
			stats.UnreadCount++
		}
	}
	JSONResponse(w, http.StatusOK, stats)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	count := 0
	for _, rec := range h.store.notifications {
		if rec.userID == u.ID && !rec.n.IsRead {
			count++
		}
	}
	JSONResponse(w, http.StatusOK, models.UnreadCount{Count: count})
}

// MarkRead handles PUT /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	rec, exists := h.store.notifications[id]
	if !exists || rec.userID != u.ID {
		ErrorResponse(w, http.StatusNotFound, "Notification not found")
		return
	}
	rec.n.IsRead = true
	JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Notification marked as read"})
}

// MarkAllRead handles PUT /notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	for _, rec := range h.store.notifications {
		if rec.userID == u.ID {
			rec.n.IsRead = true
		}
	}
	JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "All notifications marked as read"})
}

// Delete handles DELETE /notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	rec, exists := h.store.notifications[id]
	if !exists || rec.userID != u.ID {
		ErrorResponse(w, http.StatusNotFound, "Notification not found")
		return
	}
	delete(h.store.notifications, id)
	JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Notification deleted"})
}
