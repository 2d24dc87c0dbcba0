package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
)

// NotificationHandler serves the SPA's notification surface from the
// per-session cache.
type NotificationHandler struct {
	registry *services.SessionRegistry
}

func NewNotificationHandler(registry *services.SessionRegistry) *NotificationHandler {
	return &NotificationHandler{registry: registry}
}

type notificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	cache, ok := h.cache(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	page := intQuery(r, "page", 1)
	limit := intQuery(r, "limit", 20)

	records, err := cache.FetchPage(r.Context(), page, limit)
	if err != nil {
		if errors.Is(err, ports.ErrAuthRejected) {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		// The list view surfaces fetch failures; only the badge count
		// degrades silently.
		http.Error(w, "could not load notifications", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notificationListResponse{
		Notifications: records,
		Page:          page,
		Limit:         limit,
	})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	cache, ok := h.cache(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	// Never fails: a backend hiccup serves the last-known count so the
	// badge does not flicker to zero.
	count := cache.UnreadCount(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	cache, ok := h.cache(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing notification id", http.StatusBadRequest)
		return
	}

	if err := cache.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, ports.ErrAuthRejected) {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		http.Error(w, "could not mark notification read", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) cache(r *http.Request) (*services.NotificationCache, bool) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return h.registry.Get(cookie.Value).Notifications, true
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
