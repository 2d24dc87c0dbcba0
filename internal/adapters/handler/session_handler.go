package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/metrics"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
)

// SessionHandler exposes the current session state to the SPA. The
// client calls it at startup; the response tells it whether to render
// the app, the login page, or keep its loading screen up.
type SessionHandler struct {
	registry *services.SessionRegistry
}

func NewSessionHandler(registry *services.SessionRegistry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

type sessionResponse struct {
	State    ports.SessionState `json:"state"`
	Identity *domain.Identity   `json:"identity,omitempty"`
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{State: ports.StateAnonymous}

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		session := h.registry.Get(cookie.Value).Session

		if err := session.Restore(r.Context()); err != nil {
			log.Printf("session handler: restore: %v", err)
		}

		resp.State = session.State()
		if id, ok := session.Identity(); ok {
			resp.Identity = &id
			metrics.Restore("authenticated")
		} else {
			metrics.Restore("anonymous")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("session handler: encode: %v", err)
	}
}
