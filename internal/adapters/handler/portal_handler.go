package handler

import (
	"encoding/json"
	"net/http"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// PortalHandler answers for the guarded portal prefixes. The real
// portal UI lives in the SPA; the gateway's job here is only to prove
// who got through which guard.
type PortalHandler struct{}

func NewPortalHandler() *PortalHandler {
	return &PortalHandler{}
}

func (h *PortalHandler) Portal(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"portal": name}
		if id, ok := r.Context().Value(middleware.IdentityKey).(domain.Identity); ok {
			resp["user"] = id
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
}
