package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/metrics"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
)

// AuthHandler ingests the credential the backend issued (via the
// login form or the OAuth callback) into a gateway session.
type AuthHandler struct {
	registry *services.SessionRegistry
	codec    ports.TokenCodec
	validate *validator.Validate
}

func NewAuthHandler(registry *services.SessionRegistry, codec ports.TokenCodec) *AuthHandler {
	return &AuthHandler{
		registry: registry,
		codec:    codec,
		validate: validator.New(),
	}
}

// LoginRequest mirrors what the backend returns from its login and
// register endpoints: the token plus a denormalized profile.
type LoginRequest struct {
	Token        string `json:"token" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=admin doctor patient"`
	Email        string `json:"email" validate:"required,email"`
	SubjectID    string `json:"_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Picture      string `json:"picture,omitempty"`
	DoctorStatus string `json:"doctorStatus,omitempty" validate:"omitempty,oneof=pending approved rejected"`
}

type loginResponse struct {
	Message  string          `json:"message"`
	Identity domain.Identity `json:"identity"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		metrics.Login("validation_failed")
		http.Error(w, "invalid login payload: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	id, err := h.buildIdentity(req)
	if err != nil {
		metrics.Login("decode_failed")
		http.Error(w, "unusable credential", http.StatusUnprocessableEntity)
		return
	}

	sid, fresh := h.sessionID(r)
	client := h.registry.Get(sid)

	if err := client.Session.Login(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			metrics.Login("validation_failed")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			// Storage failure: the session did not advance, say so loudly.
			metrics.Login("storage_failed")
			log.Printf("auth: login persist failed: %v", err)
			http.Error(w, "could not persist session", http.StatusServiceUnavailable)
		}
		return
	}

	if fresh {
		h.setSessionCookie(w, sid)
	}
	metrics.Login("success")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(loginResponse{
		Message:  "Login successful",
		Identity: id,
	})
}

// Callback handles the OAuth redirect leg: the backend hands the
// token and profile back through query parameters.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if msg := q.Get("error"); msg != "" {
		metrics.Login("oauth_error")
		http.Redirect(w, r, "/login?message="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}

	req := LoginRequest{Token: q.Get("token")}
	if rawUser := q.Get("user"); rawUser != "" {
		if err := json.Unmarshal([]byte(rawUser), &req); err != nil {
			metrics.Login("oauth_error")
			http.Redirect(w, r, "/login?message="+url.QueryEscape("malformed callback payload"), http.StatusSeeOther)
			return
		}
		req.Token = q.Get("token")
	}

	id, err := h.buildIdentity(req)
	if err != nil || !id.Usable() {
		metrics.Login("decode_failed")
		http.Redirect(w, r, "/login?message="+url.QueryEscape("sign-in failed"), http.StatusSeeOther)
		return
	}

	sid, fresh := h.sessionID(r)
	client := h.registry.Get(sid)

	if err := client.Session.Login(r.Context(), id); err != nil {
		metrics.Login("storage_failed")
		log.Printf("auth: callback persist failed: %v", err)
		http.Redirect(w, r, "/login?message="+url.QueryEscape("sign-in failed"), http.StatusSeeOther)
		return
	}

	if fresh {
		h.setSessionCookie(w, sid)
	}
	metrics.Login("success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		client := h.registry.Get(cookie.Value)
		if err := client.Session.Logout(r.Context()); err != nil {
			log.Printf("auth: logout: %v", err)
		}
	}

	// Expire the cookie either way; logging out while anonymous is a no-op.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})
}

// buildIdentity decodes the token and lets the request's profile
// fields win over the token-derived ones, the same precedence the
// credential store applies to its snapshot.
func (h *AuthHandler) buildIdentity(req LoginRequest) (domain.Identity, error) {
	id, err := h.codec.Decode(req.Token)
	if err != nil {
		// The backend may issue tokens whose claims carry no profile;
		// the request payload then has to supply one on its own.
		if req.SubjectID == "" {
			return domain.Identity{}, err
		}
		id = domain.Identity{Token: req.Token}
	}

	if req.SubjectID != "" {
		id.SubjectID = req.SubjectID
	}
	if req.Email != "" {
		id.Email = req.Email
	}
	if req.Role != "" {
		id.Role = domain.Role(req.Role)
	}
	if req.Name != "" {
		id.Name = req.Name
	}
	if req.Picture != "" {
		id.PictureURL = req.Picture
	}
	if req.DoctorStatus != "" {
		id.DoctorStatus = domain.DoctorStatus(req.DoctorStatus)
	}
	return id, nil
}

func (h *AuthHandler) sessionID(r *http.Request) (sid string, fresh bool) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, false
	}
	return uuid.NewString(), true
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
