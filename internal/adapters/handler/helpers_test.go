package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/storage"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
)

// newTestRegistry mirrors the gateway's session wiring on top of an
// in-memory store and the given notification backend.
func newTestRegistry(api ports.NotificationAPI) *services.SessionRegistry {
	codec := services.NewTokenCodec()
	return services.NewSessionRegistry(func(sid string) *services.Client {
		store := storage.NewCredentialStore(storage.NewMemoryKV(), codec)
		session := services.NewSessionManager(store)
		cache := services.NewNotificationCache(api, func() (string, bool) {
			id, ok := session.Identity()
			return id.Token, ok
		})
		return &services.Client{Session: session, Notifications: cache}
	})
}

// loginPatient authenticates sid so the session hands the notification
// cache a usable token.
func loginPatient(t *testing.T, registry *services.SessionRegistry, sid string) {
	t.Helper()
	err := registry.Get(sid).Session.Login(context.Background(), domain.Identity{
		SubjectID: "p-1",
		Email:     "alice@example.com",
		Role:      domain.RolePatient,
		Token:     "tok",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
