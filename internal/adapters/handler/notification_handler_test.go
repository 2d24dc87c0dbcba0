package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/handler"
	"github.com/curalink/telehealth/session-gateway/internal/adapters/middleware"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
	"github.com/curalink/telehealth/session-gateway/test/mocks"
)

func boolPtr(b bool) *bool { return &b }

func withSession(method, path, sid string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sid})
	return req
}

func TestNotificationList(t *testing.T) {
	api := mocks.NewMockNotificationAPI()
	api.Pages[1] = []domain.WireNotification{
		{ID: "n1", Title: "Appointment", IsRead: boolPtr(true)},
		{ID: "n2", Title: "Reminder", Read: boolPtr(true)},
	}
	registry := newTestRegistry(api)
	h := handler.NewNotificationHandler(registry)
	loginPatient(t, registry, "sid-1")

	rec := httptest.NewRecorder()
	h.List(rec, withSession(http.MethodGet, "/notification", "sid-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Notifications []domain.Notification `json:"notifications"`
		Page          int                   `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(resp.Notifications))
	}
	// isRead carries inverted polarity: true means still pending.
	if resp.Notifications[0].Read {
		t.Error("n1 should be unread after normalization")
	}
	if !resp.Notifications[1].Read {
		t.Error("n2 should be read")
	}
	if resp.Page != 1 {
		t.Errorf("page = %d, want 1", resp.Page)
	}
}

func TestNotificationList_NoSession(t *testing.T) {
	h := handler.NewNotificationHandler(newTestRegistry(mocks.NewMockNotificationAPI()))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notification", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestNotificationList_BackendFailure(t *testing.T) {
	api := mocks.NewMockNotificationAPI()
	api.FetchErr = context.DeadlineExceeded
	registry := newTestRegistry(api)
	h := handler.NewNotificationHandler(registry)
	loginPatient(t, registry, "sid-1")

	rec := httptest.NewRecorder()
	h.List(rec, withSession(http.MethodGet, "/notification", "sid-1"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestNotificationList_AuthRejected(t *testing.T) {
	api := mocks.NewMockNotificationAPI()
	api.FetchErr = ports.ErrAuthRejected
	registry := newTestRegistry(api)
	h := handler.NewNotificationHandler(registry)
	loginPatient(t, registry, "sid-1")

	rec := httptest.NewRecorder()
	h.List(rec, withSession(http.MethodGet, "/notification", "sid-1"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUnreadCount_DegradesToCachedValue(t *testing.T) {
	api := mocks.NewMockNotificationAPI()
	api.Count = 4
	registry := newTestRegistry(api)
	h := handler.NewNotificationHandler(registry)
	loginPatient(t, registry, "sid-1")

	read := func() int {
		rec := httptest.NewRecorder()
		h.UnreadCount(rec, withSession(http.MethodGet, "/notification/unread-count", "sid-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp map[string]int
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp["count"]
	}

	if got := read(); got != 4 {
		t.Fatalf("count = %d, want 4", got)
	}

	// Backend goes down: the badge keeps the last-known value.
	api.CountErr = context.DeadlineExceeded
	if got := read(); got != 4 {
		t.Errorf("count after failure = %d, want cached 4", got)
	}
}

func TestMarkRead(t *testing.T) {
	api := mocks.NewMockNotificationAPI()
	api.Pages[1] = []domain.WireNotification{{ID: "n1", IsRead: boolPtr(true)}}
	registry := newTestRegistry(api)
	h := handler.NewNotificationHandler(registry)
	loginPatient(t, registry, "sid-1")

	// Prime the cache so there is a record to flip.
	cache := registry.Get("sid-1").Notifications
	if _, err := cache.FetchPage(context.Background(), 1, 20); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	req := withSession(http.MethodPatch, "/notification/n1/read", "sid-1")
	req.SetPathValue("id", "n1")
	rec := httptest.NewRecorder()
	h.MarkRead(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	items := cache.Items()
	if len(items) != 1 || !items[0].Read {
		t.Errorf("items = %+v, want n1 marked read", items)
	}
	if _, _, marked := api.Stats(); marked != 1 {
		t.Errorf("backend saw %d mark-read calls, want 1", marked)
	}
}

func TestMarkRead_MissingID(t *testing.T) {
	h := handler.NewNotificationHandler(newTestRegistry(mocks.NewMockNotificationAPI()))

	rec := httptest.NewRecorder()
	h.MarkRead(rec, withSession(http.MethodPatch, "/notification//read", "sid-1"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
