package mocks

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// MakeToken builds an unsigned-but-well-formed JWT whose payload is
// the given claims object. The codec only inspects structure, so a
// fake signature segment is enough for tests.
func MakeToken(claims map[string]any) string {
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, _ := json.Marshal(claims)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

// PatientToken is a token for a plain patient identity.
func PatientToken() string {
	return MakeToken(map[string]any{
		"sub":   "patient-1",
		"email": "alice@example.com",
		"role":  "patient",
		"name":  "Alice",
	})
}

// CreateTestEvent creates a sample push event for testing.
func CreateTestEvent() ports.NotificationCreatedEvent {
	read := false
	return ports.NotificationCreatedEvent{
		RecipientID: "patient-1",
		Notification: domain.WireNotification{
			ID:        "notif-1",
			Title:     "Appointment reminder",
			Message:   "Your consultation starts in 15 minutes",
			Read:      &read,
			CreatedAt: time.Now().UTC(),
		},
	}
}
