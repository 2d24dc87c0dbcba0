package ports

import (
	"context"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// NotificationCreatedEvent is the push-delivery payload carried from
// the backend's notification outbox to connected gateways.
type NotificationCreatedEvent struct {
	RecipientID  string                  `json:"recipient_id"`
	Notification domain.WireNotification `json:"notification"`
}

type NotificationPublisher interface {
	PublishNotificationCreated(ctx context.Context, evt NotificationCreatedEvent) error
}
