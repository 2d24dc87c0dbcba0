package ports

import (
	"context"
	"errors"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// ErrAuthRejected signals that the backend answered 401 to an
// authenticated call. The session layer reacts by forcing a logout;
// it must never be swallowed silently.
var ErrAuthRejected = errors.New("authentication rejected by backend")

// NotificationAPI is the backend's notification REST surface as seen
// by the cache. Implementations return wire-shaped records; the cache
// normalizes them on ingestion.
type NotificationAPI interface {
	FetchPage(ctx context.Context, token string, page, limit int) ([]domain.WireNotification, error)
	FetchUnreadCount(ctx context.Context, token string) (int, error)
	MarkRead(ctx context.Context, token, id string) error
}
