package ports

import (
	"context"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// SessionState is the session manager's lifecycle position.
type SessionState string

const (
	StateUninitialized SessionState = "uninitialized"
	StateRestoring     SessionState = "restoring"
	StateAuthenticated SessionState = "authenticated"
	StateAnonymous     SessionState = "anonymous"
)

// Session owns one client's in-memory session state and its
// persistence. Restore runs once per construction; Login and Logout
// are the only mutations.
type Session interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, id domain.Identity) error
	Logout(ctx context.Context) error

	State() SessionState
	Identity() (domain.Identity, bool)

	IsAuthenticated() bool
	IsAdmin() bool
	IsDoctor() bool
	IsPatient() bool
}
