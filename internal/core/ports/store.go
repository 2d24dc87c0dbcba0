package ports

import (
	"context"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// KV is the minimal key/value surface the credential store is built on.
// Get returns ok=false for a missing key; only infrastructure failures
// are reported as errors.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// CredentialStore persists the credential and a denormalized profile
// snapshot across restarts. Save fails loudly on storage trouble; Load
// and Clear degrade to "no identity" instead of erroring, since a
// broken store must read as a logged-out client, not a crash.
type CredentialStore interface {
	Save(ctx context.Context, id domain.Identity) error
	Load(ctx context.Context) (domain.Identity, bool)
	Clear(ctx context.Context) error
	// HasAny reports whether any credential material exists in any of
	// the known key formats, even if it does not load into a usable
	// identity. Route guards use this to distinguish "never logged in"
	// from "restoration still catching up".
	HasAny(ctx context.Context) bool
}
