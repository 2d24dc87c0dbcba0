package ports

import (
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// TokenCodec turns an opaque bearer credential into a normalized
// identity. A credential either decodes fully or not at all; a decode
// failure must never leak a partially populated identity.
type TokenCodec interface {
	Decode(raw string) (domain.Identity, error)
}
