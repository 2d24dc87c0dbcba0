package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// ErrDecode marks a credential that could not be turned into an
// identity: wrong segment count, undecodable segments, or claims that
// match no known payload shape. Callers treat it as "no identity".
var ErrDecode = errors.New("credential decode failed")

// TokenCodec extracts an identity from a bearer token. Decoding is
// structural only: the issuing backend vouches for authenticity, the
// codec's job is to fail closed on anything it cannot fully parse.
type TokenCodec struct {
	parser *jwt.Parser
}

var _ ports.TokenCodec = (*TokenCodec)(nil)

func NewTokenCodec() *TokenCodec {
	return &TokenCodec{parser: jwt.NewParser()}
}

// claimProfile covers the profile fields that may appear at any of the
// known nesting levels. Old backends emitted both picture key names.
type claimProfile struct {
	Sub            string `json:"sub"`
	MongoID        string `json:"_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Name           string `json:"name"`
	Picture        string `json:"picture"`
	ProfilePicture string `json:"profilePicture"`
	DoctorStatus   string `json:"doctorStatus"`
}

// The finite set of payload shapes deployed backends have signed,
// tried in priority order. The first shape yielding a usable identity
// wins; shapes are never merged.
type flatClaims = claimProfile

type userClaims struct {
	User *claimProfile `json:"user"`
}

type idUserClaims struct {
	ID *struct {
		User *claimProfile `json:"user"`
	} `json:"id"`
}

func (c *TokenCodec) Decode(raw string) (domain.Identity, error) {
	if raw == "" {
		return domain.Identity{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	token, _, err := c.parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	payload, err := json.Marshal(token.Claims)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	for _, extract := range []func([]byte) *claimProfile{
		extractFlat,
		extractUser,
		extractIDUser,
	} {
		profile := extract(payload)
		if profile == nil {
			continue
		}
		id := profile.identity(raw)
		if id.Usable() {
			return id, nil
		}
	}

	return domain.Identity{}, fmt.Errorf("%w: no known payload shape matched", ErrDecode)
}

func extractFlat(payload []byte) *claimProfile {
	var c flatClaims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil
	}
	return &c
}

func extractUser(payload []byte) *claimProfile {
	var c userClaims
	if err := json.Unmarshal(payload, &c); err != nil || c.User == nil {
		return nil
	}
	return c.User
}

func extractIDUser(payload []byte) *claimProfile {
	var c idUserClaims
	if err := json.Unmarshal(payload, &c); err != nil || c.ID == nil || c.ID.User == nil {
		return nil
	}
	return c.ID.User
}

func (p *claimProfile) identity(raw string) domain.Identity {
	subject := p.Sub
	if subject == "" {
		subject = p.MongoID
	}
	picture := p.Picture
	if picture == "" {
		picture = p.ProfilePicture
	}
	return domain.Identity{
		SubjectID:    subject,
		Email:        p.Email,
		Role:         domain.Role(p.Role),
		Name:         p.Name,
		PictureURL:   picture,
		DoctorStatus: domain.DoctorStatus(p.DoctorStatus),
		Token:        raw,
	}
}
