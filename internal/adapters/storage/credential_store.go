package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// Storage key sets. The current set and the legacy set are both
// written on every save so older deployed clients reading the legacy
// keys keep working; Clear removes every key in both sets. Removal of
// the legacy set is tracked as tech debt: it can go once no deployed
// client reads userInfo anymore.
const (
	keyToken    = "token"     // current: raw bearer token
	keyChtToken = "cht_token" // current: raw bearer token (duplicate key older builds read)
	keyChtUser  = "cht_user"  // current: denormalized profile snapshot
	keyUserInfo = "userInfo"  // legacy: JSON blob with the token inline
)

var allKeys = []string{keyToken, keyChtToken, keyChtUser, keyUserInfo}

// storedProfile is the persisted snapshot shape, bit-compatible with
// what deployed clients wrote.
type storedProfile struct {
	ID             string `json:"_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Name           string `json:"name,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	DoctorStatus   string `json:"doctorStatus,omitempty"`
	Token          string `json:"token,omitempty"`
}

// CredentialStore persists one client's credential and profile
// snapshot across reloads. Load resolves the redundant formats in a
// fixed order: token-derived identity overlaid with the snapshot,
// then the snapshot alone, then the legacy blob. The first usable
// format wins and the rest are ignored, never merged across formats.
type CredentialStore struct {
	kv    ports.KV
	codec ports.TokenCodec
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

func NewCredentialStore(kv ports.KV, codec ports.TokenCodec) *CredentialStore {
	return &CredentialStore{kv: kv, codec: codec}
}

func (s *CredentialStore) Save(ctx context.Context, id domain.Identity) error {
	snapshot, err := json.Marshal(profileFromIdentity(id))
	if err != nil {
		return fmt.Errorf("credential store: encode snapshot: %w", err)
	}

	writes := []struct{ key, value string }{
		{keyToken, id.Token},
		{keyChtToken, id.Token},
		{keyChtUser, string(snapshot)},
		{keyUserInfo, string(snapshot)},
	}
	for _, w := range writes {
		if err := s.kv.Set(ctx, w.key, w.value); err != nil {
			return fmt.Errorf("credential store: write %s: %w", w.key, err)
		}
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context) (domain.Identity, bool) {
	// Current format: decode the raw token, then let the snapshot win
	// field by field since it may carry fields the token omits.
	if raw, ok := s.get(ctx, keyToken, keyChtToken); ok && raw != "" {
		if id, err := s.codec.Decode(raw); err == nil {
			id = s.overlaySnapshot(ctx, id)
			if id.Usable() {
				return id, true
			}
		} else {
			log.Printf("credential store: stored token unusable: %v", err)
		}
	}

	// Snapshot-only: an older build may have written cht_user without
	// a separate token key.
	if id, ok := s.loadProfile(ctx, keyChtUser); ok {
		return id, true
	}

	// Oldest legacy format.
	if id, ok := s.loadProfile(ctx, keyUserInfo); ok {
		return id, true
	}

	return domain.Identity{}, false
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.kv.Del(ctx, allKeys...); err != nil {
		// Degrade: a store we cannot reach holds nothing we can read
		// back either, so callers may proceed as logged out.
		log.Printf("credential store: clear failed: %v", err)
		return nil
	}
	return nil
}

func (s *CredentialStore) HasAny(ctx context.Context) bool {
	for _, key := range allKeys {
		if v, ok, _ := s.kv.Get(ctx, key); ok && v != "" {
			return true
		}
	}
	return false
}

func (s *CredentialStore) get(ctx context.Context, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			log.Printf("credential store: read %s: %v", key, err)
			continue
		}
		if ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (s *CredentialStore) loadProfile(ctx context.Context, key string) (domain.Identity, bool) {
	raw, ok := s.get(ctx, key)
	if !ok {
		return domain.Identity{}, false
	}
	var p storedProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Printf("credential store: corrupt %s: %v", key, err)
		return domain.Identity{}, false
	}
	id := p.identity()
	if !id.Usable() {
		return domain.Identity{}, false
	}
	return id, true
}

// overlaySnapshot applies the cht_user snapshot on top of a
// token-derived identity. Snapshot fields win when present; the token
// always comes from the decoded credential.
func (s *CredentialStore) overlaySnapshot(ctx context.Context, id domain.Identity) domain.Identity {
	raw, ok := s.get(ctx, keyChtUser)
	if !ok {
		return id
	}
	var p storedProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return id
	}
	if p.ID != "" {
		id.SubjectID = p.ID
	}
	if p.Email != "" {
		id.Email = p.Email
	}
	if p.Role != "" {
		id.Role = domain.Role(p.Role)
	}
	if p.Name != "" {
		id.Name = p.Name
	}
	if p.ProfilePicture != "" {
		id.PictureURL = p.ProfilePicture
	}
	if p.DoctorStatus != "" {
		id.DoctorStatus = domain.DoctorStatus(p.DoctorStatus)
	}
	return id
}

func profileFromIdentity(id domain.Identity) storedProfile {
	return storedProfile{
		ID:             id.SubjectID,
		Email:          id.Email,
		Role:           string(id.Role),
		Name:           id.Name,
		ProfilePicture: id.PictureURL,
		DoctorStatus:   string(id.DoctorStatus),
		Token:          id.Token,
	}
}

func (p storedProfile) identity() domain.Identity {
	return domain.Identity{
		SubjectID:    p.ID,
		Email:        p.Email,
		Role:         domain.Role(p.Role),
		Name:         p.Name,
		PictureURL:   p.ProfilePicture,
		DoctorStatus: domain.DoctorStatus(p.DoctorStatus),
		Token:        p.Token,
	}
}
