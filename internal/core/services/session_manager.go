package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// ErrValidation marks a well-formed login payload that is missing
// required identity fields. The session must not transition to
// authenticated on such a payload: role-based redirects downstream
// depend on the role being present.
var ErrValidation = errors.New("invalid identity payload")

// SessionManager owns one client's session state machine:
//
//	uninitialized -> restoring -> authenticated | anonymous
//
// Restoration runs once per construction. Login and Logout are the
// only other transitions; nothing moves a session back to restoring
// short of constructing a fresh manager, mirroring an app reload.
type SessionManager struct {
	store ports.CredentialStore

	mu       sync.Mutex
	state    ports.SessionState
	identity domain.Identity
	restored bool

	// Lifecycle hooks, registered once at wiring time and fired
	// outside the state lock. onLogout runs on every transition to
	// anonymous; onAuthenticated on every entry into authenticated;
	// onRestoredAnonymous when restoration finds no credential.
	onLogout            []func()
	onAuthenticated     []func()
	onRestoredAnonymous []func()
}

var _ ports.Session = (*SessionManager)(nil)

// NewSessionManager constructs a manager already in the restoring
// state; callers are expected to invoke Restore before trusting any
// guard decision as final.
func NewSessionManager(store ports.CredentialStore) *SessionManager {
	return &SessionManager{
		store: store,
		state: ports.StateRestoring,
	}
}

// OnLogout registers a teardown hook fired whenever the session
// transitions to anonymous (explicit logout or upstream 401).
func (m *SessionManager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// OnAuthenticated registers a hook fired whenever the session enters
// the authenticated state, on login or on a successful restoration.
// Per-credential resources (notification polling) hang off this hook
// so an anonymous session never acquires them.
func (m *SessionManager) OnAuthenticated(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAuthenticated = append(m.onAuthenticated, fn)
}

// OnRestoredAnonymous registers a hook fired when restoration settles
// on anonymous. The registry uses it to drop clients minted for
// unknown session ids.
func (m *SessionManager) OnRestoredAnonymous(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRestoredAnonymous = append(m.onRestoredAnonymous, fn)
}

// Restore resolves persisted credential material into an identity.
// Idempotent: concurrent and repeated invocations all settle on the
// outcome of the first. The store's own Load implements the format
// ranking; this layer only records the result.
func (m *SessionManager) Restore(ctx context.Context) error {
	m.mu.Lock()

	if m.restored {
		m.mu.Unlock()
		return nil
	}
	m.restored = true

	if id, ok := m.store.Load(ctx); ok {
		m.state = ports.StateAuthenticated
		m.identity = id
		hooks := snapshotHooks(m.onAuthenticated)
		m.mu.Unlock()
		fire(hooks)
		return nil
	}
	m.state = ports.StateAnonymous
	m.identity = domain.Identity{}
	hooks := snapshotHooks(m.onRestoredAnonymous)
	m.mu.Unlock()
	fire(hooks)
	return nil
}

// Login persists the identity and advances the in-memory state as one
// unit: both happen under the state lock, so no reader can observe
// "stored but not in memory" or the reverse. A failed store write
// leaves the session state untouched.
func (m *SessionManager) Login(ctx context.Context, id domain.Identity) error {
	if !id.Usable() || id.Email == "" {
		return fmt.Errorf("%w: subject, email and role are required", ErrValidation)
	}

	m.mu.Lock()

	if err := m.store.Save(ctx, id); err != nil {
		m.mu.Unlock()
		return err
	}
	m.state = ports.StateAuthenticated
	m.identity = id
	m.restored = true
	hooks := snapshotHooks(m.onAuthenticated)
	m.mu.Unlock()

	fire(hooks)
	return nil
}

// Logout clears every persisted key format and resets to anonymous.
// Safe to call when already anonymous.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if err := m.store.Clear(ctx); err != nil {
		log.Printf("session: clear on logout: %v", err)
	}
	m.state = ports.StateAnonymous
	m.identity = domain.Identity{}
	m.restored = true
	hooks := snapshotHooks(m.onLogout)
	m.mu.Unlock()

	fire(hooks)
	return nil
}

func snapshotHooks(hooks []func()) []func() {
	out := make([]func(), len(hooks))
	copy(out, hooks)
	return out
}

func fire(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}

// HandleAuthRejected is the upstream-401 path: the backend no longer
// honors our credential, so the session is forced to anonymous.
func (m *SessionManager) HandleAuthRejected(ctx context.Context) {
	if !m.IsAuthenticated() {
		return
	}
	log.Printf("session: credential rejected upstream, forcing logout")
	_ = m.Logout(ctx)
}

func (m *SessionManager) State() ports.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *SessionManager) Identity() (domain.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ports.StateAuthenticated {
		return domain.Identity{}, false
	}
	return m.identity, true
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.State() == ports.StateAuthenticated
}

func (m *SessionManager) IsAdmin() bool {
	id, ok := m.Identity()
	return ok && id.Role == domain.RoleAdmin
}

// IsDoctor answers true only for approved doctors: approval gates
// access, so a pending or rejected doctor counts as not-a-doctor.
func (m *SessionManager) IsDoctor() bool {
	id, ok := m.Identity()
	return ok && id.IsApprovedDoctor()
}

func (m *SessionManager) IsPatient() bool {
	id, ok := m.Identity()
	return ok && id.Role == domain.RolePatient
}

// HasStoredCredential reports whether any credential material exists
// in the persistent store, usable or not. Guards consult this while a
// session reads anonymous to avoid redirecting a client whose
// restoration has not caught up yet.
func (m *SessionManager) HasStoredCredential(ctx context.Context) bool {
	return m.store.HasAny(ctx)
}
