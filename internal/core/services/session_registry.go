package services

import (
	"sync"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
)

// Client bundles the per-session pair of session manager and
// notification cache. One Client corresponds to one sid cookie.
type Client struct {
	Session       *SessionManager
	Notifications *NotificationCache
}

// SessionRegistry maps gateway session ids (the sid cookie) to their
// clients, constructing one lazily per new id. Each client's session
// starts in the restoring state, exactly like a freshly reloaded SPA.
type SessionRegistry struct {
	mu      sync.Mutex
	clients map[string]*Client
	factory func(sid string) *Client
}

func NewSessionRegistry(factory func(sid string) *Client) *SessionRegistry {
	return &SessionRegistry{
		clients: make(map[string]*Client),
		factory: factory,
	}
}

// Get returns the client for sid, creating it on first sight. The
// registry evicts on logout and when restoration settles on anonymous:
// a request carrying an unknown or expired sid must not pin a client
// in memory. The persisted credential store is what survives.
func (r *SessionRegistry) Get(sid string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[sid]; ok {
		return c
	}
	c := r.factory(sid)
	c.Session.OnLogout(func() { r.evict(sid) })
	c.Session.OnRestoredAnonymous(func() { r.evict(sid) })
	r.clients[sid] = c
	return c
}

// DeliverTo fans a push-delivered notification out to every live
// client authenticated as the recipient.
func (r *SessionRegistry) DeliverTo(recipientID string, w domain.WireNotification) {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		if id, ok := c.Session.Identity(); ok && id.SubjectID == recipientID {
			c.Notifications.AddIncoming(w)
		}
	}
}

// Len reports the number of live in-memory clients, for metrics.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *SessionRegistry) evict(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, sid)
}
