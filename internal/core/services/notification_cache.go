package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// NotificationCache is one client's view of their notification feed:
// a newest-first list plus an unread counter, fed by REST fetches and
// push-delivered records, with optimistic read-marking.
//
// Every record enters through normalization in ingest; no other code
// path touches the raw wire flags.
type NotificationCache struct {
	api   ports.NotificationAPI
	token func() (string, bool)

	// onAuthRejected runs when the backend answers 401, outside the
	// cache lock.
	onAuthRejected func(ctx context.Context)

	mu     sync.Mutex
	items  []domain.Notification
	unread int
}

func NewNotificationCache(api ports.NotificationAPI, token func() (string, bool)) *NotificationCache {
	return &NotificationCache{api: api, token: token}
}

// OnAuthRejected registers the forced-logout reaction to an upstream
// 401 on any notification call.
func (c *NotificationCache) OnAuthRejected(fn func(ctx context.Context)) {
	c.onAuthRejected = fn
}

// FetchPage loads one page from the backend. Page 1 replaces the
// cached list; deeper pages are appended after id-dedup. Failures are
// surfaced to the caller: the main list view shows them.
func (c *NotificationCache) FetchPage(ctx context.Context, page, limit int) ([]domain.Notification, error) {
	token, ok := c.token()
	if !ok {
		return nil, ports.ErrAuthRejected
	}

	wire, err := c.api.FetchPage(ctx, token, page, limit)
	if err != nil {
		c.maybeAuthRejected(ctx, err)
		return nil, err
	}

	records := make([]domain.Notification, 0, len(wire))
	for _, w := range wire {
		records = append(records, domain.NormalizeNotification(w))
	}

	c.mu.Lock()
	if page <= 1 {
		c.items = append([]domain.Notification(nil), records...)
	} else {
		for _, rec := range records {
			if c.indexOfLocked(rec.ID) < 0 {
				c.items = append(c.items, rec)
			}
		}
	}
	c.mu.Unlock()

	return records, nil
}

// UnreadCount returns the backend's unread total, or the last known
// cached value when the backend is unreachable. The badge this feeds
// must not flicker to zero on a transient failure.
func (c *NotificationCache) UnreadCount(ctx context.Context) int {
	token, ok := c.token()
	if !ok {
		return c.cachedUnread()
	}

	count, err := c.api.FetchUnreadCount(ctx, token)
	if err != nil {
		c.maybeAuthRejected(ctx, err)
		log.Printf("notification cache: unread count fetch failed, serving cached value: %v", err)
		return c.cachedUnread()
	}

	c.mu.Lock()
	c.unread = count
	c.mu.Unlock()
	return count
}

// MarkRead flips the record locally before the backend confirms, so
// the triggering click sees the change immediately. A backend reject
// restores the full pre-mutation record and counter, not just the
// flag, in case other fields had changed in between. An id this
// instance has not cached is still forwarded to the backend: the SPA
// may be showing records fetched through another gateway.
func (c *NotificationCache) MarkRead(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexOfLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		token, ok := c.token()
		if !ok {
			return ports.ErrAuthRejected
		}
		if err := c.api.MarkRead(ctx, token, id); err != nil {
			c.maybeAuthRejected(ctx, err)
			return err
		}
		return nil
	}
	prior := c.items[idx]
	priorUnread := c.unread
	if !prior.Read {
		c.items[idx].Read = true
		if c.unread > 0 {
			c.unread--
		}
	}
	c.mu.Unlock()

	token, ok := c.token()
	if !ok {
		c.rollback(id, prior, priorUnread)
		return ports.ErrAuthRejected
	}

	if err := c.api.MarkRead(ctx, token, id); err != nil {
		c.rollback(id, prior, priorUnread)
		c.maybeAuthRejected(ctx, err)
		return err
	}
	return nil
}

// AddIncoming ingests a push-delivered record: normalize, drop
// duplicates by id, prepend so the list stays newest-first.
func (c *NotificationCache) AddIncoming(w domain.WireNotification) {
	rec := domain.NormalizeNotification(w)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOfLocked(rec.ID) >= 0 {
		return
	}
	c.items = append([]domain.Notification{rec}, c.items...)
	if !rec.Read {
		c.unread++
	}
}

// Refresh fetches page 1 and the unread count concurrently.
func (c *NotificationCache) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := c.FetchPage(ctx, 1, defaultPageLimit); err != nil {
			log.Printf("notification cache: refresh page fetch failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		c.UnreadCount(ctx)
	}()
	wg.Wait()
}

const (
	defaultPageLimit       = 20
	defaultPollingInterval = 30 * time.Second
)

// StartPolling refreshes the cache on a fixed interval and returns an
// explicit stop handle. The handle is idempotent and is wired to the
// session's logout hook so a stale credential never keeps polling.
func (c *NotificationCache) StartPolling(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = defaultPollingInterval
	}
	pollCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				c.Refresh(pollCtx)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }
}

// Reset drops all cached state. Called on logout.
func (c *NotificationCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.unread = 0
}

// Items returns a copy of the cached list, newest first.
func (c *NotificationCache) Items() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

func (c *NotificationCache) cachedUnread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

func (c *NotificationCache) rollback(id string, prior domain.Notification, priorUnread int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexOfLocked(id); idx >= 0 {
		c.items[idx] = prior
	}
	c.unread = priorUnread
}

func (c *NotificationCache) maybeAuthRejected(ctx context.Context, err error) {
	if errors.Is(err, ports.ErrAuthRejected) && c.onAuthRejected != nil {
		c.onAuthRejected(ctx)
	}
}

// indexOfLocked requires c.mu to be held.
func (c *NotificationCache) indexOfLocked(id string) int {
	for i, rec := range c.items {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
