package mocks

import (
	"context"
	"sync"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// MockNotificationAPI implements ports.NotificationAPI for testing.
// It lets tests script the backend's pages, counts, and failures
// without a real HTTP server.
type MockNotificationAPI struct {
	mu sync.RWMutex

	// Scripted responses
	Pages       map[int][]domain.WireNotification
	Count       int
	FetchErr    error
	CountErr    error
	MarkReadErr error

	// Call tracking
	FetchPageCalls int
	CountCalls     int
	MarkReadCalls  int
	MarkedReadIDs  []string
	LastTokenSeen  string
}

var _ ports.NotificationAPI = (*MockNotificationAPI)(nil)

func NewMockNotificationAPI() *MockNotificationAPI {
	return &MockNotificationAPI{
		Pages: make(map[int][]domain.WireNotification),
	}
}

func (m *MockNotificationAPI) FetchPage(ctx context.Context, token string, page, limit int) ([]domain.WireNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchPageCalls++
	m.LastTokenSeen = token
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.Pages[page], nil
}

func (m *MockNotificationAPI) FetchUnreadCount(ctx context.Context, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CountCalls++
	m.LastTokenSeen = token
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.Count, nil
}

// Stats returns the call counters under the mock's lock, for
// assertions that run concurrently with cache goroutines.
func (m *MockNotificationAPI) Stats() (fetchPage, count, markRead int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.FetchPageCalls, m.CountCalls, m.MarkReadCalls
}

func (m *MockNotificationAPI) MarkRead(ctx context.Context, token, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkReadCalls++
	m.LastTokenSeen = token
	if m.MarkReadErr != nil {
		return m.MarkReadErr
	}
	m.MarkedReadIDs = append(m.MarkedReadIDs, id)
	return nil
}
