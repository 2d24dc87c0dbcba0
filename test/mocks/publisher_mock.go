package mocks

import (
	"context"
	"sync"

	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// MockNotificationPublisher implements ports.NotificationPublisher for
// testing the outbox relay without a real RabbitMQ connection.
//
// In the hexagonal architecture:
// - ports.NotificationPublisher is the port (interface)
// - RabbitMQBroker is the real adapter (production)
// - MockNotificationPublisher is the test adapter (testing)
type MockNotificationPublisher struct {
	mu sync.RWMutex

	// Track published events for verification
	PublishedEvents []ports.NotificationCreatedEvent

	// Error injection for testing error scenarios
	PublishError error

	// Track number of calls
	PublishCallCount int
}

var _ ports.NotificationPublisher = (*MockNotificationPublisher)(nil)

func NewMockNotificationPublisher() *MockNotificationPublisher {
	return &MockNotificationPublisher{
		PublishedEvents: make([]ports.NotificationCreatedEvent, 0),
	}
}

// PublishNotificationCreated captures published events for verification.
func (m *MockNotificationPublisher) PublishNotificationCreated(ctx context.Context, evt ports.NotificationCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns all events that were published.
func (m *MockNotificationPublisher) GetPublishedEvents() []ports.NotificationCreatedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	events := make([]ports.NotificationCreatedEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

// GetPublishCount returns the number of publish calls observed.
func (m *MockNotificationPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}

// Reset clears all tracking data.
func (m *MockNotificationPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedEvents = make([]ports.NotificationCreatedEvent, 0)
	m.PublishError = nil
	m.PublishCallCount = 0
}
