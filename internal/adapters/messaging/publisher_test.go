package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/messaging"
	"github.com/curalink/telehealth/session-gateway/test/mocks"
)

func TestPublish_NilBroker(t *testing.T) {
	// A broker that never connected must answer with an error, not a
	// panic, so the relay keeps the event unprocessed for a retry.
	var broker *messaging.RabbitMQBroker

	err := broker.PublishNotificationCreated(context.Background(), mocks.CreateTestEvent())
	if !errors.Is(err, messaging.ErrBrokerUnavailable) {
		t.Fatalf("err = %v, want ErrBrokerUnavailable", err)
	}
}

func TestPing_NilBroker(t *testing.T) {
	var broker *messaging.RabbitMQBroker
	if broker.Ping() {
		t.Error("a nil broker must report not-alive")
	}
}
