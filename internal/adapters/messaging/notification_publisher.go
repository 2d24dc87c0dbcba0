package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

var _ ports.NotificationPublisher = (*RabbitMQBroker)(nil)

// ErrBrokerUnavailable is returned when publishing is attempted on a
// broker that never connected. Callers keep the event unprocessed and
// retry later.
var ErrBrokerUnavailable = errors.New("notification broker unavailable")

func (rmq *RabbitMQBroker) PublishNotificationCreated(ctx context.Context, evt ports.NotificationCreatedEvent) error {
	if rmq == nil || rmq.ch == nil {
		return ErrBrokerUnavailable
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	// Use circuit breaker to protect RabbitMQ publish operation
	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}
