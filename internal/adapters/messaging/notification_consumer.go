package messaging

import (
	"context"
	"encoding/json"
	"log"

	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
)

// Deliverer routes a push-delivered notification to its recipient's
// cache. The session registry implements this.
type Deliverer interface {
	DeliverTo(recipientID string, w domain.WireNotification)
}

// Consume drains the notifications queue and feeds each event to the
// deliverer. Blocking; returns when the context is cancelled or the
// delivery channel closes. Malformed payloads are acked and dropped so
// one bad message cannot wedge the queue.
func (rmq *RabbitMQBroker) Consume(ctx context.Context, deliverer Deliverer) error {
	deliveries, err := rmq.ch.Consume(
		rmq.queueName,
		"",    // consumer tag (server-generated)
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	log.Printf("notification consumer: consuming from '%s'", rmq.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case d, ok := <-deliveries:
			if !ok {
				log.Println("notification consumer: delivery channel closed")
				return nil
			}

			var evt ports.NotificationCreatedEvent
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				log.Printf("notification consumer: invalid payload: %v", err)
				_ = d.Ack(false)
				continue
			}

			deliverer.DeliverTo(evt.RecipientID, evt.Notification)
			if err := d.Ack(false); err != nil {
				log.Printf("notification consumer: ack failed: %v", err)
			}
		}
	}
}
