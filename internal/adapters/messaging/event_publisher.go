package messaging

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

var _ ports.EventPublisher = (*RabbitMQBroker)(nil)

// Publish sends evt to the exchange with the event type as routing key.
func (rmq *RabbitMQBroker) Publish(ctx context.Context, evt ports.OutboxEvent) error {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err := rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.ch.PublishWithContext(
			ctx,
			rmq.exchange,
			evt.Type,
			false, // mandatory
			false, // immediate
			newMessage(evt),
		)
	})
	return err
}

// newMessage carries the outbox id as MessageId; consumers dedupe on it.
func newMessage(evt ports.OutboxEvent) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.Type,
		Timestamp:    evt.CreatedAt,
		Body:         evt.Payload,
	}
}
