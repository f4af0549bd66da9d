package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/kinder/nursery-service/internal/config"
)

// RabbitMQBroker implements ports.EventPublisher on a topic exchange.
// The routing key of every message is the event type.
type RabbitMQBroker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	cb       *gobreaker.CircuitBreaker
}

func NewRabbitMQBroker(amqpURL, exchange string, log zerolog.Logger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQBroker{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		cb:       config.NewCircuitBreaker("RabbitMQ-Publisher", log),
	}, nil
}

func (rmq *RabbitMQBroker) Close() error {
	if rmq.ch != nil {
		if err := rmq.ch.Close(); err != nil {
			return err
		}
	}
	if rmq.conn != nil {
		return rmq.conn.Close()
	}
	return nil
}
