package messaging

import (
	"context"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

func TestNewMessage(t *testing.T) {
	created := time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)
	evt := ports.OutboxEvent{
		ID:        "evt-1",
		Type:      ports.EventNoticePosted,
		Payload:   []byte(`{"notice_id":"n1"}`),
		CreatedAt: created,
	}

	msg := newMessage(evt)

	if msg.MessageId != "evt-1" {
		t.Errorf("expected message id evt-1, got %q", msg.MessageId)
	}
	if msg.Type != ports.EventNoticePosted {
		t.Errorf("expected type %q, got %q", ports.EventNoticePosted, msg.Type)
	}
	if msg.DeliveryMode != amqp.Persistent {
		t.Errorf("expected persistent delivery, got %d", msg.DeliveryMode)
	}
	if msg.ContentType != "application/json" {
		t.Errorf("expected application/json, got %q", msg.ContentType)
	}
	if !msg.Timestamp.Equal(created) {
		t.Errorf("expected timestamp %v, got %v", created, msg.Timestamp)
	}
	if string(msg.Body) != `{"notice_id":"n1"}` {
		t.Errorf("unexpected body %s", msg.Body)
	}
}

func TestPublish_ExpiredContext(t *testing.T) {
	rmq := &RabbitMQBroker{}
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	if err := rmq.Publish(ctx, ports.OutboxEvent{ID: "evt-1"}); err == nil {
		t.Fatal("expected error for expired context")
	}
}

// TestPublish_RabbitMQ needs a broker at TEST_AMQP_URL.
func TestPublish_RabbitMQ(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set")
	}
	const exchange = "kinder.events.test"

	rmq, err := NewRabbitMQBroker(url, exchange, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rmq.Close()

	q, err := rmq.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		t.Fatalf("declare queue: %v", err)
	}
	if err := rmq.ch.QueueBind(q.Name, "notice.*", exchange, false, nil); err != nil {
		t.Fatalf("bind: %v", err)
	}
	deliveries, err := rmq.ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	evt := ports.OutboxEvent{ID: "evt-1", Type: ports.EventNoticePosted, Payload: []byte(`{}`), CreatedAt: time.Now().UTC()}
	if err := rmq.Publish(ctx, evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case d := <-deliveries:
		if d.MessageId != "evt-1" || d.RoutingKey != ports.EventNoticePosted {
			t.Errorf("unexpected delivery id=%q key=%q", d.MessageId, d.RoutingKey)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for delivery")
	}
}
