package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// MockEventPublisher implements ports.EventPublisher for testing the
// outbox relay without a broker.
type MockEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []ports.OutboxEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, evt ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the published events.
func (m *MockEventPublisher) GetPublishedEvents() []ports.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.OutboxEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

func (m *MockEventPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}
