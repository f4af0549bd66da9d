package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// MockNoticeFeed lets tests push program snapshots by hand.
type MockNoticeFeed struct {
	mu        sync.Mutex
	snapshots map[string][]domain.Notice
	watchers  map[string][]chan []domain.Notice

	WatchError    error
	WatchCalls    []string
	ReleasedCount int
}

var _ ports.NoticeFeed = (*MockNoticeFeed)(nil)

func NewMockNoticeFeed() *MockNoticeFeed {
	return &MockNoticeFeed{
		snapshots: make(map[string][]domain.Notice),
		watchers:  make(map[string][]chan []domain.Notice),
	}
}

// Watch sends the last published snapshot of program straight away.
func (m *MockNoticeFeed) Watch(ctx context.Context, program string) (<-chan []domain.Notice, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WatchCalls = append(m.WatchCalls, program)
	if m.WatchError != nil {
		return nil, nil, m.WatchError
	}

	ch := make(chan []domain.Notice, 16)
	ch <- m.snapshots[program]
	m.watchers[program] = append(m.watchers[program], ch)

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.ReleasedCount++
			list := m.watchers[program]
			for i, c := range list {
				if c == ch {
					m.watchers[program] = append(list[:i], list[i+1:]...)
					close(ch)
					return
				}
			}
		})
	}
	return ch, release, nil
}

// Publish replaces the snapshot of program and sends it to every watcher.
func (m *MockNoticeFeed) Publish(program string, snapshot []domain.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[program] = snapshot
	for _, ch := range m.watchers[program] {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// CloseAll closes every open watcher channel, as the feed does on shutdown.
func (m *MockNoticeFeed) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for program, list := range m.watchers {
		for _, ch := range list {
			close(ch)
		}
		delete(m.watchers, program)
	}
}

func (m *MockNoticeFeed) Watchers(program string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers[program])
}
