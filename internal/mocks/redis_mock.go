package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for the Redis commands the cache
// adapter issues. Keys with a TTL expire against the mock's clock.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]mockRedisValue
	now  func() time.Time

	// Error injection
	SetError    error
	GetError    error
	DelError    error
	ExistsError error
	PingError   error
}

type mockRedisValue struct {
	value     string
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]mockRedisValue),
		now:  time.Now,
	}
}

// SetClock replaces the clock used for TTL checks.
func (m *MockRedisClient) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = m.now().Add(expiration)
	}
	m.data[key] = mockRedisValue{value: value.(string), expiresAt: expiresAt}

	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}

	val, ok := m.live(key)
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val.value)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}

	var deleted int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewIntCmd(ctx)
	if m.ExistsError != nil {
		cmd.SetErr(m.ExistsError)
		return cmd
	}

	var count int64
	for _, key := range keys {
		if _, ok := m.live(key); ok {
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// live returns the value of key unless it has expired. Callers hold m.mu.
func (m *MockRedisClient) live(key string) (mockRedisValue, bool) {
	val, ok := m.data[key]
	if !ok {
		return val, false
	}
	if !val.expiresAt.IsZero() && m.now().After(val.expiresAt) {
		return val, false
	}
	return val, true
}

// SetKey directly sets a key (for test setup).
func (m *MockRedisClient) SetKey(key, value string, expiration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = m.now().Add(expiration)
	}
	m.data[key] = mockRedisValue{value: value, expiresAt: expiresAt}
}

// HasKey checks if a live key exists (for test assertions).
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.live(key)
	return ok
}

// TTL returns the remaining lifetime of key, or 0 if it has none.
func (m *MockRedisClient) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.live(key)
	if !ok || val.expiresAt.IsZero() {
		return 0
	}
	return val.expiresAt.Sub(m.now())
}
