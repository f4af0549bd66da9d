package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// Client is the subset of *redis.Client used here.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store keeps subscription state and revoked tokens in Redis.
type Store struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

var (
	_ ports.SubscriptionStore = (*Store)(nil)
	_ ports.TokenStore        = (*Store)(nil)
)

func NewStore(client Client, cb *gobreaker.CircuitBreaker) *Store {
	return &Store{client: client, cb: cb}
}

func expiryKey(parentID string) string  { return "expiry_" + parentID }
func receiptKey(parentID string) string { return "receipt_" + parentID }
func revokedKey(tokenID string) string  { return "revoked_" + tokenID }
func subjectKey(subject string) string  { return "revoked_subject_" + subject }

func (s *Store) do(fn func() error) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}

// SetExpiry stores the paid-until time without a Redis TTL; expiry is
// decided by the subscription service on read.
func (s *Store) SetExpiry(ctx context.Context, parentID string, expiry time.Time) error {
	return s.do(func() error {
		return s.client.Set(ctx, expiryKey(parentID), expiry.UTC().Format(time.RFC3339Nano), 0).Err()
	})
}

func (s *Store) GetExpiry(ctx context.Context, parentID string) (time.Time, bool, error) {
	var raw string
	var found bool
	err := s.do(func() error {
		v, err := s.client.Get(ctx, expiryKey(parentID)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, found = v, true
		return nil
	})
	if err != nil || !found {
		return time.Time{}, false, err
	}
	expiry, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// An unreadable value is treated as expired.
		return time.Time{}, true, nil
	}
	return expiry, true, nil
}

func (s *Store) ClearExpiry(ctx context.Context, parentID string) error {
	return s.do(func() error {
		return s.client.Del(ctx, expiryKey(parentID)).Err()
	})
}

func (s *Store) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	body, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return s.do(func() error {
		return s.client.Set(ctx, receiptKey(receipt.ParentID), string(body), 0).Err()
	})
}

// GetReceipt returns nil when the parent never paid.
func (s *Store) GetReceipt(ctx context.Context, parentID string) (*domain.Receipt, error) {
	var raw string
	err := s.do(func() error {
		v, err := s.client.Get(ctx, receiptKey(parentID)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = v
		return err
	})
	if err != nil || raw == "" {
		return nil, err
	}
	var receipt domain.Receipt
	if err := json.Unmarshal([]byte(raw), &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (s *Store) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.do(func() error {
		return s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
	})
}

func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var n int64
	err := s.do(func() error {
		var err error
		n, err = s.client.Exists(ctx, revokedKey(tokenID)).Result()
		return err
	})
	return n > 0, err
}

// RevokeSubject invalidates every token of subject issued before since. The
// key outlives the longest session by ttl.
func (s *Store) RevokeSubject(ctx context.Context, subject string, since time.Time, ttl time.Duration) error {
	return s.do(func() error {
		return s.client.Set(ctx, subjectKey(subject), since.UTC().Format(time.RFC3339Nano), ttl).Err()
	})
}

func (s *Store) RevokedSince(ctx context.Context, subject string) (time.Time, bool, error) {
	var raw string
	err := s.do(func() error {
		v, err := s.client.Get(ctx, subjectKey(subject)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = v
		return err
	})
	if err != nil || raw == "" {
		return time.Time{}, false, err
	}
	since, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse revocation time of %s: %w", subject, err)
	}
	return since, true, nil
}
