package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// SubscriptionStore keeps the paid-until date and last receipt per parent.
type SubscriptionStore interface {
	SetExpiry(ctx context.Context, parentID string, expiry time.Time) error
	// GetExpiry returns ok=false when no expiry is stored.
	GetExpiry(ctx context.Context, parentID string) (expiry time.Time, ok bool, err error)
	ClearExpiry(ctx context.Context, parentID string) error
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error
	GetReceipt(ctx context.Context, parentID string) (*domain.Receipt, error)
}

// TokenStore tracks revoked session tokens by their jti, and subjects whose
// tokens issued before a point in time are no longer valid.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeSubject(ctx context.Context, subject string, since time.Time, ttl time.Duration) error
	// RevokedSince returns ok=false when the subject was never revoked.
	RevokedSince(ctx context.Context, subject string) (since time.Time, ok bool, err error)
}
