package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/ports"
)

// SubscriptionPeriod is how long one simulated payment keeps a parent active.
const SubscriptionPeriod = 30 * 24 * time.Hour

type SubscriptionService struct {
	store ports.SubscriptionStore
	now   func() time.Time
}

var _ ports.SubscriptionService = (*SubscriptionService)(nil)

func NewSubscriptionService(store ports.SubscriptionStore) *SubscriptionService {
	return &SubscriptionService{store: store, now: time.Now}
}

// SetClock replaces the time source.
func (s *SubscriptionService) SetClock(now func() time.Time) {
	s.now = now
}

// Activate records a simulated payment. No money moves.
func (s *SubscriptionService) Activate(ctx context.Context, parent domain.Identity) (*domain.Receipt, error) {
	now := s.now().UTC()
	expiry := now.Add(SubscriptionPeriod)

	if err := s.store.SetExpiry(ctx, parent.ID, expiry); err != nil {
		return nil, domain.StoreError("set expiry", err)
	}

	receipt := domain.Receipt{
		Reference: uuid.NewString(),
		ParentID:  parent.ID,
		Program:   domain.NormalizeProgram(parent.Program),
		Amount:    domain.PriceOf(parent.Program),
		PaidAt:    now,
		Expiry:    expiry,
	}
	if err := s.store.SaveReceipt(ctx, receipt); err != nil {
		return nil, domain.StoreError("save receipt", err)
	}
	return &receipt, nil
}

// IsActive is true while now is before the stored expiry. An expired entry
// is removed on read.
func (s *SubscriptionService) IsActive(ctx context.Context, parentID string) (bool, error) {
	_, active, err := s.check(ctx, parentID)
	return active, err
}

func (s *SubscriptionService) check(ctx context.Context, parentID string) (time.Time, bool, error) {
	expiry, ok, err := s.store.GetExpiry(ctx, parentID)
	if err != nil {
		return time.Time{}, false, domain.StoreError("get expiry", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	if s.now().Before(expiry) {
		return expiry, true, nil
	}
	if err := s.store.ClearExpiry(ctx, parentID); err != nil {
		return time.Time{}, false, domain.StoreError("clear expiry", err)
	}
	return time.Time{}, false, nil
}

func (s *SubscriptionService) Status(ctx context.Context, parentID string) (*domain.SubscriptionStatus, error) {
	expiry, active, err := s.check(ctx, parentID)
	if err != nil {
		return nil, err
	}
	status := &domain.SubscriptionStatus{ParentID: parentID, Active: active}
	if active {
		status.Expiry = &expiry
	}
	receipt, err := s.store.GetReceipt(ctx, parentID)
	if err != nil {
		return nil, domain.StoreError("get receipt", err)
	}
	status.LastReceipt = receipt
	return status, nil
}
