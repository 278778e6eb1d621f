package services

import (
	"context"

	"project/backend/models"
)

// UpgradeApprover decides whether an account may move to the requested tier.
// Implementations may call out to a payment processor; the service only sees
// approved or not.
type UpgradeApprover interface {
	ApproveUpgrade(ctx context.Context, email string, target models.Tier) error
}

// AutoApprover approves every upgrade. Used until a payment processor is
// wired in, and by tests.
type AutoApprover struct{}

func (AutoApprover) ApproveUpgrade(ctx context.Context, email string, target models.Tier) error {
	return nil
}

// SubscriptionService changes account tiers. A denied or failed approval
// leaves the stored tier untouched and surfaces a single generic message so
// the response never leaks approver internals.
type SubscriptionService struct {
	store    ProfileStore
	approver UpgradeApprover
}

func NewSubscriptionService(store ProfileStore, approver UpgradeApprover) *SubscriptionService {
	return &SubscriptionService{store: store, approver: approver}
}

func (s *SubscriptionService) Upgrade(ctx context.Context, userID uint, email string, target string) (models.Tier, error) {
	if !models.ValidTier(target) {
		return "", NewInvalidError("unknown subscription tier")
	}
	tier := models.Tier(target)
	if err := s.approver.ApproveUpgrade(ctx, email, tier); err != nil {
		return "", NewEntitlementDeniedError("entitlement upgrade failed")
	}
	if err := s.store.UpdateUserTier(userID, tier); err != nil {
		return "", err
	}
	return tier, nil
}
