package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project/backend/models"
)

type stubApprover struct {
	err    error
	emails []string
}

func (a *stubApprover) ApproveUpgrade(ctx context.Context, email string, target models.Tier) error {
	a.emails = append(a.emails, email)
	return a.err
}

func TestUpgradeApproved(t *testing.T) {
	store := &stubStore{progress: freshProgress()}
	approver := &stubApprover{}
	svc := NewSubscriptionService(store, approver)

	tier, err := svc.Upgrade(context.Background(), 1, "learner@example.com", "premium")
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, tier)
	assert.Equal(t, []models.Tier{models.TierPremium}, store.tiers)
	assert.Equal(t, []string{"learner@example.com"}, approver.emails)
}

func TestUpgradeDenied(t *testing.T) {
	store := &stubStore{progress: freshProgress()}
	approver := &stubApprover{err: errors.New("card declined: insufficient funds")}
	svc := NewSubscriptionService(store, approver)

	_, err := svc.Upgrade(context.Background(), 1, "learner@example.com", "premium")
	require.Error(t, err)

	// The denial reason never leaks and the stored tier is untouched
	serr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorEntitlementDenied, serr.Code)
	assert.Equal(t, "entitlement upgrade failed", serr.Message)
	assert.Empty(t, store.tiers)
}

func TestUpgradeUnknownTier(t *testing.T) {
	store := &stubStore{progress: freshProgress()}
	approver := &stubApprover{}
	svc := NewSubscriptionService(store, approver)

	_, err := svc.Upgrade(context.Background(), 1, "learner@example.com", "gold")
	require.Error(t, err)

	serr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorInvalid, serr.Code)

	// An invalid tier never reaches the approver
	assert.Empty(t, approver.emails)
}

func TestAutoApprover(t *testing.T) {
	assert.NoError(t, AutoApprover{}.ApproveUpgrade(context.Background(), "anyone@example.com", models.TierPro))
}
