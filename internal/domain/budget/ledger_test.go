package budget

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerEntry(t *testing.T) {
	actor := identity.Actor{UserID: uuid.New(), Type: identity.ActorTypePlatformAdmin}
	tenantID := uuid.New()

	t.Run("creates signed entry", func(t *testing.T) {
		entry, err := NewLedgerEntry(TierTenant, tenantID, tenantID, EntryAllocation, pts(1000), actor, "quarterly allocation")
		require.NoError(t, err)

		assert.Equal(t, TierTenant, entry.Tier)
		assert.Equal(t, EntryAllocation, entry.Type)
		assert.True(t, entry.Amount.Equals(pts(1000)))
		assert.Nil(t, entry.IdempotencyKey)
		assert.NotEqual(t, uuid.Nil, entry.ID)
	})

	t.Run("negative amounts are valid", func(t *testing.T) {
		entry, err := NewLedgerEntry(TierWallet, tenantID, uuid.New(), EntrySpend, pts(-250), actor, "redemption")
		require.NoError(t, err)
		assert.True(t, entry.Amount.IsNegative())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewLedgerEntry(TierTenant, tenantID, tenantID, EntryAllocation, pts(0), actor, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidAmount))
	})

	t.Run("rejects invalid tier and actor", func(t *testing.T) {
		_, err := NewLedgerEntry(Tier("team"), tenantID, tenantID, EntryAllocation, pts(1), actor, "")
		require.Error(t, err)

		_, err = NewLedgerEntry(TierTenant, tenantID, tenantID, EntryAllocation, pts(1), identity.Actor{UserID: uuid.New()}, "")
		require.Error(t, err)
	})

	t.Run("idempotency key attaches", func(t *testing.T) {
		entry, err := NewLedgerEntry(TierPlatform, tenantID, identity.PlatformTenantID, EntryAllocation, pts(100), actor, "")
		require.NoError(t, err)

		entry = entry.WithIdempotencyKey("alloc-2026-q1")
		require.NotNil(t, entry.IdempotencyKey)
		assert.Equal(t, "alloc-2026-q1", *entry.IdempotencyKey)
	})
}
