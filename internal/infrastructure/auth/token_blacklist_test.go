package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewards/backend/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		revoked, err := bl.IsRevoked(ctx, "missing-jti")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked jti is reported", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))

		revoked, err := bl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("revocation expires with the token", func(t *testing.T) {
		require.NoError(t, bl.Revoke(ctx, "jti-2", -time.Second))

		revoked, err := bl.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedBefore := time.Now().Add(-time.Minute)
	require.NoError(t, bl.RevokeUser(ctx, "user-1", time.Hour))
	issuedAfter := time.Now().Add(time.Minute)

	t.Run("tokens issued before the cutoff are revoked", func(t *testing.T) {
		revoked, err := bl.IsUserRevoked(ctx, "user-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("tokens issued after the cutoff survive", func(t *testing.T) {
		revoked, err := bl.IsUserRevoked(ctx, "user-1", issuedAfter)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		revoked, err := bl.IsUserRevoked(ctx, "user-2", issuedBefore)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
