package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWalletRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWalletRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	userID := uuid.New()

	wallet, err := budget.NewEmployeeWallet(tenantID, userID, valueobject.PTS)
	require.NoError(t, err)
	require.NoError(t, wallet.Credit(valueobject.NewPointsFromInt(120, valueobject.PTS)))
	require.NoError(t, repo.Save(ctx, wallet))

	t.Run("round-trips the wallet", func(t *testing.T) {
		found, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, wallet.ID, found.ID)
		assert.Equal(t, tenantID, found.TenantID)
		assert.Equal(t, userID, found.UserID)
		assert.True(t, found.Balance.Amount().Equal(decimalFromInt(120)))
	})

	t.Run("finds by user", func(t *testing.T) {
		found, err := repo.FindByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, wallet.ID, found.ID)
	})

	t.Run("debit persists through save", func(t *testing.T) {
		require.NoError(t, wallet.Debit(valueobject.NewPointsFromInt(20, valueobject.PTS)))
		require.NoError(t, repo.Save(ctx, wallet))

		found, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		assert.True(t, found.Balance.Amount().Equal(decimalFromInt(100)))
	})

	t.Run("missing wallet returns not found", func(t *testing.T) {
		_, err := repo.FindByUser(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormWalletRepository_SaveWithVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWalletRepository(db)
	ctx := context.Background()

	wallet, err := budget.NewEmployeeWallet(uuid.New(), uuid.New(), valueobject.PTS)
	require.NoError(t, err)
	require.NoError(t, wallet.Credit(valueobject.NewPointsFromInt(100, valueobject.PTS)))
	require.NoError(t, repo.Save(ctx, wallet))

	t.Run("stale copy loses the write race", func(t *testing.T) {
		first, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)

		require.NoError(t, first.Debit(valueobject.NewPointsFromInt(60, valueobject.PTS)))
		require.NoError(t, repo.SaveWithVersion(ctx, first))

		require.NoError(t, second.Debit(valueobject.NewPointsFromInt(60, valueobject.PTS)))
		err = repo.SaveWithVersion(ctx, second)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		// the committed balance reflects only the winning debit
		found, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		assert.True(t, found.Balance.Amount().Equal(decimalFromInt(40)))
	})

	t.Run("winner's version advances", func(t *testing.T) {
		found, err := repo.FindByID(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Version)
	})
}
