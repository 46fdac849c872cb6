package identity

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/infrastructure/persistence"
)

func newTestService(t *testing.T) *TenantService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrateModels(db))

	return NewTenantService(persistence.NewGormTenantRepository(db), zap.NewNop())
}

func TestTenantService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("creates tenant with zero budget", func(t *testing.T) {
		dto, err := svc.Create(ctx, CreateTenantInput{Code: "acme", Name: "Acme Corp"})
		require.NoError(t, err)

		assert.Equal(t, "ACME", dto.Code)
		assert.Equal(t, "active", dto.Status)
		assert.Equal(t, "0.00 PTS", dto.BudgetAllocated)
		assert.Equal(t, "0.00 PTS", dto.BudgetAllocationBalance)
		assert.True(t, dto.Config.MonthlyCapping)
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTenantInput{Code: "ACME", Name: "Another Acme"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("invalid code rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTenantInput{Code: "bad code!", Name: "Bad"})
		assert.Error(t, err)
	})
}

func TestTenantService_Lifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateTenantInput{Code: "LIFE", Name: "Lifecycle Co"})
	require.NoError(t, err)

	t.Run("suspend", func(t *testing.T) {
		updated, err := svc.Suspend(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, "suspended", updated.Status)
	})

	t.Run("suspend twice rejected", func(t *testing.T) {
		_, err := svc.Suspend(ctx, dto.ID)
		assert.Error(t, err)
	})

	t.Run("activate", func(t *testing.T) {
		updated, err := svc.Activate(ctx, dto.ID)
		require.NoError(t, err)
		assert.Equal(t, "active", updated.Status)
	})
}

func TestTenantService_UpdateConfig(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateTenantInput{Code: "CFG", Name: "Config Co"})
	require.NoError(t, err)

	markup := 15
	capping := false
	updated, err := svc.UpdateConfig(ctx, dto.ID, TenantConfigInput{
		MarkupPercent:  &markup,
		MonthlyCapping: &capping,
	})
	require.NoError(t, err)

	assert.Equal(t, 15, updated.Config.MarkupPercent)
	assert.False(t, updated.Config.MonthlyCapping)
	// untouched fields keep their values
	assert.Equal(t, "PTS", updated.Config.Currency)
}

func TestTenantService_List(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, code := range []string{"T1", "T2", "T3"} {
		_, err := svc.Create(ctx, CreateTenantInput{Code: code, Name: "Tenant " + code})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, shared.Filter{Page: 1, PageSize: 2})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}
