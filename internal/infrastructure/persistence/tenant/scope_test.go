package tenant

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// WalletRow is a registered tenant-scoped table for filter tests
type WalletRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID   uuid.UUID `gorm:"type:uuid"`
	Balance  string
}

func (WalletRow) TableName() string { return "employee_wallets" }

// PlatformRow is a registered global table
type PlatformRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid"`
}

func (PlatformRow) TableName() string { return "platform_ledger_entries" }

// UnregisteredRow is deliberately absent from the registry
type UnregisteredRow struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (UnregisteredRow) TableName() string { return "unregistered_rows" }

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassTenantScoped, Classify("employee_wallets"))
	assert.Equal(t, ClassTenantScoped, Classify("tenant_ledger_entries"))
	assert.Equal(t, ClassGlobal, Classify("platform_ledger_entries"))
	assert.Equal(t, ClassUnknown, Classify("mystery_table"))
}

func TestDB_WithContext(t *testing.T) {
	tenantID := uuid.New()

	t.Run("scoped context applies predicate", func(t *testing.T) {
		gormDB, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "employee_wallets" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		ctx := identity.WithContext(context.Background(), identity.Context{TenantID: tenantID})
		var rows []WalletRow
		err := NewDB(gormDB).WithContext(ctx).Find(&rows).Error

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("global access gets no predicate", func(t *testing.T) {
		gormDB, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "employee_wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		ctx := identity.WithContext(context.Background(), identity.Context{GlobalAccess: true})
		var rows []WalletRow
		err := NewDB(gormDB).WithContext(ctx).Find(&rows).Error

		require.NoError(t, err)
	})

	t.Run("scoped context without tenant id errors", func(t *testing.T) {
		gormDB, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		ctx := identity.WithContext(context.Background(), identity.Context{})
		var rows []WalletRow
		err := NewDB(gormDB).WithContext(ctx).Find(&rows).Error

		assert.ErrorIs(t, err, shared.ErrIsolationBypass)
	})
}

func TestDB_ForTenant(t *testing.T) {
	tenantID := uuid.New()

	t.Run("applies explicit tenant", func(t *testing.T) {
		gormDB, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "employee_wallets" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		var rows []WalletRow
		err := NewDB(gormDB).ForTenant(context.Background(), tenantID).Find(&rows).Error

		require.NoError(t, err)
	})

	t.Run("nil tenant errors", func(t *testing.T) {
		gormDB, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		var rows []WalletRow
		err := NewDB(gormDB).ForTenant(context.Background(), uuid.Nil).Find(&rows).Error

		assert.ErrorIs(t, err, shared.ErrIsolationBypass)
	})
}
