package budget

import (
	"context"

	"github.com/rewards/backend/internal/domain/audit"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/infrastructure/persistence"
	"gorm.io/gorm"
)

// Repositories bundles the stores one budget operation touches. All
// of them are bound to the same transaction handle.
type Repositories struct {
	Tenants     identity.TenantRepository
	Departments budget.DepartmentBudgetRepository
	Leads       budget.LeadBudgetRepository
	Wallets     budget.WalletRepository
	Ledger      budget.LedgerRepository
	Audit       audit.Repository
}

// UnitOfWork runs fn inside a single database transaction. When fn
// returns an error the transaction rolls back and nothing fn wrote is
// observable.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// GormUnitOfWork implements UnitOfWork on a gorm connection
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn within one transaction, handing it repositories
// bound to the transaction handle
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := Repositories{
			Tenants:     persistence.NewGormTenantRepository(tx),
			Departments: persistence.NewGormDepartmentBudgetRepository(tx),
			Leads:       persistence.NewGormLeadBudgetRepository(tx),
			Wallets:     persistence.NewGormWalletRepository(tx),
			Ledger:      persistence.NewGormLedgerRepository(tx),
			Audit:       persistence.NewGormAuditRepository(tx),
		}
		return fn(ctx, repos)
	})
}
