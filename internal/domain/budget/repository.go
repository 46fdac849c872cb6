package budget

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DepartmentBudgetRepository persists department budgets
type DepartmentBudgetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DepartmentBudget, error)
	// FindByIDForUpdate locks the budget row for the duration of the
	// surrounding transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*DepartmentBudget, error)
	FindByDepartment(ctx context.Context, departmentID uuid.UUID) (*DepartmentBudget, error)
	Save(ctx context.Context, b *DepartmentBudget) error
	// SumLeadTotals returns the sum of all lead earmark totals under a
	// department budget, used to bound further lead allocations.
	SumLeadTotals(ctx context.Context, departmentBudgetID uuid.UUID) (decimal.Decimal, error)
}

// LeadBudgetRepository persists lead budget earmarks
type LeadBudgetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LeadBudget, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*LeadBudget, error)
	FindByDepartmentAndUser(ctx context.Context, departmentBudgetID, userID uuid.UUID) (*LeadBudget, error)
	Save(ctx context.Context, b *LeadBudget) error
}

// WalletRepository persists employee wallets
type WalletRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EmployeeWallet, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*EmployeeWallet, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*EmployeeWallet, error)
	Save(ctx context.Context, w *EmployeeWallet) error
	// SaveWithVersion persists the wallet only if its stored version
	// still matches, returning shared.ErrConcurrencyConflict otherwise.
	SaveWithVersion(ctx context.Context, w *EmployeeWallet) error
}

// LedgerFilter narrows ledger reads. Tier and OwnerID are required;
// the rest are optional.
type LedgerFilter struct {
	shared.Filter
	Tier    Tier
	OwnerID uuid.UUID
	ActorID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// LedgerRepository appends and reads immutable ledger entries. There
// is intentionally no update or delete method.
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error

	List(ctx context.Context, filter LedgerFilter) (*shared.Paginated[LedgerEntry], error)

	// SumForOwner returns the signed sum of all entries for one
	// balance holder within a tier, the reconciliation figure.
	SumForOwner(ctx context.Context, tier Tier, ownerID uuid.UUID) (decimal.Decimal, error)

	// MonthToDateByType returns the absolute sum of entries of one
	// type for an owner in the calendar month containing at, used for
	// monthly cap enforcement.
	MonthToDateByType(ctx context.Context, tier Tier, ownerID uuid.UUID, entryType EntryType, at time.Time) (decimal.Decimal, error)

	// HasIdempotencyKey reports whether a platform-tier entry with
	// this key already exists for the tenant.
	HasIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (bool, error)
}
