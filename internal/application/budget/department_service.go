package budget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DepartmentService serves department budget reads and provisioning.
// Balance mutations go through the Engine only.
type DepartmentService struct {
	departments budget.DepartmentBudgetRepository
	tenants     identity.TenantRepository
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(departments budget.DepartmentBudgetRepository, tenants identity.TenantRepository) *DepartmentService {
	return &DepartmentService{departments: departments, tenants: tenants}
}

// CreateDepartmentBudgetInput carries the fields for provisioning a
// department budget. MonthlyCap and ExpiresAt are optional.
type CreateDepartmentBudgetInput struct {
	TenantID     uuid.UUID
	DepartmentID uuid.UUID
	Name         string
	MonthlyCap   *decimal.Decimal
	ExpiresAt    *time.Time
}

// Create provisions an empty budget for a department in the tenant's
// configured currency. A department holds at most one budget.
func (s *DepartmentService) Create(ctx context.Context, input CreateDepartmentBudgetInput) (*budget.DepartmentBudget, error) {
	tenant, err := s.tenants.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, shared.ErrInvalidState.WithMessage("tenant is not active")
	}

	if _, err := s.departments.FindByDepartment(ctx, input.DepartmentID); err == nil {
		return nil, shared.ErrAlreadyExists.WithMessage("department already has a budget")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	b, err := budget.NewDepartmentBudget(input.TenantID, input.DepartmentID, input.Name, tenant.Config.Currency)
	if err != nil {
		return nil, err
	}
	if input.MonthlyCap != nil {
		monthlyCap, err := valueobject.NewPoints(*input.MonthlyCap, tenant.Config.Currency)
		if err != nil {
			return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
		}
		if err := b.SetMonthlyCap(&monthlyCap); err != nil {
			return nil, err
		}
	}
	if input.ExpiresAt != nil {
		b.SetExpiry(input.ExpiresAt)
	}

	if err := s.departments.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns one department budget by id
func (s *DepartmentService) Get(ctx context.Context, id uuid.UUID) (*budget.DepartmentBudget, error) {
	return s.departments.FindByID(ctx, id)
}

// GetByDepartment returns the budget attached to a department
func (s *DepartmentService) GetByDepartment(ctx context.Context, departmentID uuid.UUID) (*budget.DepartmentBudget, error) {
	return s.departments.FindByDepartment(ctx, departmentID)
}
