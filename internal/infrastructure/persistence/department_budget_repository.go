package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDepartmentBudgetRepository implements DepartmentBudgetRepository using GORM
type GormDepartmentBudgetRepository struct {
	db *gorm.DB
}

// NewGormDepartmentBudgetRepository creates a new GormDepartmentBudgetRepository
func NewGormDepartmentBudgetRepository(db *gorm.DB) *GormDepartmentBudgetRepository {
	return &GormDepartmentBudgetRepository{db: db}
}

// FindByID finds a department budget by its ID
func (r *GormDepartmentBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.DepartmentBudget, error) {
	var model models.DepartmentBudgetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForUpdate finds a department budget by ID and locks the row
// for the duration of the surrounding transaction.
func (r *GormDepartmentBudgetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*budget.DepartmentBudget, error) {
	var model models.DepartmentBudgetModel
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByDepartment finds the budget attached to a department
func (r *GormDepartmentBudgetRepository) FindByDepartment(ctx context.Context, departmentID uuid.UUID) (*budget.DepartmentBudget, error) {
	var model models.DepartmentBudgetModel
	if err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save persists a department budget
func (r *GormDepartmentBudgetRepository) Save(ctx context.Context, b *budget.DepartmentBudget) error {
	model := models.DepartmentBudgetModelFromDomain(b)
	return r.db.WithContext(ctx).Save(model).Error
}

// SumLeadTotals returns the sum of lead earmark totals under a department budget
func (r *GormDepartmentBudgetRepository) SumLeadTotals(ctx context.Context, departmentBudgetID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.LeadBudgetModel{}).
		Select("COALESCE(SUM(total_points), 0)").
		Where("department_budget_id = ?", departmentBudgetID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
