package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLeadBudgetRepository implements LeadBudgetRepository using GORM
type GormLeadBudgetRepository struct {
	db *gorm.DB
}

// NewGormLeadBudgetRepository creates a new GormLeadBudgetRepository
func NewGormLeadBudgetRepository(db *gorm.DB) *GormLeadBudgetRepository {
	return &GormLeadBudgetRepository{db: db}
}

// FindByID finds a lead budget by its ID
func (r *GormLeadBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.LeadBudget, error) {
	var model models.LeadBudgetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForUpdate finds a lead budget by ID and locks the row for
// the duration of the surrounding transaction.
func (r *GormLeadBudgetRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*budget.LeadBudget, error) {
	var model models.LeadBudgetModel
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByDepartmentAndUser finds the lead budget for a user within a department budget
func (r *GormLeadBudgetRepository) FindByDepartmentAndUser(ctx context.Context, departmentBudgetID, userID uuid.UUID) (*budget.LeadBudget, error) {
	var model models.LeadBudgetModel
	if err := r.db.WithContext(ctx).
		Where("department_budget_id = ? AND user_id = ?", departmentBudgetID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save persists a lead budget
func (r *GormLeadBudgetRepository) Save(ctx context.Context, b *budget.LeadBudget) error {
	model := models.LeadBudgetModelFromDomain(b)
	return r.db.WithContext(ctx).Save(model).Error
}
