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

// GormWalletRepository implements WalletRepository using GORM
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GormWalletRepository
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// FindByID finds a wallet by its ID
func (r *GormWalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.EmployeeWallet, error) {
	var model models.EmployeeWalletModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByIDForUpdate finds a wallet by ID and locks the row for the
// duration of the surrounding transaction.
func (r *GormWalletRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*budget.EmployeeWallet, error) {
	var model models.EmployeeWalletModel
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByUser finds the wallet owned by a user
func (r *GormWalletRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*budget.EmployeeWallet, error) {
	var model models.EmployeeWalletModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save persists a wallet
func (r *GormWalletRepository) Save(ctx context.Context, w *budget.EmployeeWallet) error {
	model := models.EmployeeWalletModelFromDomain(w)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithVersion persists the wallet with an optimistic version
// check. Domain mutations bump the in-memory version, so the check
// matches against the version the wallet was loaded with; a stale
// copy loses with ErrConcurrencyConflict.
func (r *GormWalletRepository) SaveWithVersion(ctx context.Context, w *budget.EmployeeWallet) error {
	result := r.db.WithContext(ctx).
		Model(&models.EmployeeWalletModel{}).
		Where("id = ? AND version = ?", w.ID, w.Version-1).
		Updates(map[string]any{
			"balance":    w.Balance.Amount(),
			"version":    w.Version,
			"updated_at": w.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
