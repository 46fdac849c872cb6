package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ledgerSortFields contains allowed sort fields for ledger listings
var ledgerSortFields = map[string]bool{
	"created_at": true,
	"amount":     true,
	"entry_type": true,
}

// GormLedgerRepository implements LedgerRepository using GORM. Each
// tier has its own table; the repository dispatches on entry tier.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// tierModel returns a fresh model for the tier's table
func tierModel(tier budget.Tier) (interface{ TableName() string }, error) {
	switch tier {
	case budget.TierPlatform:
		return &models.PlatformLedgerEntryModel{}, nil
	case budget.TierTenant:
		return &models.TenantLedgerEntryModel{}, nil
	case budget.TierDepartment:
		return &models.DepartmentLedgerEntryModel{}, nil
	case budget.TierWallet:
		return &models.WalletLedgerEntryModel{}, nil
	default:
		return nil, fmt.Errorf("unknown ledger tier: %s", tier)
	}
}

// Append writes one immutable ledger entry to the tier's table
func (r *GormLedgerRepository) Append(ctx context.Context, entry *budget.LedgerEntry) error {
	switch entry.Tier {
	case budget.TierPlatform:
		model := &models.PlatformLedgerEntryModel{}
		model.FromDomainEntry(entry)
		return r.db.WithContext(ctx).Create(model).Error
	case budget.TierTenant:
		model := &models.TenantLedgerEntryModel{}
		model.FromDomainEntry(entry)
		return r.db.WithContext(ctx).Create(model).Error
	case budget.TierDepartment:
		model := &models.DepartmentLedgerEntryModel{}
		model.FromDomainEntry(entry)
		return r.db.WithContext(ctx).Create(model).Error
	case budget.TierWallet:
		model := &models.WalletLedgerEntryModel{}
		model.FromDomainEntry(entry)
		return r.db.WithContext(ctx).Create(model).Error
	default:
		return fmt.Errorf("unknown ledger tier: %s", entry.Tier)
	}
}

// List returns a page of ledger entries for one balance holder
func (r *GormLedgerRepository) List(ctx context.Context, filter budget.LedgerFilter) (*shared.Paginated[budget.LedgerEntry], error) {
	model, err := tierModel(filter.Tier)
	if err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := r.db.WithContext(ctx).Table(model.TableName()).
		Where("owner_id = ?", filter.OwnerID)
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ledgerSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rows []models.TenantLedgerEntryModel
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offset).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]budget.LedgerEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].ToDomainEntry(filter.Tier)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// SumForOwner returns the signed sum of all entries for one balance holder
func (r *GormLedgerRepository) SumForOwner(ctx context.Context, tier budget.Tier, ownerID uuid.UUID) (decimal.Decimal, error) {
	model, err := tierModel(tier)
	if err != nil {
		return decimal.Zero, err
	}

	var sum decimal.NullDecimal
	err = r.db.WithContext(ctx).Table(model.TableName()).
		Select("COALESCE(SUM(amount), 0)").
		Where("owner_id = ?", ownerID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// MonthToDateByType returns the absolute sum of entries of one type
// for an owner in the calendar month containing at. Month boundaries
// are computed in UTC.
func (r *GormLedgerRepository) MonthToDateByType(ctx context.Context, tier budget.Tier, ownerID uuid.UUID, entryType budget.EntryType, at time.Time) (decimal.Decimal, error) {
	model, err := tierModel(tier)
	if err != nil {
		return decimal.Zero, err
	}

	at = at.UTC()
	monthStart := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var sum decimal.NullDecimal
	err = r.db.WithContext(ctx).Table(model.TableName()).
		Select("COALESCE(SUM(ABS(amount)), 0)").
		Where("owner_id = ? AND entry_type = ? AND created_at >= ? AND created_at < ?",
			ownerID, entryType, monthStart, nextMonth).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// HasIdempotencyKey reports whether a platform-tier entry with this
// key already exists for the tenant.
func (r *GormLedgerRepository) HasIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PlatformLedgerEntryModel{}).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
