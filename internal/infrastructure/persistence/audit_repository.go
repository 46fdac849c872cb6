package persistence

import (
	"context"
	"fmt"

	"github.com/rewards/backend/internal/domain/audit"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// auditSortFields contains allowed sort fields for audit log listings
var auditSortFields = map[string]bool{
	"created_at":  true,
	"action":      true,
	"entity_type": true,
}

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends one audit log entry. It participates in whatever
// transaction the context-bound DB handle carries.
func (r *GormAuditRepository) Record(ctx context.Context, entry *audit.LogEntry) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// List returns a page of audit log entries
func (r *GormAuditRepository) List(ctx context.Context, filter audit.Filter) (*shared.Paginated[audit.LogEntry], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{}).
		Where("tenant_id = ?", filter.TenantID)
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, auditSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rows []models.AuditLogModel
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(offset).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.LogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, *rows[i].ToDomain())
	}

	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}
