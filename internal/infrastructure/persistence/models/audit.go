package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/audit"
	"github.com/rewards/backend/internal/domain/identity"
)

// AuditLogModel is the persistence model for audit log entries.
// Rows are append-only and never updated or deleted.
type AuditLogModel struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_audit_tenant_created"`
	Action     string             `gorm:"type:varchar(100);not null;index"`
	EntityType string             `gorm:"type:varchar(100);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_audit_entity"`
	OldValues  audit.Snapshot     `gorm:"type:jsonb"`
	NewValues  audit.Snapshot     `gorm:"type:jsonb"`
	ActorID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	ActorType  identity.ActorType `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time          `gorm:"not null;index:idx_audit_tenant_created"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_log_entries"
}

// ToDomain converts the persistence model to a domain LogEntry
func (m *AuditLogModel) ToDomain() *audit.LogEntry {
	return &audit.LogEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		OldValues:  m.OldValues,
		NewValues:  m.NewValues,
		ActorID:    m.ActorID,
		ActorType:  m.ActorType,
		CreatedAt:  m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates a persistence model from a domain LogEntry
func AuditLogModelFromDomain(e *audit.LogEntry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValues:  e.OldValues,
		NewValues:  e.NewValues,
		ActorID:    e.ActorID,
		ActorType:  e.ActorType,
		CreatedAt:  e.CreatedAt,
	}
}
