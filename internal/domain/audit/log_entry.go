package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
)

// Audit action constants, one per budget engine operation plus the
// isolation violation record.
const (
	ActionAllocateToTenant     = "budget.allocate_to_tenant"
	ActionClawbackFromTenant   = "budget.clawback_from_tenant"
	ActionDistributeToDept     = "budget.distribute_to_department"
	ActionAllocateToLead       = "budget.allocate_to_lead"
	ActionAwardToEmployee      = "budget.award_to_employee"
	ActionSpendFromWallet      = "budget.spend_from_wallet"
	ActionIsolationViolation   = "security.isolation_violation"
	ActionCrossTenantViolation = "security.cross_tenant_violation"
)

// Snapshot is a point-in-time JSON image of an entity's audited
// fields. Stored as a JSON column.
type Snapshot map[string]any

// Value implements driver.Valuer for database storage
func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (s *Snapshot) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Snapshot", value)
	}
	return json.Unmarshal(data, s)
}

// LogEntry is one immutable audit record. TenantID is never null:
// platform-level actions carry the platform sentinel tenant so every
// row is attributable. Entries are written in the same transaction as
// the mutation they describe and are never updated or deleted.
type LogEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	OldValues  Snapshot
	NewValues  Snapshot
	ActorID    uuid.UUID
	ActorType  identity.ActorType
	CreatedAt  time.Time
}

// NewLogEntry creates an audit record for one mutation. OldValues may
// be nil for creations.
func NewLogEntry(tenantID uuid.UUID, action, entityType string, entityID uuid.UUID, oldValues, newValues Snapshot, actor identity.Actor) (*LogEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("audit entries require a tenant id")
	}
	if action == "" || entityType == "" {
		return nil, shared.ErrInvalidInput.WithMessage("audit entries require action and entity type")
	}

	return &LogEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		ActorID:    actor.UserID,
		ActorType:  actor.Type,
		CreatedAt:  time.Now(),
	}, nil
}
