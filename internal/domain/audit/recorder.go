package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
)

// Recorder persists audit records. Record is called inside the same
// transaction as the mutation it describes, so a committed balance
// change without its audit row is never observable.
type Recorder interface {
	Record(ctx context.Context, entry *LogEntry) error
}

// Filter narrows audit log reads
type Filter struct {
	shared.Filter
	TenantID   uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
}

// Repository reads audit records. There is no update or delete.
type Repository interface {
	Recorder
	List(ctx context.Context, filter Filter) (*shared.Paginated[LogEntry], error)
}
