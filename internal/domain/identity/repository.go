package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
)

// TenantRepository defines persistence operations for the Tenant aggregate
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindByIDForUpdate locks the tenant row for the duration of the
	// surrounding transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[Tenant], error)
}
