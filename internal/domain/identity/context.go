package identity

import (
	"context"

	"github.com/google/uuid"
)

// PlatformTenantID is the reserved sentinel tenant id used for
// platform-level actions. Audit rows carry a NOT NULL tenant_id; when
// a platform administrator acts outside any tenant, this sentinel
// keeps that invariant universal.
var PlatformTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// ActorType identifies who performed a ledgered operation
type ActorType string

const (
	ActorTypePlatformAdmin ActorType = "platform_admin"
	ActorTypeTenantManager ActorType = "tenant_manager"
	ActorTypeDeptLead      ActorType = "dept_lead"
	ActorTypeSystem        ActorType = "system"
)

// IsValid checks if the actor type is valid
func (a ActorType) IsValid() bool {
	switch a {
	case ActorTypePlatformAdmin, ActorTypeTenantManager, ActorTypeDeptLead, ActorTypeSystem:
		return true
	}
	return false
}

// Actor is the resolved identity performing an operation
type Actor struct {
	UserID uuid.UUID
	Type   ActorType
}

// Context is the resolved tenant scope for one logical operation.
// It is produced once by the authentication collaborator (middleware)
// and passed down unchanged; it is never mutated mid-operation.
type Context struct {
	TenantID     uuid.UUID
	GlobalAccess bool
}

// Scoped reports whether the context binds the caller to one tenant
func (c Context) Scoped() bool {
	return !c.GlobalAccess && c.TenantID != uuid.Nil
}

// AuditTenantID returns the tenant id to record on audit rows:
// the bound tenant, or the platform sentinel for global actors.
func (c Context) AuditTenantID() uuid.UUID {
	if c.TenantID != uuid.Nil {
		return c.TenantID
	}
	return PlatformTenantID
}

type contextKey struct{}

// WithContext attaches a tenant Context to a context.Context
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the tenant Context. The second return value is
// false for background/system callers that carry no tenant context.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}
