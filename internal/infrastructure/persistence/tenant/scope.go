// Package tenant provides multi-tenant database scoping for GORM.
//
// Two lines of defense keep tenants apart. The Callback registered by
// EnableIsolationFilter injects WHERE tenant_id = ? into every
// statement a tenant-bound caller runs against a tenant-scoped table,
// and blocks statements it cannot classify. The DB wrapper in this
// file additionally makes scoping visible at the call site:
//
//	db := tenant.NewDB(gormDB)
//	db.WithContext(ctx).Find(&wallets) // scoped to the caller's tenant
package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Scope applies a tenant predicate to a GORM query
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// DB wraps a GORM DB with explicit tenant scoping helpers
type DB struct {
	db *gorm.DB
}

// NewDB creates a tenant-scoping DB wrapper
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Unscoped returns the underlying GORM DB without tenant scoping.
// System-level operations and migrations only.
func (t *DB) Unscoped() *gorm.DB {
	return t.db
}

// WithContext returns a GORM DB carrying the request context. Scoped
// callers additionally get an explicit tenant predicate; the callback
// filter covers anything this wrapper is bypassed for.
func (t *DB) WithContext(ctx context.Context) *gorm.DB {
	tenantCtx, ok := identity.FromContext(ctx)
	if !ok || tenantCtx.GlobalAccess {
		return t.db.WithContext(ctx)
	}
	if tenantCtx.TenantID == uuid.Nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(shared.ErrIsolationBypass.WithMessage("scoped context carries no tenant id"))
		return db
	}
	return t.db.WithContext(ctx).Scopes(Scope(tenantCtx.TenantID))
}

// ForTenant returns a GORM DB explicitly scoped to one tenant,
// regardless of the ambient context.
func (t *DB) ForTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(shared.ErrIsolationBypass.WithMessage("explicit scope requires a tenant id"))
		return db
	}
	return t.db.WithContext(ctx).Scopes(Scope(tenantID))
}

// Transaction runs fn inside a database transaction. The transaction
// handle inherits the context, so the callback filter stays active for
// every statement inside it.
func (t *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}
