package tenant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Callback hooks GORM's Query/Update/Delete/Row pipelines and injects
// a tenant_id predicate for tenant-scoped tables when the ambient
// identity.Context is bound to one tenant.
//
// The filter fails closed: if the target table cannot be classified,
// or a scoped statement targets an unregistered table, the statement
// is aborted with shared.ErrIsolationBypass instead of running
// unfiltered. Callers with GlobalAccess and background system callers
// without an identity context are exempt.
type Callback struct {
	tenantColumn string
	logger       *zap.Logger
}

// NewCallback creates a tenant callback handler
func NewCallback(tenantColumn string, logger *zap.Logger) *Callback {
	if tenantColumn == "" {
		tenantColumn = "tenant_id"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Callback{tenantColumn: tenantColumn, logger: logger}
}

// RegisterCallbacks registers the filter with GORM.
// Create is intentionally not hooked: tenant_id is set explicitly by
// the repositories when building rows, and the engine's cross-tenant
// checks cover writes.
func (tc *Callback) RegisterCallbacks(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("tenant:before_query", tc.applyFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("tenant:before_update", tc.applyFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenant:before_delete", tc.applyFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("tenant:before_row", tc.applyFilter)
}

func (tc *Callback) applyFilter(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	tenantCtx, ok := identity.FromContext(ctx)
	if !ok {
		// Background/system caller, trusted to scope explicitly
		return
	}
	if tenantCtx.GlobalAccess {
		return
	}
	if tenantCtx.TenantID == uuid.Nil {
		tc.block(db, "empty tenant id in scoped context", "")
		return
	}

	table := tc.tableName(db)
	if table == "" {
		tc.block(db, "statement table could not be resolved", table)
		return
	}

	switch Classify(table) {
	case ClassGlobal:
		return
	case ClassTenantScoped:
		column := ScopeColumn(table)
		// Skipping on an existing predicate only applies to the
		// dedicated tenant_id column. Tables scoped on another column
		// (the tenants table scopes on its primary key) always get
		// the injected predicate; it composes with the caller's.
		if column == tc.tenantColumn && tc.hasTenantCondition(db, column) {
			// Already scoped by the caller; predicates compose, the
			// injected filter would be redundant.
			return
		}
		db.Statement.AddClause(clause.Where{
			Exprs: []clause.Expression{
				clause.Eq{
					Column: clause.Column{Table: clause.CurrentTable, Name: column},
					Value:  tenantCtx.TenantID,
				},
			},
		})
	default:
		tc.block(db, "unregistered table in scoped context", table)
	}
}

// block aborts the statement and logs a security-relevant warning
func (tc *Callback) block(db *gorm.DB, reason, table string) {
	tc.logger.Warn("blocked unscoped statement",
		zap.String("reason", reason),
		zap.String("table", table),
	)
	_ = db.AddError(shared.ErrIsolationBypass.WithMessage(
		"isolation filter blocked statement: " + reason))
}

// tableName resolves the statement's target table, parsing the model
// or destination schema when the table was not named explicitly.
func (tc *Callback) tableName(db *gorm.DB) string {
	stmt := db.Statement
	if stmt.Table != "" {
		return stmt.Table
	}
	model := stmt.Model
	if model == nil {
		model = stmt.Dest
	}
	if model == nil {
		return ""
	}
	if err := stmt.Parse(model); err != nil {
		return ""
	}
	return stmt.Table
}

// hasTenantCondition checks if a predicate on the scope column is
// already present
func (tc *Callback) hasTenantCondition(db *gorm.DB, column string) bool {
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if tc.exprContainsColumn(expr, column) {
					return true
				}
			}
		}
	}

	// Raw SQL built ahead of callbacks
	sql := db.Statement.SQL.String()
	return sql != "" && strings.Contains(sql, column)
}

func (tc *Callback) exprContainsColumn(expr clause.Expression, column string) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == column
		}
	case clause.Expr:
		return strings.Contains(e.SQL, column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsColumn(cond, column) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsColumn(cond, column) {
				return true
			}
		}
	}
	return false
}

// EnableIsolationFilter registers the fail-closed tenant filter on a
// GORM DB instance.
func EnableIsolationFilter(db *gorm.DB, logger *zap.Logger) {
	NewCallback("tenant_id", logger).RegisterCallbacks(db)
}

// DisableIsolationFilter removes the tenant callbacks, for tests only
func DisableIsolationFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove("tenant:before_query")
	_ = db.Callback().Update().Remove("tenant:before_update")
	_ = db.Callback().Delete().Remove("tenant:before_delete")
	_ = db.Callback().Row().Remove("tenant:before_row")
}
