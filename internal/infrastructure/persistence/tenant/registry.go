package tenant

// Table classification for the isolation filter. The sets are static
// and declared in code: a table the filter has never heard of is
// treated as tenant-scoped and blocked for scoped callers, never
// silently passed through.
//
// Each tenant-scoped table maps to the column carrying the tenant id.
// The tenants table scopes on its own primary key.

var tenantScopedTables = map[string]string{
	"tenants":                   "id",
	"department_budgets":        "tenant_id",
	"lead_budgets":              "tenant_id",
	"employee_wallets":          "tenant_id",
	"tenant_ledger_entries":     "tenant_id",
	"department_ledger_entries": "tenant_id",
	"wallet_ledger_entries":     "tenant_id",
	"audit_log_entries":         "tenant_id",
}

var globalTables = map[string]bool{
	"platform_ledger_entries": true,
	"schema_migrations":       true,
}

// Classification is the filter's verdict on a table
type Classification int

const (
	// ClassUnknown means the table is not registered. Scoped callers
	// are blocked from unknown tables.
	ClassUnknown Classification = iota
	// ClassTenantScoped means the table carries a tenant id column
	ClassTenantScoped
	// ClassGlobal means the table holds platform-wide rows
	ClassGlobal
)

// Classify returns the registered classification for a table
func Classify(table string) Classification {
	if _, ok := tenantScopedTables[table]; ok {
		return ClassTenantScoped
	}
	if globalTables[table] {
		return ClassGlobal
	}
	return ClassUnknown
}

// ScopeColumn returns the tenant scoping column for a tenant-scoped
// table, defaulting to tenant_id.
func ScopeColumn(table string) string {
	if col, ok := tenantScopedTables[table]; ok {
		return col
	}
	return "tenant_id"
}

// RegisterTenantScoped adds a table to the tenant-scoped set. Called
// from init code when new tenant-owned tables are introduced.
func RegisterTenantScoped(table, column string) {
	if column == "" {
		column = "tenant_id"
	}
	tenantScopedTables[table] = column
}

// RegisterGlobal adds a table to the global set
func RegisterGlobal(table string) {
	globalTables[table] = true
}
