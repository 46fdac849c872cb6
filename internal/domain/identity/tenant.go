package identity

import (
	"strings"
	"time"

	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
)

// TenantConfig holds configurable settings for a tenant. It is a plain
// snapshot read once per operation and handed into the budget engine;
// never process-wide mutable state.
type TenantConfig struct {
	Currency       valueobject.Currency `json:"currency"`        // Points currency for the whole hierarchy
	MarkupPercent  int                  `json:"markup_percent"`  // Voucher markup applied at redemption time
	Features       string               `json:"features"`        // JSON object of enabled feature flags
	MonthlyCapping bool                 `json:"monthly_capping"` // Whether department monthly caps are enforced
}

// DefaultTenantConfig returns the default configuration for a new tenant
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		Currency:       valueobject.DefaultCurrency,
		MarkupPercent:  0,
		Features:       "{}",
		MonthlyCapping: true,
	}
}

// Tenant is an isolated customer organization and the top-level budget
// holder. BudgetAllocated accumulates everything ever received from
// the platform pool; BudgetAllocationBalance is the unspent remainder.
// Only budget engine transactions mutate either field, and every
// mutation is paired with a ledger entry.
type Tenant struct {
	shared.BaseAggregateRoot
	Code                    string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                    string       `gorm:"type:varchar(200);not null"`
	Status                  TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	BudgetAllocated         valueobject.Points
	BudgetAllocationBalance valueobject.Points
	Config                  TenantConfig `gorm:"embedded;embeddedPrefix:config_"`
}

// NewTenant creates a new tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}

	cfg := DefaultTenantConfig()
	tenant := &Tenant{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		Code:                    strings.ToUpper(code),
		Name:                    name,
		Status:                  TenantStatusActive,
		BudgetAllocated:         valueobject.Zero(cfg.Currency),
		BudgetAllocationBalance: valueobject.Zero(cfg.Currency),
		Config:                  cfg,
	}

	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))

	return tenant, nil
}

// CreditAllocation applies a platform allocation: both the cumulative
// total and the spendable balance grow by amount.
func (t *Tenant) CreditAllocation(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.Currency() != t.Config.Currency {
		return shared.ErrCurrencyMismatch
	}

	allocated, err := t.BudgetAllocated.Add(amount)
	if err != nil {
		return err
	}
	balance, err := t.BudgetAllocationBalance.Add(amount)
	if err != nil {
		return err
	}

	t.BudgetAllocated = allocated
	t.BudgetAllocationBalance = balance
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantBudgetAllocatedEvent(t, amount))

	return nil
}

// Clawback removes unspent balance. The cumulative allocated total is
// historical and stays untouched.
func (t *Tenant) Clawback(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	ok, err := t.BudgetAllocationBalance.GreaterThanOrEqual(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}
	if !ok {
		return shared.ErrInsufficientBalance.WithMessage(
			"clawback of " + amount.String() + " exceeds balance " + t.BudgetAllocationBalance.String())
	}

	balance, err := t.BudgetAllocationBalance.Subtract(amount)
	if err != nil {
		return err
	}
	t.BudgetAllocationBalance = balance
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantBudgetClawedBackEvent(t, amount))

	return nil
}

// DebitForDistribution moves unspent balance out of the tenant toward
// a department budget.
func (t *Tenant) DebitForDistribution(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	ok, err := t.BudgetAllocationBalance.GreaterThanOrEqual(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}
	if !ok {
		return shared.ErrInsufficientBalance.WithMessage(
			"distribution of " + amount.String() + " exceeds balance " + t.BudgetAllocationBalance.String())
	}

	balance, err := t.BudgetAllocationBalance.Subtract(amount)
	if err != nil {
		return err
	}
	t.BudgetAllocationBalance = balance
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateConfig replaces the tenant's configuration snapshot
func (t *Tenant) UpdateConfig(config TenantConfig) error {
	if config.Currency == "" {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	if config.MarkupPercent < 0 {
		return shared.NewDomainError("INVALID_MARKUP", "Markup percent cannot be negative")
	}

	t.Config = config
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Suspend suspends the tenant (e.g. contract lapse). Suspended tenants
// keep their balances but the engine refuses new operations.
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Activate activates the tenant
func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

func validateTenantCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Tenant code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
