package identity

import (
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// Aggregate type constant
const AggregateTypeTenant = "Tenant"

// Event type constants
const (
	EventTypeTenantCreated         = "TenantCreated"
	EventTypeTenantBudgetAllocated = "TenantBudgetAllocated"
	EventTypeTenantBudgetClawback  = "TenantBudgetClawback"
)

// TenantCreatedEvent is published when a new tenant is created
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Status TenantStatus `json:"status"`
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(tenant *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantCreated, AggregateTypeTenant, tenant.ID, tenant.ID),
		Code:            tenant.Code,
		Name:            tenant.Name,
		Status:          tenant.Status,
	}
}

// TenantBudgetAllocatedEvent is published when platform budget lands on a tenant
type TenantBudgetAllocatedEvent struct {
	shared.BaseDomainEvent
	Amount  valueobject.Points `json:"amount"`
	Balance valueobject.Points `json:"balance"`
}

// NewTenantBudgetAllocatedEvent creates a new TenantBudgetAllocatedEvent
func NewTenantBudgetAllocatedEvent(tenant *Tenant, amount valueobject.Points) *TenantBudgetAllocatedEvent {
	return &TenantBudgetAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantBudgetAllocated, AggregateTypeTenant, tenant.ID, tenant.ID),
		Amount:          amount,
		Balance:         tenant.BudgetAllocationBalance,
	}
}

// TenantBudgetClawedBackEvent is published when unspent budget is reclaimed
type TenantBudgetClawedBackEvent struct {
	shared.BaseDomainEvent
	Amount  valueobject.Points `json:"amount"`
	Balance valueobject.Points `json:"balance"`
}

// NewTenantBudgetClawedBackEvent creates a new TenantBudgetClawedBackEvent
func NewTenantBudgetClawedBackEvent(tenant *Tenant, amount valueobject.Points) *TenantBudgetClawedBackEvent {
	return &TenantBudgetClawedBackEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantBudgetClawback, AggregateTypeTenant, tenant.ID, tenant.ID),
		Amount:          amount,
		Balance:         tenant.BudgetAllocationBalance,
	}
}
