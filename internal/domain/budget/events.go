package budget

import (
	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeDepartmentBudget = "DepartmentBudget"
	AggregateTypeLeadBudget       = "LeadBudget"
	AggregateTypeEmployeeWallet   = "EmployeeWallet"
)

// Event type constants
const (
	EventTypeBudgetDistributed   = "BudgetDistributed"
	EventTypeLeadBudgetAllocated = "LeadBudgetAllocated"
	EventTypePointsAwarded       = "PointsAwarded"
	EventTypePointsSpent         = "PointsSpent"
)

// BudgetDistributedEvent is published when tenant budget lands on a department
type BudgetDistributedEvent struct {
	shared.BaseDomainEvent
	DepartmentID uuid.UUID          `json:"department_id"`
	Amount       valueobject.Points `json:"amount"`
	Remaining    valueobject.Points `json:"remaining"`
}

// NewBudgetDistributedEvent creates a new BudgetDistributedEvent
func NewBudgetDistributedEvent(b *DepartmentBudget, amount valueobject.Points) *BudgetDistributedEvent {
	return &BudgetDistributedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetDistributed, AggregateTypeDepartmentBudget, b.ID, b.TenantID),
		DepartmentID:    b.DepartmentID,
		Amount:          amount,
		Remaining:       b.Remaining(),
	}
}

// LeadBudgetAllocatedEvent is published when a lead's earmark is topped up
type LeadBudgetAllocatedEvent struct {
	shared.BaseDomainEvent
	DepartmentBudgetID uuid.UUID          `json:"department_budget_id"`
	UserID             uuid.UUID          `json:"user_id"`
	Amount             valueobject.Points `json:"amount"`
	Total              valueobject.Points `json:"total"`
}

// NewLeadBudgetAllocatedEvent creates a new LeadBudgetAllocatedEvent
func NewLeadBudgetAllocatedEvent(b *LeadBudget, amount valueobject.Points) *LeadBudgetAllocatedEvent {
	return &LeadBudgetAllocatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeLeadBudgetAllocated, AggregateTypeLeadBudget, b.ID, b.TenantID),
		DepartmentBudgetID: b.DepartmentBudgetID,
		UserID:             b.UserID,
		Amount:             amount,
		Total:              b.TotalPoints,
	}
}

// PointsAwardedEvent is published when points land in an employee wallet
type PointsAwardedEvent struct {
	shared.BaseDomainEvent
	UserID  uuid.UUID          `json:"user_id"`
	Amount  valueobject.Points `json:"amount"`
	Balance valueobject.Points `json:"balance"`
}

// NewPointsAwardedEvent creates a new PointsAwardedEvent
func NewPointsAwardedEvent(w *EmployeeWallet, amount valueobject.Points) *PointsAwardedEvent {
	return &PointsAwardedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsAwarded, AggregateTypeEmployeeWallet, w.ID, w.TenantID),
		UserID:          w.UserID,
		Amount:          amount,
		Balance:         w.Balance,
	}
}

// PointsSpentEvent is published when an employee redeems points
type PointsSpentEvent struct {
	shared.BaseDomainEvent
	UserID  uuid.UUID          `json:"user_id"`
	Amount  valueobject.Points `json:"amount"`
	Balance valueobject.Points `json:"balance"`
}

// NewPointsSpentEvent creates a new PointsSpentEvent
func NewPointsSpentEvent(w *EmployeeWallet, amount valueobject.Points) *PointsSpentEvent {
	return &PointsSpentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsSpent, AggregateTypeEmployeeWallet, w.ID, w.TenantID),
		UserID:          w.UserID,
		Amount:          amount,
		Balance:         w.Balance,
	}
}
