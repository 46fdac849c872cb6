package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// LeadBudget is a team lead's personal earmark carved out of a
// department budget. The sum of all lead totals under one department
// budget never exceeds that budget's allocation; the engine enforces
// this under the department row lock.
type LeadBudget struct {
	shared.TenantAggregateRoot
	DepartmentBudgetID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index"`
	TotalPoints        valueobject.Points
	SpentPoints        valueobject.Points
}

// NewLeadBudget creates an empty lead budget under a department budget
func NewLeadBudget(tenantID, departmentBudgetID, userID uuid.UUID, currency valueobject.Currency) (*LeadBudget, error) {
	if tenantID == uuid.Nil || departmentBudgetID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("tenant, department budget, and user ids are required")
	}

	return &LeadBudget{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DepartmentBudgetID:  departmentBudgetID,
		UserID:              userID,
		TotalPoints:         valueobject.Zero(currency),
		SpentPoints:         valueobject.Zero(currency),
	}, nil
}

// Remaining returns the unspent portion of the lead's earmark
func (b *LeadBudget) Remaining() valueobject.Points {
	remaining, err := b.TotalPoints.Subtract(b.SpentPoints)
	if err != nil {
		return valueobject.Zero(b.TotalPoints.Currency())
	}
	return remaining
}

// TopUp grows the lead's earmark
func (b *LeadBudget) TopUp(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}

	total, err := b.TotalPoints.Add(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}
	b.TotalPoints = total
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewLeadBudgetAllocatedEvent(b, amount))

	return nil
}

// Spend records an award paid out of the lead's earmark
func (b *LeadBudget) Spend(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	ok, err := b.Remaining().GreaterThanOrEqual(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}
	if !ok {
		return shared.ErrInsufficientBalance.WithMessage(
			"award of " + amount.String() + " exceeds remaining " + b.Remaining().String())
	}

	spent, err := b.SpentPoints.Add(amount)
	if err != nil {
		return err
	}
	b.SpentPoints = spent
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}
