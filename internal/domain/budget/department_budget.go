package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// DepartmentBudget is the per-department pool inside a tenant.
// AllocatedPoints accumulates distributions received from the tenant;
// SpentPoints accumulates awards paid out. Remaining is always
// allocated minus spent and never negative.
type DepartmentBudget struct {
	shared.TenantAggregateRoot
	DepartmentID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name            string    `gorm:"type:varchar(200);not null"`
	AllocatedPoints valueobject.Points
	SpentPoints     valueobject.Points
	MonthlyCap      *valueobject.Points
	ExpiresAt       *time.Time
}

// NewDepartmentBudget creates an empty budget for a department
func NewDepartmentBudget(tenantID, departmentID uuid.UUID, name string, currency valueobject.Currency) (*DepartmentBudget, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Department budget name cannot be empty")
	}
	if tenantID == uuid.Nil || departmentID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("tenant and department ids are required")
	}

	return &DepartmentBudget{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DepartmentID:        departmentID,
		Name:                name,
		AllocatedPoints:     valueobject.Zero(currency),
		SpentPoints:         valueobject.Zero(currency),
	}, nil
}

// Remaining returns the spendable portion: allocated minus spent.
func (b *DepartmentBudget) Remaining() valueobject.Points {
	remaining, err := b.AllocatedPoints.Subtract(b.SpentPoints)
	if err != nil {
		// allocated and spent always share the budget currency
		return valueobject.Zero(b.AllocatedPoints.Currency())
	}
	return remaining
}

// Receive credits a distribution from the tenant pool
func (b *DepartmentBudget) Receive(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}

	allocated, err := b.AllocatedPoints.Add(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}

	b.AllocatedPoints = allocated
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewBudgetDistributedEvent(b, amount))

	return nil
}

// Spend records an award paid out of this budget
func (b *DepartmentBudget) Spend(amount valueobject.Points) error {
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

// IsExpired reports whether the budget has passed its expiry date
func (b *DepartmentBudget) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

// SetMonthlyCap sets or clears the monthly award cap
func (b *DepartmentBudget) SetMonthlyCap(cap *valueobject.Points) error {
	if cap != nil && cap.IsNegative() {
		return shared.ErrInvalidAmount
	}
	b.MonthlyCap = cap
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// SetExpiry sets or clears the budget expiry date
func (b *DepartmentBudget) SetExpiry(expiresAt *time.Time) {
	b.ExpiresAt = expiresAt
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
