package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
)

// EmployeeWallet holds an employee's spendable points. The balance is
// only ever mutated inside budget engine transactions, each mutation
// paired with a wallet ledger entry.
type EmployeeWallet struct {
	shared.TenantAggregateRoot
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Balance valueobject.Points
}

// NewEmployeeWallet creates an empty wallet for an employee
func NewEmployeeWallet(tenantID, userID uuid.UUID, currency valueobject.Currency) (*EmployeeWallet, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("tenant and user ids are required")
	}

	return &EmployeeWallet{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Balance:             valueobject.Zero(currency),
	}, nil
}

// Credit adds awarded points to the wallet
func (w *EmployeeWallet) Credit(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}

	balance, err := w.Balance.Add(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}
	w.Balance = balance
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewPointsAwardedEvent(w, amount))

	return nil
}

// Debit removes spent points from the wallet
func (w *EmployeeWallet) Debit(amount valueobject.Points) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	ok, err := w.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return shared.ErrCurrencyMismatch
	}
	if !ok {
		return shared.ErrInsufficientBalance.WithMessage(
			"spend of " + amount.String() + " exceeds balance " + w.Balance.String())
	}

	balance, err := w.Balance.Subtract(amount)
	if err != nil {
		return err
	}
	w.Balance = balance
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewPointsSpentEvent(w, amount))

	return nil
}
