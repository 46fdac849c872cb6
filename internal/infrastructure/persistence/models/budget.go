package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DepartmentBudgetModel is the persistence model for DepartmentBudget
type DepartmentBudgetModel struct {
	TenantAggregateModel
	DepartmentID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name            string           `gorm:"type:varchar(200);not null"`
	AllocatedPoints decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	SpentPoints     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        string           `gorm:"type:varchar(10);not null;default:'PTS'"`
	MonthlyCap      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ExpiresAt       *time.Time       `gorm:"index"`
}

// TableName returns the table name for GORM
func (DepartmentBudgetModel) TableName() string {
	return "department_budgets"
}

// ToDomain converts the persistence model to a domain DepartmentBudget
func (m *DepartmentBudgetModel) ToDomain() (*budget.DepartmentBudget, error) {
	currency := valueobject.Currency(m.Currency)

	allocated, err := valueobject.NewPoints(m.AllocatedPoints, currency)
	if err != nil {
		return nil, err
	}
	spent, err := valueobject.NewPoints(m.SpentPoints, currency)
	if err != nil {
		return nil, err
	}

	b := &budget.DepartmentBudget{
		DepartmentID:    m.DepartmentID,
		Name:            m.Name,
		AllocatedPoints: allocated,
		SpentPoints:     spent,
		ExpiresAt:       m.ExpiresAt,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)

	if m.MonthlyCap != nil {
		cap, err := valueobject.NewPoints(*m.MonthlyCap, currency)
		if err != nil {
			return nil, err
		}
		b.MonthlyCap = &cap
	}

	return b, nil
}

// FromDomain populates the persistence model from a domain DepartmentBudget
func (m *DepartmentBudgetModel) FromDomain(b *budget.DepartmentBudget) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.DepartmentID = b.DepartmentID
	m.Name = b.Name
	m.AllocatedPoints = b.AllocatedPoints.Amount()
	m.SpentPoints = b.SpentPoints.Amount()
	m.Currency = string(b.AllocatedPoints.Currency())
	m.ExpiresAt = b.ExpiresAt
	if b.MonthlyCap != nil {
		amount := b.MonthlyCap.Amount()
		m.MonthlyCap = &amount
	} else {
		m.MonthlyCap = nil
	}
}

// DepartmentBudgetModelFromDomain creates a persistence model from a domain DepartmentBudget
func DepartmentBudgetModelFromDomain(b *budget.DepartmentBudget) *DepartmentBudgetModel {
	m := &DepartmentBudgetModel{}
	m.FromDomain(b)
	return m
}

// LeadBudgetModel is the persistence model for LeadBudget
type LeadBudgetModel struct {
	TenantAggregateModel
	DepartmentBudgetID uuid.UUID       `gorm:"type:uuid;not null;index:idx_lead_budgets_dept_user,unique"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index:idx_lead_budgets_dept_user,unique"`
	TotalPoints        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SpentPoints        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency           string          `gorm:"type:varchar(10);not null;default:'PTS'"`
}

// TableName returns the table name for GORM
func (LeadBudgetModel) TableName() string {
	return "lead_budgets"
}

// ToDomain converts the persistence model to a domain LeadBudget
func (m *LeadBudgetModel) ToDomain() (*budget.LeadBudget, error) {
	currency := valueobject.Currency(m.Currency)

	total, err := valueobject.NewPoints(m.TotalPoints, currency)
	if err != nil {
		return nil, err
	}
	spent, err := valueobject.NewPoints(m.SpentPoints, currency)
	if err != nil {
		return nil, err
	}

	b := &budget.LeadBudget{
		DepartmentBudgetID: m.DepartmentBudgetID,
		UserID:             m.UserID,
		TotalPoints:        total,
		SpentPoints:        spent,
	}
	m.PopulateTenantAggregateRoot(&b.TenantAggregateRoot)

	return b, nil
}

// FromDomain populates the persistence model from a domain LeadBudget
func (m *LeadBudgetModel) FromDomain(b *budget.LeadBudget) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.DepartmentBudgetID = b.DepartmentBudgetID
	m.UserID = b.UserID
	m.TotalPoints = b.TotalPoints.Amount()
	m.SpentPoints = b.SpentPoints.Amount()
	m.Currency = string(b.TotalPoints.Currency())
}

// LeadBudgetModelFromDomain creates a persistence model from a domain LeadBudget
func LeadBudgetModelFromDomain(b *budget.LeadBudget) *LeadBudgetModel {
	m := &LeadBudgetModel{}
	m.FromDomain(b)
	return m
}

// EmployeeWalletModel is the persistence model for EmployeeWallet
type EmployeeWalletModel struct {
	TenantAggregateModel
	UserID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_wallets_tenant_user,unique"`
	Balance  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency string          `gorm:"type:varchar(10);not null;default:'PTS'"`
}

// TableName returns the table name for GORM
func (EmployeeWalletModel) TableName() string {
	return "employee_wallets"
}

// ToDomain converts the persistence model to a domain EmployeeWallet
func (m *EmployeeWalletModel) ToDomain() (*budget.EmployeeWallet, error) {
	balance, err := valueobject.NewPoints(m.Balance, valueobject.Currency(m.Currency))
	if err != nil {
		return nil, err
	}

	w := &budget.EmployeeWallet{
		UserID:  m.UserID,
		Balance: balance,
	}
	m.PopulateTenantAggregateRoot(&w.TenantAggregateRoot)

	return w, nil
}

// FromDomain populates the persistence model from a domain EmployeeWallet
func (m *EmployeeWalletModel) FromDomain(w *budget.EmployeeWallet) {
	m.FromDomainTenantAggregateRoot(w.TenantAggregateRoot)
	m.UserID = w.UserID
	m.Balance = w.Balance.Amount()
	m.Currency = string(w.Balance.Currency())
}

// EmployeeWalletModelFromDomain creates a persistence model from a domain EmployeeWallet
func EmployeeWalletModelFromDomain(w *budget.EmployeeWallet) *EmployeeWalletModel {
	m := &EmployeeWalletModel{}
	m.FromDomain(w)
	return m
}

// LedgerEntryColumns holds the shared column set of all ledger tables.
// Entries are append-only; there is no version column and no deleted_at.
type LedgerEntryColumns struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	OwnerID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	EntryType      budget.EntryType   `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency       string             `gorm:"type:varchar(10);not null;default:'PTS'"`
	ActorID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	ActorType      identity.ActorType `gorm:"type:varchar(20);not null"`
	Reference      string             `gorm:"type:varchar(500)"`
	IdempotencyKey *string            `gorm:"type:varchar(200)"`
	CreatedAt      time.Time          `gorm:"not null;index"`
}

func (c *LedgerEntryColumns) ToDomainEntry(tier budget.Tier) (*budget.LedgerEntry, error) {
	amount, err := valueobject.NewPoints(c.Amount, valueobject.Currency(c.Currency))
	if err != nil {
		return nil, err
	}

	return &budget.LedgerEntry{
		ID:             c.ID,
		Tier:           tier,
		TenantID:       c.TenantID,
		OwnerID:        c.OwnerID,
		Type:           c.EntryType,
		Amount:         amount,
		ActorID:        c.ActorID,
		ActorType:      c.ActorType,
		Reference:      c.Reference,
		IdempotencyKey: c.IdempotencyKey,
		CreatedAt:      c.CreatedAt,
	}, nil
}

func (c *LedgerEntryColumns) FromDomainEntry(e *budget.LedgerEntry) {
	c.ID = e.ID
	c.TenantID = e.TenantID
	c.OwnerID = e.OwnerID
	c.EntryType = e.Type
	c.Amount = e.Amount.Amount()
	c.Currency = string(e.Amount.Currency())
	c.ActorID = e.ActorID
	c.ActorType = e.ActorType
	c.Reference = e.Reference
	c.IdempotencyKey = e.IdempotencyKey
	c.CreatedAt = e.CreatedAt
}

// PlatformLedgerEntryModel records platform pool movements. The
// migrations add a partial unique index on (tenant_id, idempotency_key)
// for this table; it is the durable duplicate guard for allocations.
type PlatformLedgerEntryModel struct {
	LedgerEntryColumns
}

// TableName returns the table name for GORM
func (PlatformLedgerEntryModel) TableName() string {
	return "platform_ledger_entries"
}

// TenantLedgerEntryModel records tenant balance movements
type TenantLedgerEntryModel struct {
	LedgerEntryColumns
}

// TableName returns the table name for GORM
func (TenantLedgerEntryModel) TableName() string {
	return "tenant_ledger_entries"
}

// DepartmentLedgerEntryModel records department budget movements
type DepartmentLedgerEntryModel struct {
	LedgerEntryColumns
}

// TableName returns the table name for GORM
func (DepartmentLedgerEntryModel) TableName() string {
	return "department_ledger_entries"
}

// WalletLedgerEntryModel records employee wallet movements
type WalletLedgerEntryModel struct {
	LedgerEntryColumns
}

// TableName returns the table name for GORM
func (WalletLedgerEntryModel) TableName() string {
	return "wallet_ledger_entries"
}
