package models

import (
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TenantModel is the persistence model for the Tenant aggregate.
// The tenant row itself is tenant-scoped: a tenant can read its own
// row, platform admins see all.
type TenantModel struct {
	AggregateModel
	Code                    string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                    string                `gorm:"type:varchar(200);not null"`
	Status                  identity.TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	BudgetAllocated         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	BudgetAllocationBalance decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ConfigCurrency          string                `gorm:"type:varchar(10);not null;default:'PTS'"`
	ConfigMarkupPercent     int                   `gorm:"not null;default:0"`
	ConfigFeatures          string                `gorm:"type:text;not null;default:'{}'"`
	ConfigMonthlyCapping    bool                  `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant aggregate
func (m *TenantModel) ToDomain() (*identity.Tenant, error) {
	currency := valueobject.Currency(m.ConfigCurrency)

	allocated, err := valueobject.NewPoints(m.BudgetAllocated, currency)
	if err != nil {
		return nil, err
	}
	balance, err := valueobject.NewPoints(m.BudgetAllocationBalance, currency)
	if err != nil {
		return nil, err
	}

	return &identity.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:                    m.Code,
		Name:                    m.Name,
		Status:                  m.Status,
		BudgetAllocated:         allocated,
		BudgetAllocationBalance: balance,
		Config: identity.TenantConfig{
			Currency:       currency,
			MarkupPercent:  m.ConfigMarkupPercent,
			Features:       m.ConfigFeatures,
			MonthlyCapping: m.ConfigMonthlyCapping,
		},
	}, nil
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Code = t.Code
	m.Name = t.Name
	m.Status = t.Status
	m.BudgetAllocated = t.BudgetAllocated.Amount()
	m.BudgetAllocationBalance = t.BudgetAllocationBalance.Amount()
	m.ConfigCurrency = string(t.Config.Currency)
	m.ConfigMarkupPercent = t.Config.MarkupPercent
	m.ConfigFeatures = t.Config.Features
	m.ConfigMonthlyCapping = t.Config.MonthlyCapping
}

// TenantModelFromDomain creates a persistence model from a domain Tenant
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
