package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/rewards/backend/internal/infrastructure/logger"
)

// TenantService handles tenant provisioning and lifecycle
type TenantService struct {
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo identity.TenantRepository, zapLogger *zap.Logger) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		logger:     zapLogger,
	}
}

// CreateTenantInput contains input for creating a tenant
type CreateTenantInput struct {
	Code string
	Name string
}

// TenantConfigInput contains input for updating tenant configuration.
// Nil fields keep their current value.
type TenantConfigInput struct {
	Currency       *string
	MarkupPercent  *int
	Features       *string
	MonthlyCapping *bool
}

// TenantDTO represents tenant data returned to the API layer
type TenantDTO struct {
	ID                      uuid.UUID       `json:"id"`
	Code                    string          `json:"code"`
	Name                    string          `json:"name"`
	Status                  string          `json:"status"`
	BudgetAllocated         string          `json:"budget_allocated"`
	BudgetAllocationBalance string          `json:"budget_allocation_balance"`
	Config                  TenantConfigDTO `json:"config"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// TenantConfigDTO represents tenant configuration in responses
type TenantConfigDTO struct {
	Currency       string `json:"currency"`
	MarkupPercent  int    `json:"markup_percent"`
	Features       string `json:"features"`
	MonthlyCapping bool   `json:"monthly_capping"`
}

func toTenantDTO(t *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:                      t.ID,
		Code:                    t.Code,
		Name:                    t.Name,
		Status:                  string(t.Status),
		BudgetAllocated:         t.BudgetAllocated.String(),
		BudgetAllocationBalance: t.BudgetAllocationBalance.String(),
		Config: TenantConfigDTO{
			Currency:       string(t.Config.Currency),
			MarkupPercent:  t.Config.MarkupPercent,
			Features:       t.Config.Features,
			MonthlyCapping: t.Config.MonthlyCapping,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// Create provisions a new tenant with a zero budget
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	if existing, err := s.tenantRepo.FindByCode(ctx, input.Code); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists.WithMessage("Tenant code is already in use")
	}

	tenant, err := identity.NewTenant(input.Code, input.Name)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))

	return toTenantDTO(tenant), nil
}

// GetByID returns a tenant by its id
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

// GetByCode returns a tenant by its unique code
func (s *TenantService) GetByCode(ctx context.Context, code string) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

// List returns tenants page by page
func (s *TenantService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[TenantDTO], error) {
	page, err := s.tenantRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]TenantDTO, 0, len(page.Items))
	for i := range page.Items {
		dtos = append(dtos, *toTenantDTO(&page.Items[i]))
	}

	result := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Activate re-activates a suspended or inactive tenant
func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Activate(); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("tenant activated", zap.String("tenant_id", id.String()))

	return toTenantDTO(tenant), nil
}

// Suspend suspends a tenant. Suspended tenants keep their balances but
// the budget engine refuses new operations on them.
func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.Suspend(); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("tenant suspended", zap.String("tenant_id", id.String()))

	return toTenantDTO(tenant), nil
}

// UpdateConfig applies a partial configuration update
func (s *TenantService) UpdateConfig(ctx context.Context, id uuid.UUID, input TenantConfigInput) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg := tenant.Config
	if input.Currency != nil {
		cfg.Currency = valueobject.Currency(*input.Currency)
	}
	if input.MarkupPercent != nil {
		cfg.MarkupPercent = *input.MarkupPercent
	}
	if input.Features != nil {
		cfg.Features = *input.Features
	}
	if input.MonthlyCapping != nil {
		cfg.MonthlyCapping = *input.MonthlyCapping
	}

	if err := tenant.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	return toTenantDTO(tenant), nil
}
