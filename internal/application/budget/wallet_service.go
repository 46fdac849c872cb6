package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
)

// WalletService serves wallet reads and provisioning. Balance
// mutations go through the Engine only.
type WalletService struct {
	wallets budget.WalletRepository
	tenants identity.TenantRepository
}

// NewWalletService creates a new WalletService
func NewWalletService(wallets budget.WalletRepository, tenants identity.TenantRepository) *WalletService {
	return &WalletService{wallets: wallets, tenants: tenants}
}

// Get returns one wallet by id
func (s *WalletService) Get(ctx context.Context, walletID uuid.UUID) (*budget.EmployeeWallet, error) {
	return s.wallets.FindByID(ctx, walletID)
}

// GetByUser returns the wallet owned by a user. Tenant scoping comes
// from the connection's isolation filter.
func (s *WalletService) GetByUser(ctx context.Context, userID uuid.UUID) (*budget.EmployeeWallet, error) {
	return s.wallets.FindByUser(ctx, userID)
}

// Create provisions an empty wallet for an employee in the tenant's
// configured currency
func (s *WalletService) Create(ctx context.Context, tenantID, userID uuid.UUID) (*budget.EmployeeWallet, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	wallet, err := budget.NewEmployeeWallet(tenantID, userID, tenant.Config.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.wallets.Save(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
