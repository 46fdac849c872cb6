package budget

import (
	"context"

	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// ReconcileResult compares an aggregate's authoritative balance with
// the signed sum of its ledger entries
type ReconcileResult struct {
	OwnerID   uuid.UUID       `json:"owner_id"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledger_sum"`
	Drift     decimal.Decimal `json:"drift"`
}

// InBalance reports whether the ledger agrees with the aggregate
func (r ReconcileResult) InBalance() bool {
	return r.Drift.IsZero()
}

// ReconcileService recomputes ledger sums for drift detection. The
// aggregate row balance is authoritative; a non-zero drift means a
// write path bypassed the engine and is worth an alarm, not an
// automatic correction.
type ReconcileService struct {
	tenants identity.TenantRepository
	wallets budget.WalletRepository
	ledger  budget.LedgerRepository
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(tenants identity.TenantRepository, wallets budget.WalletRepository, ledger budget.LedgerRepository) *ReconcileService {
	return &ReconcileService{tenants: tenants, wallets: wallets, ledger: ledger}
}

// ReconcileTenant checks one tenant's allocation balance against its
// ledger projection
func (s *ReconcileService) ReconcileTenant(ctx context.Context, tenantID uuid.UUID) (*ReconcileResult, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sum, err := s.ledger.SumForOwner(ctx, budget.TierTenant, tenantID)
	if err != nil {
		return nil, err
	}

	balance := tenant.BudgetAllocationBalance.Amount()
	return &ReconcileResult{
		OwnerID:   tenantID,
		Balance:   balance,
		LedgerSum: sum,
		Drift:     balance.Sub(sum),
	}, nil
}

// ReconcileWallet checks one wallet's balance against its ledger
// projection
func (s *ReconcileService) ReconcileWallet(ctx context.Context, walletID uuid.UUID) (*ReconcileResult, error) {
	wallet, err := s.wallets.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	sum, err := s.ledger.SumForOwner(ctx, budget.TierWallet, walletID)
	if err != nil {
		return nil, err
	}

	balance := wallet.Balance.Amount()
	return &ReconcileResult{
		OwnerID:   walletID,
		Balance:   balance,
		LedgerSum: sum,
		Drift:     balance.Sub(sum),
	}, nil
}
