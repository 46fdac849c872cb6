package budget

import (
	"context"

	"github.com/rewards/backend/internal/domain/audit"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/shared"
)

// LedgerService serves paginated reads over ledger and audit history.
// Queries run through the tenant-filtered connection, so a scoped
// caller only ever sees its own tenant's rows.
type LedgerService struct {
	ledger budget.LedgerRepository
	audit  audit.Repository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledger budget.LedgerRepository, auditRepo audit.Repository) *LedgerService {
	return &LedgerService{ledger: ledger, audit: auditRepo}
}

// ListEntries returns a page of ledger entries for one balance holder
func (s *LedgerService) ListEntries(ctx context.Context, filter budget.LedgerFilter) (*shared.Paginated[budget.LedgerEntry], error) {
	if !filter.Tier.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("invalid ledger tier: " + string(filter.Tier))
	}
	return s.ledger.List(ctx, filter)
}

// ListAuditLog returns a page of audit records for a tenant
func (s *LedgerService) ListAuditLog(ctx context.Context, filter audit.Filter) (*shared.Paginated[audit.LogEntry], error) {
	return s.audit.List(ctx, filter)
}
