package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rewards/backend/internal/domain/audit"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/rewards/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EngineOptions tunes engine behavior
type EngineOptions struct {
	// OperationTimeout bounds each operation's transaction, including
	// lock waits. Zero disables the deadline.
	OperationTimeout time.Duration
	// IdempotencyTTL is how long allocation keys stay in the fast-path
	// duplicate store.
	IdempotencyTTL time.Duration
}

// DefaultEngineOptions returns the default engine options
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		OperationTimeout: 10 * time.Second,
		IdempotencyTTL:   24 * time.Hour,
	}
}

// Engine executes the hierarchical budget operations. Each operation
// is one transaction: rows are resolved and locked in the fixed order
// platform -> tenant -> department -> lead/wallet before anything is
// mutated, every balance change pairs with a ledger entry, and an
// audit row is written before commit. On any precondition failure the
// whole transaction rolls back.
type Engine struct {
	uow         UnitOfWork
	idempotency shared.IdempotencyStore
	opts        EngineOptions
	now         func() time.Time
}

// NewEngine creates a new Engine. The idempotency store may be nil,
// in which case only the durable ledger constraint guards duplicate
// allocations.
func NewEngine(uow UnitOfWork, idempotency shared.IdempotencyStore, opts EngineOptions) *Engine {
	return &Engine{
		uow:         uow,
		idempotency: idempotency,
		opts:        opts,
		now:         time.Now,
	}
}

// OperationResult is the outcome of one successful budget operation
type OperationResult struct {
	// Balance is the updated authoritative balance of the mutated node
	Balance valueobject.Points `json:"balance"`
	// Entry is the primary ledger entry the operation created
	Entry *budget.LedgerEntry `json:"entry"`
}

// AllocateToTenantRequest asks for points from the platform pool
type AllocateToTenantRequest struct {
	TenantID       uuid.UUID
	Actor          identity.Actor
	Amount         decimal.Decimal
	IdempotencyKey string
}

// AllocateToTenant credits a tenant's allocation from the platform
// pool. Duplicate (tenant, idempotency key) pairs are rejected with
// ErrDuplicateAllocation and never applied twice.
func (e *Engine) AllocateToTenant(ctx context.Context, req AllocateToTenantRequest) (*OperationResult, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if err := requirePlatformActor(req.Actor); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := checkScope(ctx, req.TenantID); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && e.idempotency != nil {
		seen, err := e.idempotency.IsProcessed(ctx, allocationKey(req.TenantID, req.IdempotencyKey))
		if err != nil {
			logger.L(ctx).Warn("idempotency fast path unavailable", zap.Error(err))
		} else if seen {
			return nil, shared.ErrDuplicateAllocation
		}
	}

	var result *OperationResult
	err := e.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		if req.IdempotencyKey != "" {
			exists, err := repos.Ledger.HasIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
			if err != nil {
				return err
			}
			if exists {
				return shared.ErrDuplicateAllocation
			}
		}

		tenant, err := repos.Tenants.FindByIDForUpdate(ctx, req.TenantID)
		if err != nil {
			return translateLockError(err)
		}
		if !tenant.IsActive() {
			return shared.ErrInvalidState.WithMessage("tenant is not active")
		}

		amount, err := valueobject.NewPoints(req.Amount, tenant.Config.Currency)
		if err != nil {
			return shared.ErrInvalidAmount.WithMessage(err.Error())
		}

		before := tenantSnapshot(tenant)
		if err := tenant.CreditAllocation(amount); err != nil {
			return err
		}
		if err := repos.Tenants.Save(ctx, tenant); err != nil {
			return err
		}

		platformEntry, err := budget.NewLedgerEntry(
			budget.TierPlatform, req.TenantID, identity.PlatformTenantID,
			budget.EntryAllocation, amount, req.Actor, "allocation to "+tenant.Code)
		if err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			platformEntry.WithIdempotencyKey(req.IdempotencyKey)
		}
		if err := repos.Ledger.Append(ctx, platformEntry); err != nil {
			return err
		}

		tenantEntry, err := budget.NewLedgerEntry(
			budget.TierTenant, req.TenantID, req.TenantID,
			budget.EntryAllocation, amount, req.Actor, platformEntry.ID.String())
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, tenantEntry); err != nil {
			return err
		}

		if err := e.recordAudit(ctx, repos, req.TenantID, audit.ActionAllocateToTenant,
			"tenant", req.TenantID, before, tenantSnapshot(tenant), req.Actor); err != nil {
			return err
		}

		result = &OperationResult{Balance: tenant.BudgetAllocationBalance, Entry: tenantEntry}
		return nil
	})
	if err != nil {
		return nil, translateLockError(err)
	}

	if req.IdempotencyKey != "" && e.idempotency != nil {
		if _, err := e.idempotency.MarkProcessed(ctx, allocationKey(req.TenantID, req.IdempotencyKey), e.opts.IdempotencyTTL); err != nil {
			logger.L(ctx).Warn("failed to mark allocation key processed", zap.Error(err))
		}
	}

	return result, nil
}

// ClawbackFromTenantRequest returns unspent allocation to the platform pool
type ClawbackFromTenantRequest struct {
	TenantID uuid.UUID
	Actor    identity.Actor
	Amount   decimal.Decimal
	Reason   string
}

// ClawbackFromTenant pulls unspent allocation balance back into the
// platform pool. Cumulative BudgetAllocated is left untouched so the
// historical grant total survives.
func (e *Engine) ClawbackFromTenant(ctx context.Context, req ClawbackFromTenantRequest) (*OperationResult, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if err := requirePlatformActor(req.Actor); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := checkScope(ctx, req.TenantID); err != nil {
		return nil, err
	}

	var result *OperationResult
	err := e.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		tenant, err := repos.Tenants.FindByIDForUpdate(ctx, req.TenantID)
		if err != nil {
			return translateLockError(err)
		}

		amount, err := valueobject.NewPoints(req.Amount, tenant.Config.Currency)
		if err != nil {
			return shared.ErrInvalidAmount.WithMessage(err.Error())
		}

		before := tenantSnapshot(tenant)
		if err := tenant.Clawback(amount); err != nil {
			return err
		}
		if err := repos.Tenants.Save(ctx, tenant); err != nil {
			return err
		}

		negated := amount.Negate()

		platformEntry, err := budget.NewLedgerEntry(
			budget.TierPlatform, req.TenantID, identity.PlatformTenantID,
			budget.EntryClawback, negated, req.Actor, req.Reason)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, platformEntry); err != nil {
			return err
		}

		tenantEntry, err := budget.NewLedgerEntry(
			budget.TierTenant, req.TenantID, req.TenantID,
			budget.EntryClawback, negated, req.Actor, req.Reason)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, tenantEntry); err != nil {
			return err
		}

		if err := e.recordAudit(ctx, repos, req.TenantID, audit.ActionClawbackFromTenant,
			"tenant", req.TenantID, before, tenantSnapshot(tenant), req.Actor); err != nil {
			return err
		}

		result = &OperationResult{Balance: tenant.BudgetAllocationBalance, Entry: tenantEntry}
		return nil
	})
	if err != nil {
		return nil, translateLockError(err)
	}
	return result, nil
}

// DistributeToDepartmentRequest moves tenant balance into a department budget
type DistributeToDepartmentRequest struct {
	TenantID           uuid.UUID
	DepartmentBudgetID uuid.UUID
	Actor              identity.Actor
	Amount             decimal.Decimal
}

// DistributeToDepartment moves points from the tenant's allocation
// balance into one department budget.
func (e *Engine) DistributeToDepartment(ctx context.Context, req DistributeToDepartmentRequest) (*OperationResult, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := checkScope(ctx, req.TenantID); err != nil {
		return nil, err
	}

	var result *OperationResult
	err := e.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		tenant, err := repos.Tenants.FindByIDForUpdate(ctx, req.TenantID)
		if err != nil {
			return translateLockError(err)
		}
		if !tenant.IsActive() {
			return shared.ErrInvalidState.WithMessage("tenant is not active")
		}

		deptBudget, err := repos.Departments.FindByIDForUpdate(ctx, req.DepartmentBudgetID)
		if err != nil {
			return translateLockError(err)
		}
		if deptBudget.TenantID != req.TenantID {
			return shared.ErrCrossTenant
		}
		if deptBudget.IsExpired(e.now()) {
			return shared.ErrBudgetExpired
		}

		amount, err := valueobject.NewPoints(req.Amount, tenant.Config.Currency)
		if err != nil {
			return shared.ErrInvalidAmount.WithMessage(err.Error())
		}

		tenantBefore := tenantSnapshot(tenant)
		deptBefore := departmentSnapshot(deptBudget)

		if err := tenant.DebitForDistribution(amount); err != nil {
			return err
		}
		if err := deptBudget.Receive(amount); err != nil {
			return err
		}
		if err := repos.Tenants.Save(ctx, tenant); err != nil {
			return err
		}
		if err := repos.Departments.Save(ctx, deptBudget); err != nil {
			return err
		}

		tenantEntry, err := budget.NewLedgerEntry(
			budget.TierTenant, req.TenantID, req.TenantID,
			budget.EntryDistribution, amount.Negate(), req.Actor,
			"distribution to "+deptBudget.Name)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, tenantEntry); err != nil {
			return err
		}

		deptEntry, err := budget.NewLedgerEntry(
			budget.TierDepartment, req.TenantID, deptBudget.ID,
			budget.EntryDistribution, amount, req.Actor, tenantEntry.ID.String())
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, deptEntry); err != nil {
			return err
		}

		if err := e.recordAudit(ctx, repos, req.TenantID, audit.ActionDistributeToDept,
			"department_budget", deptBudget.ID,
			mergeSnapshots(tenantBefore, deptBefore),
			mergeSnapshots(tenantSnapshot(tenant), departmentSnapshot(deptBudget)),
			req.Actor); err != nil {
			return err
		}

		result = &OperationResult{Balance: deptBudget.Remaining(), Entry: deptEntry}
		return nil
	})
	if err != nil {
		return nil, translateLockError(err)
	}
	return result, nil
}

// AllocateToLeadRequest earmarks department budget for one lead
type AllocateToLeadRequest struct {
	DepartmentBudgetID uuid.UUID
	LeadUserID         uuid.UUID
	Actor              identity.Actor
	Amount             decimal.Decimal
}

// AllocateToLead earmarks part of a department budget for a lead,
// creating the lead budget on first allocation. The sum of all lead
// earmarks under a department budget never exceeds its allocation.
func (e *Engine) AllocateToLead(ctx context.Context, req AllocateToLeadRequest) (*OperationResult, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	var result *OperationResult
	err := e.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		deptBudget, err := repos.Departments.FindByIDForUpdate(ctx, req.DepartmentBudgetID)
		if err != nil {
			return translateLockError(err)
		}
		if err := checkScope(ctx, deptBudget.TenantID); err != nil {
			return err
		}
		if deptBudget.IsExpired(e.now()) {
			return shared.ErrBudgetExpired
		}

		currency := deptBudget.AllocatedPoints.Currency()
		amount, err := valueobject.NewPoints(req.Amount, currency)
		if err != nil {
			return shared.ErrInvalidAmount.WithMessage(err.Error())
		}

		earmarked, err := repos.Departments.SumLeadTotals(ctx, deptBudget.ID)
		if err != nil {
			return err
		}
		if earmarked.Add(req.Amount).GreaterThan(deptBudget.AllocatedPoints.Amount()) {
			return shared.ErrInsufficientBalance.WithMessage(
				fmt.Sprintf("lead earmarks %s + %s would exceed department allocation %s",
					earmarked, req.Amount, deptBudget.AllocatedPoints.Amount()))
		}

		lead, err := repos.Leads.FindByDepartmentAndUser(ctx, deptBudget.ID, req.LeadUserID)
		var before audit.Snapshot
		switch {
		case err == nil:
			// re-read under lock before mutating
			lead, err = repos.Leads.FindByIDForUpdate(ctx, lead.ID)
			if err != nil {
				return translateLockError(err)
			}
			before = leadSnapshot(lead)
		case errors.Is(err, shared.ErrNotFound):
			lead, err = budget.NewLeadBudget(deptBudget.TenantID, deptBudget.ID, req.LeadUserID, currency)
			if err != nil {
				return err
			}
			before = audit.Snapshot{}
		default:
			return err
		}

		if err := lead.TopUp(amount); err != nil {
			return err
		}
		if err := repos.Leads.Save(ctx, lead); err != nil {
			return err
		}

		deptEntry, err := budget.NewLedgerEntry(
			budget.TierDepartment, deptBudget.TenantID, deptBudget.ID,
			budget.EntryLeadAllocation, amount.Negate(), req.Actor,
			"earmark for lead "+req.LeadUserID.String())
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, deptEntry); err != nil {
			return err
		}

		if err := e.recordAudit(ctx, repos, deptBudget.TenantID, audit.ActionAllocateToLead,
			"lead_budget", lead.ID, before, leadSnapshot(lead), req.Actor); err != nil {
			return err
		}

		result = &OperationResult{Balance: lead.Remaining(), Entry: deptEntry}
		return nil
	})
	if err != nil {
		return nil, translateLockError(err)
	}
	return result, nil
}

// AwardToEmployeeRequest credits an employee wallet from a budget
type AwardToEmployeeRequest struct {
	// SourceBudgetID is a lead budget id or a department budget id
	SourceBudgetID uuid.UUID
	WalletID       uuid.UUID
	Actor          identity.Actor
	Amount         decimal.Decimal
	RecognitionRef string
}

// AwardToEmployee moves points from a lead or department budget into
// an employee wallet. Awards always consume department remaining,
// whether they are drawn through a lead earmark or directly.
func (e *Engine) AwardToEmployee(ctx context.Context, req AwardToEmployeeRequest) (*OperationResult, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	var result *OperationResult
	err := e.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		// Resolve the source before locking so locks are still taken
		// in department -> lead -> wallet order.
		var leadID *uuid.UUID
		deptBudgetID := req.SourceBudgetID
		if _, err := repos.Departments.FindByID(ctx, req.SourceBudgetID); err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			lead, err := repos.Leads.FindByID(ctx, req.SourceBudgetID)
			if err != nil {
				return err
			}
			leadID = &lead.ID
			deptBudgetID = lead.DepartmentBudgetID
		}

		deptBudget, err := repos.Departments.FindByIDForUpdate(ctx, deptBudgetID)
		if err != nil {
			return translateLockError(err)
		}
		if err := checkScope(ctx, deptBudget.TenantID); err != nil {
			return err
		}
		if deptBudget.IsExpired(e.now()) {
			return shared.ErrBudgetExpired
		}

		var lead *budget.LeadBudget
		if leadID != nil {
			lead, err = repos.Leads.FindByIDForUpdate(ctx, *leadID)
			if err != nil {
				return translateLockError(err)
			}
		}

		wallet, err := repos.Wallets.FindByIDForUpdate(ctx, req.WalletID)
		if err != nil {
			return translateLockError(err)
		}
		if wallet.TenantID != deptBudget.TenantID {
			return shared.ErrCrossTenant
		}

		amount, err := valueobject.NewPoints(req.Amount, wallet.Balance.Currency())
		if err != nil {
			return shared.ErrInvalidAmount.WithMessage(err.Error())
		}

		if deptBudget.MonthlyCap != nil {
			tenant, err := repos.Tenants.FindByID(ctx, deptBudget.TenantID)
			if err != nil {
				return err
			}
			if tenant.Config.MonthlyCapping {
				monthToDate, err := repos.Ledger.MonthToDateByType(
					ctx, budget.TierDepartment, deptBudget.ID, budget.EntryAward, e.now())
				if err != nil {
					return err
				}
				if monthToDate.Add(req.Amount).GreaterThan(deptBudget.MonthlyCap.Amount()) {
					return shared.ErrMonthlyCapExceeded
				}
			}
		}

		deptBefore := departmentSnapshot(deptBudget)
		walletBefore := walletSnapshot(wallet)

		if lead != nil {
			if err := lead.Spend(amount); err != nil {
				return err
			}
		}
		if err := deptBudget.Spend(amount); err != nil {
			return err
		}
		if err := wallet.Credit(amount); err != nil {
			return err
		}

		if lead != nil {
			if err := repos.Leads.Save(ctx, lead); err != nil {
				return err
			}
		}
		if err := repos.Departments.Save(ctx, deptBudget); err != nil {
			return err
		}
		if err := repos.Wallets.SaveWithVersion(ctx, wallet); err != nil {
			return err
		}

		deptEntry, err := budget.NewLedgerEntry(
			budget.TierDepartment, deptBudget.TenantID, deptBudget.ID,
			budget.EntryAward, amount.Negate(), req.Actor, req.RecognitionRef)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, deptEntry); err != nil {
			return err
		}

		walletEntry, err := budget.NewLedgerEntry(
			budget.TierWallet, wallet.TenantID, wallet.ID,
			budget.EntryAward, amount, req.Actor, req.RecognitionRef)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, walletEntry); err != nil {
			return err
		}

		if err := e.recordAudit(ctx, repos, wallet.TenantID, audit.ActionAwardToEmployee,
			"employee_wallet", wallet.ID,
			mergeSnapshots(deptBefore, walletBefore),
			mergeSnapshots(departmentSnapshot(deptBudget), walletSnapshot(wallet)),
			req.Actor); err != nil {
			return err
		}

		result = &OperationResult{Balance: wallet.Balance, Entry: walletEntry}
		return nil
	})
	if err != nil {
		return nil, translateLockError(err)
	}
	return result, nil
}

// SpendFromWalletRequest redeems points from an employee wallet
type SpendFromWalletRequest struct {
	WalletID      uuid.UUID
	Actor         identity.Actor
	Amount        decimal.Decimal
	RedemptionRef string
}

// SpendFromWallet debits an employee wallet for a redemption
func (e *Engine) SpendFromWallet(ctx context.Context, req SpendFromWalletRequest) (*OperationResult, error) {
	ctx, cancel := e.withDeadline(ctx)
	defer cancel()

	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	var result *OperationResult
	err := e.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		wallet, err := repos.Wallets.FindByIDForUpdate(ctx, req.WalletID)
		if err != nil {
			return translateLockError(err)
		}
		if err := checkScope(ctx, wallet.TenantID); err != nil {
			return err
		}

		amount, err := valueobject.NewPoints(req.Amount, wallet.Balance.Currency())
		if err != nil {
			return shared.ErrInvalidAmount.WithMessage(err.Error())
		}

		before := walletSnapshot(wallet)
		if err := wallet.Debit(amount); err != nil {
			return err
		}
		if err := repos.Wallets.SaveWithVersion(ctx, wallet); err != nil {
			return err
		}

		entry, err := budget.NewLedgerEntry(
			budget.TierWallet, wallet.TenantID, wallet.ID,
			budget.EntrySpend, amount.Negate(), req.Actor, req.RedemptionRef)
		if err != nil {
			return err
		}
		if err := repos.Ledger.Append(ctx, entry); err != nil {
			return err
		}

		if err := e.recordAudit(ctx, repos, wallet.TenantID, audit.ActionSpendFromWallet,
			"employee_wallet", wallet.ID, before, walletSnapshot(wallet), req.Actor); err != nil {
			return err
		}

		result = &OperationResult{Balance: wallet.Balance, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, translateLockError(err)
	}
	return result, nil
}

func (e *Engine) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.OperationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.opts.OperationTimeout)
}

func (e *Engine) recordAudit(ctx context.Context, repos Repositories, tenantID uuid.UUID, action, entityType string, entityID uuid.UUID, before, after audit.Snapshot, actor identity.Actor) error {
	if tenantID == uuid.Nil {
		tenantID = identity.PlatformTenantID
	}

	entry, err := audit.NewLogEntry(tenantID, action, entityType, entityID, before, after, actor)
	if err != nil {
		return err
	}
	return repos.Audit.Record(ctx, entry)
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	return nil
}

func requirePlatformActor(actor identity.Actor) error {
	if actor.Type != identity.ActorTypePlatformAdmin && actor.Type != identity.ActorTypeSystem {
		return shared.ErrForbidden.WithMessage("platform pool operations require a platform actor")
	}
	return nil
}

// checkScope rejects operations that reach across the ambient tenant
// boundary. Global and system callers pass.
func checkScope(ctx context.Context, tenantID uuid.UUID) error {
	if tc, ok := identity.FromContext(ctx); ok && tc.Scoped() && tc.TenantID != tenantID {
		return shared.ErrCrossTenant
	}
	return nil
}

func allocationKey(tenantID uuid.UUID, key string) string {
	return tenantID.String() + ":" + key
}

// idempotencyIndexName is the partial unique index on platform ledger
// entries that durably rejects a reused allocation key.
const idempotencyIndexName = "idx_platform_ledger_idempotency"

// translateLockError maps lock-wait and deadline failures onto the
// retryable ErrContention, and the durable idempotency constraint onto
// ErrDuplicateAllocation. Two writers racing the same key both pass
// the in-transaction key check; the loser hits the index instead.
func translateLockError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrContention
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40P01", "40001": // lock_not_available, deadlock_detected, serialization_failure
			return shared.ErrContention
		case "23505": // unique_violation
			if pgErr.ConstraintName == idempotencyIndexName {
				return shared.ErrDuplicateAllocation
			}
			// any other unique race resolves on retry
			return shared.ErrContention
		}
	}
	return err
}

func tenantSnapshot(t *identity.Tenant) audit.Snapshot {
	return audit.Snapshot{
		"budget_allocated":          t.BudgetAllocated.Amount().String(),
		"budget_allocation_balance": t.BudgetAllocationBalance.Amount().String(),
		"status":                    string(t.Status),
	}
}

func departmentSnapshot(b *budget.DepartmentBudget) audit.Snapshot {
	return audit.Snapshot{
		"allocated_points": b.AllocatedPoints.Amount().String(),
		"spent_points":     b.SpentPoints.Amount().String(),
	}
}

func leadSnapshot(b *budget.LeadBudget) audit.Snapshot {
	return audit.Snapshot{
		"total_points": b.TotalPoints.Amount().String(),
		"spent_points": b.SpentPoints.Amount().String(),
	}
}

func walletSnapshot(w *budget.EmployeeWallet) audit.Snapshot {
	return audit.Snapshot{
		"balance": w.Balance.Amount().String(),
	}
}

func mergeSnapshots(a, b audit.Snapshot) audit.Snapshot {
	merged := make(audit.Snapshot, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}
