package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbudget "github.com/rewards/backend/internal/application/budget"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/interfaces/http/dto"
)

// BudgetHandler exposes the budget engine's ledgered operations
type BudgetHandler struct {
	BaseHandler
	engine *appbudget.Engine
	retry  appbudget.RetryConfig
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(engine *appbudget.Engine, retry appbudget.RetryConfig) *BudgetHandler {
	return &BudgetHandler{engine: engine, retry: retry}
}

// OperationResponse is the common response for budget operations
type OperationResponse struct {
	Balance string          `json:"balance"`
	Entry   *LedgerEntryDTO `json:"entry,omitempty"`
}

func operationResponse(result *appbudget.OperationResult) OperationResponse {
	resp := OperationResponse{Balance: result.Balance.Amount().String()}
	if result.Entry != nil {
		resp.Entry = ledgerEntryDTO(result.Entry)
	}
	return resp
}

// runWithRetry executes a budget operation, retrying on lock contention
func (h *BudgetHandler) runWithRetry(ctx context.Context, fn func(ctx context.Context) (*appbudget.OperationResult, error)) (*appbudget.OperationResult, error) {
	var result *appbudget.OperationResult
	err := appbudget.Retry(ctx, h.retry, func(ctx context.Context) error {
		var opErr error
		result, opErr = fn(ctx)
		return opErr
	})
	return result, err
}

// AllocateRequest is the request body for platform allocations
type AllocateRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	IdempotencyKey string          `json:"idempotency_key" binding:"required"`
}

// AllocateToTenant handles POST /tenants/:id/allocations
func (h *BudgetHandler) AllocateToTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.runWithRetry(c.Request.Context(), func(ctx context.Context) (*appbudget.OperationResult, error) {
		return h.engine.AllocateToTenant(ctx, appbudget.AllocateToTenantRequest{
			TenantID:       tenantID,
			Actor:          actor,
			Amount:         req.Amount,
			IdempotencyKey: req.IdempotencyKey,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, operationResponse(result))
}

// ClawbackRequest is the request body for platform clawbacks
type ClawbackRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason"`
}

// ClawbackFromTenant handles POST /tenants/:id/clawbacks
func (h *BudgetHandler) ClawbackFromTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ClawbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.runWithRetry(c.Request.Context(), func(ctx context.Context) (*appbudget.OperationResult, error) {
		return h.engine.ClawbackFromTenant(ctx, appbudget.ClawbackFromTenantRequest{
			TenantID: tenantID,
			Actor:    actor,
			Amount:   req.Amount,
			Reason:   req.Reason,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, operationResponse(result))
}

// DistributeRequest is the request body for department distributions
type DistributeRequest struct {
	TenantID string          `json:"tenant_id" binding:"required,uuid"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// DistributeToDepartment handles POST /departments/:id/distributions
func (h *BudgetHandler) DistributeToDepartment(c *gin.Context) {
	deptBudgetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid department budget ID")
		return
	}

	var req DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.runWithRetry(c.Request.Context(), func(ctx context.Context) (*appbudget.OperationResult, error) {
		return h.engine.DistributeToDepartment(ctx, appbudget.DistributeToDepartmentRequest{
			TenantID:           tenantID,
			DepartmentBudgetID: deptBudgetID,
			Actor:              actor,
			Amount:             req.Amount,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, operationResponse(result))
}

// LeadAllocationRequest is the request body for lead earmarks
type LeadAllocationRequest struct {
	LeadUserID string          `json:"lead_user_id" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// AllocateToLead handles POST /departments/:id/lead-allocations
func (h *BudgetHandler) AllocateToLead(c *gin.Context) {
	deptBudgetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid department budget ID")
		return
	}

	var req LeadAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}
	leadUserID, err := uuid.Parse(req.LeadUserID)
	if err != nil {
		h.BadRequest(c, "Invalid lead user ID")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.runWithRetry(c.Request.Context(), func(ctx context.Context) (*appbudget.OperationResult, error) {
		return h.engine.AllocateToLead(ctx, appbudget.AllocateToLeadRequest{
			DepartmentBudgetID: deptBudgetID,
			LeadUserID:         leadUserID,
			Actor:              actor,
			Amount:             req.Amount,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, operationResponse(result))
}

// AwardRequest is the request body for employee awards
type AwardRequest struct {
	SourceBudgetID string          `json:"source_budget_id" binding:"required,uuid"`
	WalletID       string          `json:"wallet_id" binding:"required,uuid"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	RecognitionRef string          `json:"recognition_ref"`
}

// AwardToEmployee handles POST /awards
func (h *BudgetHandler) AwardToEmployee(c *gin.Context) {
	var req AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}
	sourceBudgetID, err := uuid.Parse(req.SourceBudgetID)
	if err != nil {
		h.BadRequest(c, "Invalid source budget ID")
		return
	}
	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.runWithRetry(c.Request.Context(), func(ctx context.Context) (*appbudget.OperationResult, error) {
		return h.engine.AwardToEmployee(ctx, appbudget.AwardToEmployeeRequest{
			SourceBudgetID: sourceBudgetID,
			WalletID:       walletID,
			Actor:          actor,
			Amount:         req.Amount,
			RecognitionRef: req.RecognitionRef,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, operationResponse(result))
}

// SpendRequest is the request body for wallet redemptions
type SpendRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	RedemptionRef string          `json:"redemption_ref"`
}

// SpendFromWallet handles POST /wallets/:id/spend
func (h *BudgetHandler) SpendFromWallet(c *gin.Context) {
	walletID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID")
		return
	}

	var req SpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.runWithRetry(c.Request.Context(), func(ctx context.Context) (*appbudget.OperationResult, error) {
		return h.engine.SpendFromWallet(ctx, appbudget.SpendFromWalletRequest{
			WalletID:      walletID,
			Actor:         actor,
			Amount:        req.Amount,
			RedemptionRef: req.RedemptionRef,
		})
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, operationResponse(result))
}

// LedgerEntryDTO represents one ledger entry in responses
type LedgerEntryDTO struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Tier           string    `json:"tier"`
	EntryType      string    `json:"entry_type"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	ActorID        uuid.UUID `json:"actor_id"`
	ActorType      string    `json:"actor_type"`
	Reference      string    `json:"reference,omitempty"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty"`
	CreatedAt      string    `json:"created_at"`
}

func ledgerEntryDTO(e *budget.LedgerEntry) *LedgerEntryDTO {
	return &LedgerEntryDTO{
		ID:             e.ID,
		TenantID:       e.TenantID,
		OwnerID:        e.OwnerID,
		Tier:           string(e.Tier),
		EntryType:      string(e.Type),
		Amount:         e.Amount.Amount().String(),
		Currency:       string(e.Amount.Currency()),
		ActorID:        e.ActorID,
		ActorType:      string(e.ActorType),
		Reference:      e.Reference,
		IdempotencyKey: e.IdempotencyKey,
		CreatedAt:      e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
