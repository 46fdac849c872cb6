package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbudget "github.com/rewards/backend/internal/application/budget"
	"github.com/rewards/backend/internal/domain/audit"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/interfaces/http/dto"
)

// LedgerHandler serves ledger, audit and reconciliation reads
type LedgerHandler struct {
	BaseHandler
	ledger    *appbudget.LedgerService
	reconcile *appbudget.ReconcileService
	wallets   *appbudget.WalletService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *appbudget.LedgerService, reconcile *appbudget.ReconcileService, wallets *appbudget.WalletService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, reconcile: reconcile, wallets: wallets}
}

// LedgerListRequest carries the query parameters for ledger reads
type LedgerListRequest struct {
	dto.ListRequest
	Tier    string `form:"tier" binding:"required"`
	OwnerID string `form:"owner_id" binding:"required,uuid"`
	ActorID string `form:"actor_id" binding:"omitempty,uuid"`
	From    string `form:"from" binding:"omitempty"`
	To      string `form:"to" binding:"omitempty"`
}

// ListEntries handles GET /ledger
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	var req LedgerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, "Invalid query parameters")
		return
	}
	req.Normalize()

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.BadRequest(c, "Invalid owner ID")
		return
	}

	filter := budget.LedgerFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		Tier:    budget.Tier(req.Tier),
		OwnerID: ownerID,
	}
	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			h.BadRequest(c, "Invalid actor ID")
			return
		}
		filter.ActorID = &actorID
	}
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			h.BadRequest(c, "Invalid from timestamp")
			return
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			h.BadRequest(c, "Invalid to timestamp")
			return
		}
		filter.To = &to
	}

	page, err := h.ledger.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]*LedgerEntryDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ledgerEntryDTO(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// AuditListRequest carries the query parameters for audit reads
type AuditListRequest struct {
	dto.ListRequest
	TenantID   string `form:"tenant_id" binding:"omitempty,uuid"`
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	EntityID   string `form:"entity_id" binding:"omitempty,uuid"`
	ActorID    string `form:"actor_id" binding:"omitempty,uuid"`
}

// AuditLogEntryDTO represents one audit record in responses
type AuditLogEntryDTO struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	OldValues  audit.Snapshot `json:"old_values,omitempty"`
	NewValues  audit.Snapshot `json:"new_values,omitempty"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ActorType  string         `json:"actor_type"`
	CreatedAt  string         `json:"created_at"`
}

// ListAuditLog handles GET /audit-log
func (h *LedgerHandler) ListAuditLog(c *gin.Context) {
	var req AuditListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, "Invalid query parameters")
		return
	}
	req.Normalize()

	filter := audit.Filter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		Action:     req.Action,
		EntityType: req.EntityType,
	}
	if req.TenantID != "" {
		tenantID, err := uuid.Parse(req.TenantID)
		if err != nil {
			h.BadRequest(c, "Invalid tenant ID")
			return
		}
		filter.TenantID = tenantID
	}
	if req.EntityID != "" {
		entityID, err := uuid.Parse(req.EntityID)
		if err != nil {
			h.BadRequest(c, "Invalid entity ID")
			return
		}
		filter.EntityID = &entityID
	}
	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			h.BadRequest(c, "Invalid actor ID")
			return
		}
		filter.ActorID = &actorID
	}

	page, err := h.ledger.ListAuditLog(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]AuditLogEntryDTO, 0, len(page.Items))
	for i := range page.Items {
		e := &page.Items[i]
		items = append(items, AuditLogEntryDTO{
			ID:         e.ID,
			TenantID:   e.TenantID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OldValues:  e.OldValues,
			NewValues:  e.NewValues,
			ActorID:    e.ActorID,
			ActorType:  string(e.ActorType),
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// ReconcileResponse reports ledger drift for one balance holder
type ReconcileResponse struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Balance   string    `json:"balance"`
	LedgerSum string    `json:"ledger_sum"`
	Drift     string    `json:"drift"`
	InBalance bool      `json:"in_balance"`
}

func reconcileResponse(r *appbudget.ReconcileResult) ReconcileResponse {
	return ReconcileResponse{
		OwnerID:   r.OwnerID,
		Balance:   r.Balance.String(),
		LedgerSum: r.LedgerSum.String(),
		Drift:     r.Drift.String(),
		InBalance: r.InBalance(),
	}
}

// ReconcileTenant handles GET /tenants/:id/reconciliation
func (h *LedgerHandler) ReconcileTenant(c *gin.Context) {
	tenantID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	result, err := h.reconcile.ReconcileTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reconcileResponse(result))
}

// ReconcileWallet handles GET /wallets/:id/reconciliation
func (h *LedgerHandler) ReconcileWallet(c *gin.Context) {
	walletID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID")
		return
	}

	result, err := h.reconcile.ReconcileWallet(c.Request.Context(), walletID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reconcileResponse(result))
}

// WalletDTO represents a wallet in responses
type WalletDTO struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	UserID   uuid.UUID `json:"user_id"`
	Balance  string    `json:"balance"`
	Currency string    `json:"currency"`
	Version  int       `json:"version"`
}

func walletDTO(w *budget.EmployeeWallet) WalletDTO {
	return WalletDTO{
		ID:       w.ID,
		TenantID: w.TenantID,
		UserID:   w.UserID,
		Balance:  w.Balance.Amount().String(),
		Currency: string(w.Balance.Currency()),
		Version:  w.Version,
	}
}

// GetWallet handles GET /wallets/:id
func (h *LedgerHandler) GetWallet(c *gin.Context) {
	walletID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid wallet ID")
		return
	}

	wallet, err := h.wallets.Get(c.Request.Context(), walletID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, walletDTO(wallet))
}

// CreateWalletRequest is the request body for wallet provisioning
type CreateWalletRequest struct {
	TenantID string `json:"tenant_id" binding:"required,uuid"`
	UserID   string `json:"user_id" binding:"required,uuid"`
}

// CreateWallet handles POST /wallets
func (h *LedgerHandler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	wallet, err := h.wallets.Create(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, walletDTO(wallet))
}
