package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/rewards/backend/internal/application/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/interfaces/http/dto"
)

// TenantHandler serves tenant lifecycle and configuration endpoints
type TenantHandler struct {
	BaseHandler
	tenants *appidentity.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants *appidentity.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// CreateTenantRequest is the request body for tenant creation
type CreateTenantRequest struct {
	Code string `json:"code" binding:"required,min=2,max=32"`
	Name string `json:"name" binding:"required,min=1,max=128"`
}

// Create handles POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	tenant, err := h.tenants.Create(c.Request.Context(), appidentity.CreateTenantInput{
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// Get handles GET /tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenants.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// List handles GET /tenants
func (h *TenantHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, "Invalid query parameters")
		return
	}
	req.Normalize()

	page, err := h.tenants.List(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Activate handles POST /tenants/:id/activate
func (h *TenantHandler) Activate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenants.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// Suspend handles POST /tenants/:id/suspend
func (h *TenantHandler) Suspend(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenants.Suspend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// UpdateConfigRequest is the request body for tenant configuration
// updates. Omitted fields keep their current value.
type UpdateConfigRequest struct {
	Currency       *string `json:"currency" binding:"omitempty,len=3"`
	MarkupPercent  *int    `json:"markup_percent" binding:"omitempty,gte=0,lte=100"`
	Features       *string `json:"features"`
	MonthlyCapping *bool   `json:"monthly_capping"`
}

// UpdateConfig handles PUT /tenants/:id/config
func (h *TenantHandler) UpdateConfig(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}

	tenant, err := h.tenants.UpdateConfig(c.Request.Context(), id, appidentity.TenantConfigInput{
		Currency:       req.Currency,
		MarkupPercent:  req.MarkupPercent,
		Features:       req.Features,
		MonthlyCapping: req.MonthlyCapping,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}
