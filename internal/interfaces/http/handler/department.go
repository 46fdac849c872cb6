package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbudget "github.com/rewards/backend/internal/application/budget"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/interfaces/http/dto"
)

// DepartmentHandler serves department budget provisioning and reads
type DepartmentHandler struct {
	BaseHandler
	departments *appbudget.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler
func NewDepartmentHandler(departments *appbudget.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

// CreateDepartmentBudgetRequest is the request body for department
// budget provisioning. MonthlyCap and ExpiresAt are optional;
// ExpiresAt is an RFC 3339 timestamp.
type CreateDepartmentBudgetRequest struct {
	TenantID     string           `json:"tenant_id" binding:"required,uuid"`
	DepartmentID string           `json:"department_id" binding:"required,uuid"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	MonthlyCap   *decimal.Decimal `json:"monthly_cap"`
	ExpiresAt    string           `json:"expires_at"`
}

// DepartmentBudgetDTO represents a department budget in responses
type DepartmentBudgetDTO struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	DepartmentID uuid.UUID `json:"department_id"`
	Name         string    `json:"name"`
	Allocated    string    `json:"allocated"`
	Spent        string    `json:"spent"`
	Remaining    string    `json:"remaining"`
	Currency     string    `json:"currency"`
	MonthlyCap   *string   `json:"monthly_cap,omitempty"`
	ExpiresAt    *string   `json:"expires_at,omitempty"`
}

func departmentBudgetDTO(b *budget.DepartmentBudget) DepartmentBudgetDTO {
	d := DepartmentBudgetDTO{
		ID:           b.ID,
		TenantID:     b.TenantID,
		DepartmentID: b.DepartmentID,
		Name:         b.Name,
		Allocated:    b.AllocatedPoints.Amount().String(),
		Spent:        b.SpentPoints.Amount().String(),
		Remaining:    b.Remaining().Amount().String(),
		Currency:     string(b.AllocatedPoints.Currency()),
	}
	if b.MonthlyCap != nil {
		capAmount := b.MonthlyCap.Amount().String()
		d.MonthlyCap = &capAmount
	}
	if b.ExpiresAt != nil {
		expires := b.ExpiresAt.Format(time.RFC3339)
		d.ExpiresAt = &expires
	}
	return d
}

// Create handles POST /departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req CreateDepartmentBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Invalid request body")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		h.BadRequest(c, "Invalid department ID")
		return
	}

	input := appbudget.CreateDepartmentBudgetInput{
		TenantID:     tenantID,
		DepartmentID: departmentID,
		Name:         req.Name,
		MonthlyCap:   req.MonthlyCap,
	}
	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			h.BadRequest(c, "Invalid expiry timestamp")
			return
		}
		input.ExpiresAt = &expiresAt
	}

	deptBudget, err := h.departments.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, departmentBudgetDTO(deptBudget))
}

// Get handles GET /departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid department budget ID")
		return
	}

	deptBudget, err := h.departments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, departmentBudgetDTO(deptBudget))
}
