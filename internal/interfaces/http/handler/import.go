package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbudget "github.com/rewards/backend/internal/application/budget"
	csvimport "github.com/rewards/backend/internal/infrastructure/import"
)

// ImportHandler serves bulk wallet provisioning from CSV uploads
type ImportHandler struct {
	BaseHandler
	imports *appbudget.WalletImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(imports *appbudget.WalletImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// ImportSessionDTO represents an import session in responses
type ImportSessionDTO struct {
	ID          uuid.UUID            `json:"id"`
	TenantID    uuid.UUID            `json:"tenant_id"`
	EntityType  string               `json:"entity_type"`
	FileName    string               `json:"file_name"`
	State       string               `json:"state"`
	TotalRows   int                  `json:"total_rows"`
	ValidRows   int                  `json:"valid_rows"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	CreatedAt   string               `json:"created_at"`
	CompletedAt string               `json:"completed_at,omitempty"`
}

func importSessionDTO(s *csvimport.ImportSession) ImportSessionDTO {
	d := ImportSessionDTO{
		ID:         s.ID,
		TenantID:   s.TenantID,
		EntityType: string(s.EntityType),
		FileName:   s.FileName,
		State:      string(s.State),
		TotalRows:  s.TotalRows,
		ValidRows:  s.ValidRows,
		ErrorRows:  s.ErrorRows,
		Errors:     s.Errors,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.CompletedAt != nil {
		d.CompletedAt = s.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return d
}

// ImportWallets handles POST /wallets/imports. The request is a
// multipart form with a tenant_id field and a CSV file field.
func (h *ImportHandler) ImportWallets(c *gin.Context) {
	tenantID, err := uuid.Parse(c.PostForm("tenant_id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	session, err := h.imports.Import(c.Request.Context(), tenantID, actor.UserID, fileHeader.Filename, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if session.State == csvimport.StateFailed {
		h.Success(c, importSessionDTO(session))
		return
	}
	h.Created(c, importSessionDTO(session))
}

// GetImportSession handles GET /wallets/imports/:id
func (h *ImportHandler) GetImportSession(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.imports.GetSession(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if session == nil {
		h.NotFound(c, "Import session not found")
		return
	}
	h.Success(c, importSessionDTO(session))
}

// ListImportSessions handles GET /wallets/imports
func (h *ImportHandler) ListImportSessions(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	sessions, err := h.imports.ListSessions(tenantID, 50)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ImportSessionDTO, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, importSessionDTO(s))
	}
	h.Success(c, items)
}
