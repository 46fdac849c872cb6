package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appbudget "github.com/rewards/backend/internal/application/budget"
	appidentity "github.com/rewards/backend/internal/application/identity"
	"github.com/rewards/backend/internal/domain/budget"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/domain/shared/valueobject"
	"github.com/rewards/backend/internal/infrastructure/cache"
	csvimport "github.com/rewards/backend/internal/infrastructure/import"
	"github.com/rewards/backend/internal/infrastructure/persistence"
	"github.com/rewards/backend/internal/interfaces/http/dto"
	"github.com/rewards/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerFixture struct {
	db      *gorm.DB
	engine  *appbudget.Engine
	tenants *persistence.GormTenantRepository
	wallets *persistence.GormWalletRepository
	ledger  *persistence.GormLedgerRepository
	audits  *persistence.GormAuditRepository

	budgetHandler *BudgetHandler
	ledgerHandler *LedgerHandler
	tenantHandler *TenantHandler
	deptHandler   *DepartmentHandler
	importHandler *ImportHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrateModels(db))

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	tenants := persistence.NewGormTenantRepository(db)
	wallets := persistence.NewGormWalletRepository(db)
	ledger := persistence.NewGormLedgerRepository(db)
	audits := persistence.NewGormAuditRepository(db)

	engine := appbudget.NewEngine(appbudget.NewGormUnitOfWork(db), store, appbudget.DefaultEngineOptions())
	ledgerService := appbudget.NewLedgerService(ledger, audits)
	reconcileService := appbudget.NewReconcileService(tenants, wallets, ledger)
	walletService := appbudget.NewWalletService(wallets, tenants)
	departmentService := appbudget.NewDepartmentService(persistence.NewGormDepartmentBudgetRepository(db), tenants)
	tenantService := appidentity.NewTenantService(tenants, zap.NewNop())

	importSessions := csvimport.NewInMemorySessionStore(time.Hour)
	t.Cleanup(importSessions.Stop)
	walletImportService := appbudget.NewWalletImportService(wallets, tenants, importSessions)

	return &handlerFixture{
		db:            db,
		engine:        engine,
		tenants:       tenants,
		wallets:       wallets,
		ledger:        ledger,
		audits:        audits,
		budgetHandler: NewBudgetHandler(engine, appbudget.DefaultRetryConfig()),
		ledgerHandler: NewLedgerHandler(ledgerService, reconcileService, walletService),
		tenantHandler: NewTenantHandler(tenantService),
		deptHandler:   NewDepartmentHandler(departmentService),
		importHandler: NewImportHandler(walletImportService),
	}
}

// testAuth plants a resolved identity the way the auth middleware does
func testAuth(actor identity.Actor, scope identity.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
		c.Set(middleware.TenantScopeKey, scope)
		c.Request = c.Request.WithContext(identity.WithContext(c.Request.Context(), scope))
		c.Next()
	}
}

func platformAdmin() identity.Actor {
	return identity.Actor{UserID: uuid.New(), Type: identity.ActorTypePlatformAdmin}
}

func tenantManager() identity.Actor {
	return identity.Actor{UserID: uuid.New(), Type: identity.ActorTypeTenantManager}
}

func globalScope() identity.Context {
	return identity.Context{GlobalAccess: true}
}

func tenantScope(tenantID uuid.UUID) identity.Context {
	return identity.Context{TenantID: tenantID}
}

func (f *handlerFixture) seedTenant(t *testing.T, code string) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant(code, code+" Inc")
	require.NoError(t, err)
	require.NoError(t, f.tenants.Save(context.Background(), tenant))
	return tenant
}

func (f *handlerFixture) seedWallet(t *testing.T, tenantID uuid.UUID) *budget.EmployeeWallet {
	t.Helper()
	w, err := budget.NewEmployeeWallet(tenantID, uuid.New(), valueobject.PTS)
	require.NoError(t, err)
	require.NoError(t, f.wallets.Save(context.Background(), w))
	return w
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBudgetHandler_AllocateToTenant(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	router := gin.New()
	router.Use(testAuth(platformAdmin(), globalScope()))
	router.POST("/tenants/:id/allocations", f.budgetHandler.AllocateToTenant)

	t.Run("allocates points to the tenant", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
			Amount:         decimal.NewFromInt(5000),
			IdempotencyKey: "alloc-1",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("accepts the amount as a JSON string", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", map[string]any{
			"amount":          "150.25",
			"idempotency_key": "alloc-str",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp struct {
			Data OperationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "150.25", resp.Data.Entry.Amount)
	})

	t.Run("rejects a duplicate idempotency key", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
			Amount:         decimal.NewFromInt(5000),
			IdempotencyKey: "alloc-1",
		})

		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeDuplicateAllocation, resp.Error.Code)
	})

	t.Run("rejects a missing idempotency key", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
			Amount: decimal.NewFromInt(5000),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
			Amount:         decimal.NewFromInt(-10),
			IdempotencyKey: "alloc-neg",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an invalid tenant id", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/not-a-uuid/allocations", AllocateRequest{
			Amount:         decimal.NewFromInt(10),
			IdempotencyKey: "alloc-2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBudgetHandler_ClawbackFromTenant(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	router := gin.New()
	router.Use(testAuth(platformAdmin(), globalScope()))
	router.POST("/tenants/:id/allocations", f.budgetHandler.AllocateToTenant)
	router.POST("/tenants/:id/clawbacks", f.budgetHandler.ClawbackFromTenant)

	w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
		Amount:         decimal.NewFromInt(1000),
		IdempotencyKey: "alloc-1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("claws back unspent points", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/clawbacks", ClawbackRequest{
			Amount: decimal.NewFromInt(400),
			Reason: "contract downsized",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("rejects clawing back more than the balance", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/clawbacks", ClawbackRequest{
			Amount: decimal.NewFromInt(5000),
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInsufficientBalance, resp.Error.Code)
	})
}

func TestBudgetHandler_SpendFromWallet(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")
	wallet := f.seedWallet(t, tenant.ID)

	router := gin.New()
	router.Use(testAuth(tenantManager(), tenantScope(tenant.ID)))
	router.POST("/wallets/:id/spend", f.budgetHandler.SpendFromWallet)

	t.Run("rejects spending from an empty wallet", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/wallets/"+wallet.ID.String()+"/spend", SpendRequest{
			Amount:        decimal.NewFromInt(50),
			RedemptionRef: "redeem-1",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInsufficientBalance, resp.Error.Code)
	})

	t.Run("masks wallets of other tenants as not found", func(t *testing.T) {
		other := f.seedTenant(t, "globex")
		foreign := f.seedWallet(t, other.ID)

		w := doJSON(t, router, http.MethodPost, "/wallets/"+foreign.ID.String()+"/spend", SpendRequest{
			Amount: decimal.NewFromInt(10),
		})
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "Resource not found", resp.Error.Message)
	})
}

func TestLedgerHandler_ListEntries(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	adminRouter := gin.New()
	adminRouter.Use(testAuth(platformAdmin(), globalScope()))
	adminRouter.POST("/tenants/:id/allocations", f.budgetHandler.AllocateToTenant)
	adminRouter.GET("/ledger", f.ledgerHandler.ListEntries)

	w := doJSON(t, adminRouter, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
		Amount:         decimal.NewFromInt(2500),
		IdempotencyKey: "alloc-1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("lists tenant tier entries", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ledger?tier=tenant&owner_id="+tenant.ID.String(), nil)
		rec := httptest.NewRecorder()
		adminRouter.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("rejects an unknown tier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ledger?tier=bogus&owner_id="+tenant.ID.String(), nil)
		rec := httptest.NewRecorder()
		adminRouter.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires tier and owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ledger", nil)
		rec := httptest.NewRecorder()
		adminRouter.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLedgerHandler_Reconciliation(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	router := gin.New()
	router.Use(testAuth(platformAdmin(), globalScope()))
	router.POST("/tenants/:id/allocations", f.budgetHandler.AllocateToTenant)
	router.GET("/tenants/:id/reconciliation", f.ledgerHandler.ReconcileTenant)

	w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
		Amount:         decimal.NewFromInt(1200),
		IdempotencyKey: "alloc-1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/tenants/"+tenant.ID.String()+"/reconciliation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data ReconcileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, tenant.ID, resp.Data.OwnerID)
	assert.Equal(t, "1200", resp.Data.Balance)
	assert.Equal(t, "1200", resp.Data.LedgerSum)
	assert.True(t, resp.Data.InBalance)
}

func TestLedgerHandler_Wallets(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	router := gin.New()
	router.Use(testAuth(tenantManager(), tenantScope(tenant.ID)))
	router.POST("/wallets", f.ledgerHandler.CreateWallet)
	router.GET("/wallets/:id", f.ledgerHandler.GetWallet)

	t.Run("provisions and reads a wallet", func(t *testing.T) {
		userID := uuid.New()
		w := doJSON(t, router, http.MethodPost, "/wallets", CreateWalletRequest{
			TenantID: tenant.ID.String(),
			UserID:   userID.String(),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created struct {
			Data WalletDTO `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, userID, created.Data.UserID)
		assert.Equal(t, "0", created.Data.Balance)

		req := httptest.NewRequest(http.MethodGet, "/wallets/"+created.Data.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func TestTenantHandler_Lifecycle(t *testing.T) {
	f := newHandlerFixture(t)

	router := gin.New()
	router.Use(testAuth(platformAdmin(), globalScope()))
	router.POST("/tenants", f.tenantHandler.Create)
	router.GET("/tenants/:id", f.tenantHandler.Get)
	router.GET("/tenants", f.tenantHandler.List)
	router.POST("/tenants/:id/suspend", f.tenantHandler.Suspend)
	router.POST("/tenants/:id/activate", f.tenantHandler.Activate)
	router.PUT("/tenants/:id/config", f.tenantHandler.UpdateConfig)

	w := doJSON(t, router, http.MethodPost, "/tenants", CreateTenantRequest{Code: "acme", Name: "Acme Inc"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data appidentity.TenantDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "ACME", created.Data.Code)
	tenantID := created.Data.ID.String()

	t.Run("rejects a duplicate code", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants", CreateTenantRequest{Code: "acme", Name: "Other"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("reads the tenant back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tenants/"+tenantID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("suspends and reactivates", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenantID+"/suspend", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodPost, "/tenants/"+tenantID+"/activate", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("updates config partially", func(t *testing.T) {
		markup := 25
		w := doJSON(t, router, http.MethodPut, "/tenants/"+tenantID+"/config", UpdateConfigRequest{
			MarkupPercent: &markup,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated struct {
			Data appidentity.TenantDTO `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, 25, updated.Data.Config.MarkupPercent)
		assert.Equal(t, "PTS", updated.Data.Config.Currency)
	})

	t.Run("lists with pagination meta", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tenants?page=1&page_size=10", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})
}

func TestSystemHandler(t *testing.T) {
	h := NewSystemHandler()

	router := gin.New()
	router.GET("/system/ping", h.Ping)
	router.GET("/system/info", h.GetSystemInfo)

	t.Run("ping", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/system/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data PingResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "pong", resp.Data.Message)
	})

	t.Run("info", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/system/info", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data SystemInfoResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Rewards Backend API", resp.Data.Name)
	})
}

func doMultipartImport(t *testing.T, router *gin.Engine, tenantID uuid.UUID, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("tenant_id", tenantID.String()))
	fw, err := mw.CreateFormFile("file", "wallets.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/wallets/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportHandler_ImportWallets(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	router := gin.New()
	router.Use(testAuth(tenantManager(), tenantScope(tenant.ID)))
	router.POST("/wallets/imports", f.importHandler.ImportWallets)
	router.GET("/wallets/imports", f.importHandler.ListImportSessions)
	router.GET("/wallets/imports/:id", f.importHandler.GetImportSession)

	t.Run("imports a valid file", func(t *testing.T) {
		userID := uuid.New()
		w := doMultipartImport(t, router, tenant.ID, "user_id\n"+userID.String()+"\n")

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "completed", data["state"])
		assert.Equal(t, float64(1), data["valid_rows"])

		wallet, err := f.wallets.FindByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, wallet.TenantID)
	})

	t.Run("returns row errors for a bad file", func(t *testing.T) {
		w := doMultipartImport(t, router, tenant.ID, "user_id\nnot-a-uuid\n")

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "failed", data["state"])
		assert.Equal(t, float64(1), data["error_rows"])
	})

	t.Run("rejects a missing file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("tenant_id", tenant.ID.String()))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/wallets/imports", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fetches a session by id", func(t *testing.T) {
		w := doMultipartImport(t, router, tenant.ID, "user_id\n"+uuid.NewString()+"\n")
		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		sessionID := resp.Data.(map[string]any)["id"].(string)

		req := httptest.NewRequest(http.MethodGet, "/wallets/imports/"+sessionID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wallets/imports/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists sessions for the tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/wallets/imports?tenant_id="+tenant.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.NotEmpty(t, resp.Data)
	})
}

func TestDepartmentHandler_CreateAndDistribute(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, "acme")

	router := gin.New()
	router.Use(testAuth(platformAdmin(), globalScope()))
	router.POST("/departments", f.deptHandler.Create)
	router.GET("/departments/:id", f.deptHandler.Get)
	router.POST("/tenants/:id/allocations", f.budgetHandler.AllocateToTenant)
	router.POST("/departments/:id/distributions", f.budgetHandler.DistributeToDepartment)

	departmentID := uuid.New()
	var created struct {
		Data DepartmentBudgetDTO `json:"data"`
	}

	t.Run("provisions a department budget", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/departments", CreateDepartmentBudgetRequest{
			TenantID:     tenant.ID.String(),
			DepartmentID: departmentID.String(),
			Name:         "Engineering",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, departmentID, created.Data.DepartmentID)
		assert.Equal(t, "0", created.Data.Remaining)
		assert.Equal(t, "PTS", created.Data.Currency)
	})

	t.Run("rejects a second budget for the department", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/departments", CreateDepartmentBudgetRequest{
			TenantID:     tenant.ID.String(),
			DepartmentID: departmentID.String(),
			Name:         "Engineering Again",
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("rejects a malformed expiry", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/departments", CreateDepartmentBudgetRequest{
			TenantID:     tenant.ID.String(),
			DepartmentID: uuid.NewString(),
			Name:         "Sales",
			ExpiresAt:    "next year",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reads the budget back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/departments/"+created.Data.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("created budget receives distributions", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tenants/"+tenant.ID.String()+"/allocations", AllocateRequest{
			Amount:         decimal.NewFromInt(5000),
			IdempotencyKey: "alloc-dept",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doJSON(t, router, http.MethodPost, "/departments/"+created.Data.ID.String()+"/distributions", DistributeRequest{
			TenantID: tenant.ID.String(),
			Amount:   decimal.NewFromInt(2000),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		req := httptest.NewRequest(http.MethodGet, "/departments/"+created.Data.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var reloaded struct {
			Data DepartmentBudgetDTO `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reloaded))
		assert.Equal(t, "2000", reloaded.Data.Remaining)
	})
}
