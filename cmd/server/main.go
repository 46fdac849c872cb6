package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	budgetapp "github.com/rewards/backend/internal/application/budget"
	identityapp "github.com/rewards/backend/internal/application/identity"
	"github.com/rewards/backend/internal/domain/shared"
	"github.com/rewards/backend/internal/infrastructure/auth"
	"github.com/rewards/backend/internal/infrastructure/cache"
	"github.com/rewards/backend/internal/infrastructure/config"
	csvimport "github.com/rewards/backend/internal/infrastructure/import"
	"github.com/rewards/backend/internal/infrastructure/logger"
	"github.com/rewards/backend/internal/infrastructure/persistence"
	"github.com/rewards/backend/internal/interfaces/http/handler"
	"github.com/rewards/backend/internal/interfaces/http/middleware"
	"github.com/rewards/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Rewards Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection; the tenant isolation filter is
	// registered on the connection inside NewDatabase
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis-backed idempotency store with in-memory fallback for
	// development setups
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Token blacklist shares the Redis deployment when available
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	departmentRepo := persistence.NewGormDepartmentBudgetRepository(db.DB)
	walletRepo := persistence.NewGormWalletRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	// Budget engine and services
	engine := budgetapp.NewEngine(
		budgetapp.NewGormUnitOfWork(db.DB),
		idempotencyStore,
		budgetapp.EngineOptions{
			OperationTimeout: cfg.Budget.OperationTimeout,
			IdempotencyTTL:   cfg.Budget.IdempotencyTTL,
		},
	)
	retryConfig := budgetapp.RetryConfig{
		Attempts:  cfg.Budget.RetryAttempts,
		BaseDelay: cfg.Budget.RetryBaseDelay,
	}
	ledgerService := budgetapp.NewLedgerService(ledgerRepo, auditRepo)
	reconcileService := budgetapp.NewReconcileService(tenantRepo, walletRepo, ledgerRepo)
	walletService := budgetapp.NewWalletService(walletRepo, tenantRepo)
	departmentService := budgetapp.NewDepartmentService(departmentRepo, tenantRepo)
	importSessions := csvimport.NewInMemorySessionStore(24 * time.Hour)
	defer importSessions.Stop()
	walletImportService := budgetapp.NewWalletImportService(walletRepo, tenantRepo, importSessions)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	tenantService := identityapp.NewTenantService(tenantRepo, log)

	// Initialize HTTP handlers
	budgetHandler := handler.NewBudgetHandler(engine, retryConfig)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, reconcileService, walletService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	importHandler := handler.NewImportHandler(walletImportService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))
	ginEngine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning and auth)
	ginEngine.GET("/health", healthHandler(db))

	r := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))

	publicPaths := []string{
		"/api/v1/system/ping",
		"/api/v1/system/info",
	}

	// Auth resolves the caller's identity and tenant scope; the guard
	// rejects requests that reach handlers without one
	r.Use(middleware.AuthWithConfig(middleware.AuthConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths:      publicPaths,
		Logger:         log,
	}))
	r.Use(middleware.TenantGuardWithConfig(middleware.TenantGuardConfig{
		Validator: middleware.TenantValidatorFunc(func(c *gin.Context, tenantID uuid.UUID) error {
			tenant, err := tenantRepo.FindByID(c.Request.Context(), tenantID)
			if err != nil {
				return err
			}
			if !tenant.IsActive() {
				return shared.ErrInvalidState.WithMessage("tenant is not active")
			}
			return nil
		}),
		SkipPaths: publicPaths,
		Logger:    log,
	}))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tenant lifecycle and platform-tier budget operations
	tenantRoutes := router.NewDomainGroup("tenants", "/tenants")
	tenantRoutes.POST("", tenantHandler.Create)
	tenantRoutes.GET("", tenantHandler.List)
	tenantRoutes.GET("/:id", tenantHandler.Get)
	tenantRoutes.POST("/:id/suspend", tenantHandler.Suspend)
	tenantRoutes.POST("/:id/activate", tenantHandler.Activate)
	tenantRoutes.PUT("/:id/config", tenantHandler.UpdateConfig)
	tenantRoutes.POST("/:id/allocations", budgetHandler.AllocateToTenant)
	tenantRoutes.POST("/:id/clawbacks", budgetHandler.ClawbackFromTenant)
	tenantRoutes.GET("/:id/reconciliation", ledgerHandler.ReconcileTenant)

	// Department budget provisioning and tier operations
	departmentRoutes := router.NewDomainGroup("departments", "/departments")
	departmentRoutes.POST("", departmentHandler.Create)
	departmentRoutes.GET("/:id", departmentHandler.Get)
	departmentRoutes.POST("/:id/distributions", budgetHandler.DistributeToDepartment)
	departmentRoutes.POST("/:id/lead-allocations", budgetHandler.AllocateToLead)

	// Recognition awards land in employee wallets
	awardRoutes := router.NewDomainGroup("awards", "/awards")
	awardRoutes.POST("", budgetHandler.AwardToEmployee)

	// Wallet reads and redemptions
	walletRoutes := router.NewDomainGroup("wallets", "/wallets")
	walletRoutes.POST("", ledgerHandler.CreateWallet)
	walletRoutes.GET("/:id", ledgerHandler.GetWallet)
	walletRoutes.POST("/:id/spend", budgetHandler.SpendFromWallet)
	walletRoutes.GET("/:id/reconciliation", ledgerHandler.ReconcileWallet)
	walletRoutes.POST("/imports", importHandler.ImportWallets)
	walletRoutes.GET("/imports", importHandler.ListImportSessions)
	walletRoutes.GET("/imports/:id", importHandler.GetImportSession)

	// Ledger and audit history
	historyRoutes := router.NewDomainGroup("history", "")
	historyRoutes.GET("/ledger", ledgerHandler.ListEntries)
	historyRoutes.GET("/audit-log", ledgerHandler.ListAuditLog)

	// System endpoints
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(tenantRoutes).
		Register(departmentRoutes).
		Register(awardRoutes).
		Register(walletRoutes).
		Register(historyRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
