package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rewards/backend/internal/domain/identity"
)

// TenantValidator checks that a tenant exists and may serve traffic
type TenantValidator interface {
	ValidateTenant(c *gin.Context, tenantID uuid.UUID) error
}

// TenantValidatorFunc adapts a plain function to the TenantValidator
// interface
type TenantValidatorFunc func(c *gin.Context, tenantID uuid.UUID) error

// ValidateTenant implements TenantValidator
func (f TenantValidatorFunc) ValidateTenant(c *gin.Context, tenantID uuid.UUID) error {
	return f(c, tenantID)
}

// TenantGuardConfig holds configuration for the tenant guard
type TenantGuardConfig struct {
	// Validator is optional; when set, scoped requests are rejected if
	// their tenant is suspended or missing.
	Validator TenantValidator
	// SkipPaths are exact paths that bypass the guard
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantGuardConfig returns the default tenant guard configuration
func DefaultTenantGuardConfig() TenantGuardConfig {
	return TenantGuardConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/health"},
	}
}

// TenantGuard enforces that every authenticated request carries a
// resolved tenant scope. It runs after Auth; requests that somehow
// reach handlers without a scope are rejected rather than allowed to
// run unscoped queries.
func TenantGuard() gin.HandlerFunc {
	return TenantGuardWithConfig(DefaultTenantGuardConfig())
}

// TenantGuardWithConfig returns a tenant guard with custom configuration
func TenantGuardWithConfig(cfg TenantGuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		scope, ok := GetTenantScope(c)
		if !ok {
			respondTenantRejected(c, "tenant scope missing")
			return
		}

		// global callers are not bound to any one tenant
		if scope.GlobalAccess {
			c.Next()
			return
		}

		if !scope.Scoped() {
			respondTenantRejected(c, "tenant identification required")
			return
		}

		if cfg.Validator != nil {
			if err := cfg.Validator.ValidateTenant(c, scope.TenantID); err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Warn("tenant validation failed",
						zap.String("tenant_id", scope.TenantID.String()),
						zap.Error(err))
				}
				respondTenantRejected(c, "invalid or inactive tenant")
				return
			}
		}

		c.Next()
	}
}

func respondTenantRejected(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_UNAUTHORIZED",
			"message": message,
		},
	})
}

// MustGetTenantScope retrieves the tenant scope or panics. Use only in
// handlers behind Auth and TenantGuard.
func MustGetTenantScope(c *gin.Context) identity.Context {
	scope, ok := GetTenantScope(c)
	if !ok {
		panic("tenant scope not found in context")
	}
	return scope
}
