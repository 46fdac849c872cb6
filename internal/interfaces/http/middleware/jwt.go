package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/infrastructure/auth"
	"github.com/rewards/backend/internal/infrastructure/logger"
)

// Context keys for authenticated request state
const (
	ClaimsKey      = "auth_claims"
	ActorKey       = "auth_actor"
	TenantScopeKey = "auth_tenant_scope"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional; when set, revoked tokens are rejected
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are exact paths that bypass authentication
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAuthConfig returns the default authentication configuration
func DefaultAuthConfig(jwtService *auth.JWTService) AuthConfig {
	return AuthConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
		},
	}
}

// Auth creates authentication middleware with default configuration
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return AuthWithConfig(DefaultAuthConfig(jwtService))
}

// AuthWithConfig validates bearer tokens and resolves the caller into
// a domain actor and tenant scope. The tenant scope travels in the
// request context so the persistence layer's isolation filter sees it
// without any handler involvement.
func AuthWithConfig(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" || !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, cfg, auth.ErrInvalidToken, "missing bearer token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg, err, "token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()
			if claims.ID != "" {
				revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID)
				if err != nil {
					// fail open on blacklist errors for availability
					logBlacklistError(cfg, err, claims.ID)
				} else if revoked {
					abortUnauthorized(c, cfg, auth.ErrTokenRevoked, "token has been revoked")
					return
				}
			}
			revoked, err := cfg.TokenBlacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
			if err != nil {
				logBlacklistError(cfg, err, claims.ID)
			} else if revoked {
				abortUnauthorized(c, cfg, auth.ErrTokenRevoked, "user session has been invalidated")
				return
			}
		}

		actor, err := claims.Actor()
		if err != nil {
			abortUnauthorized(c, cfg, err, "invalid actor claims")
			return
		}
		scope, err := claims.TenantContext()
		if err != nil {
			abortUnauthorized(c, cfg, err, "invalid tenant claims")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(ActorKey, actor)
		c.Set(TenantScopeKey, scope)

		ctx := identity.WithContext(c.Request.Context(), scope)
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		if claims.TenantID != "" {
			ctx, _ = logger.WithTenantID(ctx, log, claims.TenantID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func logBlacklistError(cfg AuthConfig, err error, jti string) {
	if cfg.Logger != nil {
		cfg.Logger.Error("failed to check token revocation",
			zap.String("jti", jti),
			zap.Error(err))
	}
}

// abortUnauthorized rejects the request with a 401
func abortUnauthorized(c *gin.Context, cfg AuthConfig, err error, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}

	code := "ERR_UNAUTHORIZED"
	switch err {
	case auth.ErrExpiredToken:
		code = "ERR_TOKEN_EXPIRED"
	case auth.ErrInvalidToken, auth.ErrInvalidClaims, auth.ErrMissingTenantID, auth.ErrMissingUserID:
		code = "ERR_TOKEN_INVALID"
	case auth.ErrTokenRevoked:
		code = "ERR_TOKEN_REVOKED"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetClaims retrieves validated claims from gin.Context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor retrieves the resolved actor from gin.Context
func GetActor(c *gin.Context) (identity.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(identity.Actor); ok {
			return actor, true
		}
	}
	return identity.Actor{}, false
}

// GetTenantScope retrieves the resolved tenant scope from gin.Context
func GetTenantScope(c *gin.Context) (identity.Context, bool) {
	if v, exists := c.Get(TenantScopeKey); exists {
		if scope, ok := v.(identity.Context); ok {
			return scope, true
		}
	}
	return identity.Context{}, false
}
