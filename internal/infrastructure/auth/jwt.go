package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rewards/backend/internal/domain/identity"
	"github.com/rewards/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the JWT claims carried by bearer tokens. The identity
// provider that issues tokens stamps each caller with a tenant binding
// and an actor type; global_access is only honored for platform-level
// actor types.
type Claims struct {
	jwt.RegisteredClaims
	TenantID     string `json:"tenant_id"`
	UserID       string `json:"user_id"`
	Username     string `json:"username,omitempty"`
	ActorType    string `json:"actor_type"`
	GlobalAccess bool   `json:"global_access,omitempty"`
}

// JWTService signs and verifies bearer tokens
type JWTService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewJWTService creates a JWT service from configuration
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		expiration: cfg.Expiration,
	}
}

// TokenInput contains the identity baked into a generated token
type TokenInput struct {
	TenantID     uuid.UUID
	UserID       uuid.UUID
	Username     string
	ActorType    identity.ActorType
	GlobalAccess bool
}

// GenerateToken issues a signed access token for the given identity
func (s *JWTService) GenerateToken(input TokenInput) (string, error) {
	if !input.ActorType.IsValid() {
		return "", ErrInvalidClaims
	}

	tenantID := ""
	if input.TenantID != uuid.Nil {
		tenantID = input.TenantID.String()
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:     tenantID,
		UserID:       input.UserID.String(),
		Username:     input.Username,
		ActorType:    string(input.ActorType),
		GlobalAccess: input.GlobalAccess,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies a signed token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if claims.TenantID == "" && !claims.GlobalAccess {
		return nil, ErrMissingTenantID
	}

	return claims, nil
}

// Expiration returns the configured token lifetime
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// Actor resolves the claims into a domain actor
func (c *Claims) Actor() (identity.Actor, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return identity.Actor{}, ErrInvalidClaims
	}
	actorType := identity.ActorType(c.ActorType)
	if !actorType.IsValid() {
		return identity.Actor{}, ErrInvalidClaims
	}
	return identity.Actor{UserID: userID, Type: actorType}, nil
}

// TenantContext resolves the claims into a tenant scope. Global access
// is only honored for platform administrators and system callers; any
// other actor type is bound to its tenant even when the claim lies.
func (c *Claims) TenantContext() (identity.Context, error) {
	actorType := identity.ActorType(c.ActorType)
	global := c.GlobalAccess &&
		(actorType == identity.ActorTypePlatformAdmin || actorType == identity.ActorTypeSystem)

	var tenantID uuid.UUID
	if c.TenantID != "" {
		var err error
		tenantID, err = uuid.Parse(c.TenantID)
		if err != nil {
			return identity.Context{}, ErrInvalidClaims
		}
	}
	if tenantID == uuid.Nil && !global {
		return identity.Context{}, ErrMissingTenantID
	}

	return identity.Context{TenantID: tenantID, GlobalAccess: global}, nil
}

// IssuedAtTime returns the token's issued-at time, zero if absent
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// RemainingTTL returns the time until the token expires
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
