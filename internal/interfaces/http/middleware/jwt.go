package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/infrastructure/auth"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys. The user and role keys are shared with the request
// logger.
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = logger.GinUserIDKey
	JWTRoleKey    = logger.GinRoleKey
	JWTSiteIDKey  = "site_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator parses and verifies access tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Validator TokenValidator
	// SkipPaths are served without a token
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultJWTConfig skips health, metrics and login
func DefaultJWTConfig(validator TokenValidator) JWTConfig {
	return JWTConfig{
		Validator: validator,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/api/v1/auth/login",
		},
	}
}

// Actor is the authenticated caller of a request
type Actor struct {
	UserID uuid.UUID
	Role   identity.Role
	SiteID *uuid.UUID
}

// JWTAuth rejects requests without a valid bearer token and stores the
// claims for handlers
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, log, dto.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, log, dto.ErrCodeTokenInvalid, "Invalid authorization header format", nil)
			return
		}

		claims, err := cfg.Validator.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, log, dto.ErrCodeTokenExpired, "Token has expired", err)
				return
			}
			abortUnauthorized(c, log, dto.ErrCodeTokenInvalid, "Invalid token", err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)
		if claims.SiteID != "" {
			c.Set(JWTSiteIDKey, claims.SiteID)
		}
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), claims.UserID, claims.Role))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, code, message string, err error) {
	log.Debug("JWT authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", message),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, c.GetString(logger.GinRequestIDKey)))
}

// GetClaims returns the claims stored by JWTAuth
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor returns the authenticated caller. ok is false when the request
// carries no usable identity.
func GetActor(c *gin.Context) (Actor, bool) {
	userID, err := uuid.Parse(c.GetString(JWTUserIDKey))
	if err != nil {
		return Actor{}, false
	}
	actor := Actor{UserID: userID, Role: identity.Role(c.GetString(JWTRoleKey))}
	if s := c.GetString(JWTSiteIDKey); s != "" {
		if siteID, err := uuid.Parse(s); err == nil {
			actor.SiteID = &siteID
		}
	}
	return actor, true
}
