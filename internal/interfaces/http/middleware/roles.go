package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"github.com/sitestock/backend/internal/interfaces/http/dto"
)

// RequireRoles admits only callers holding one of roles. Admin is always
// admitted.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	allowed := make(map[identity.Role]struct{}, len(roles)+1)
	allowed[identity.RoleAdmin] = struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(logger.GinRequestIDKey)))
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Role "+actor.Role.String()+" may not perform this action", c.GetString(logger.GinRequestIDKey)))
			return
		}
		c.Next()
	}
}
