package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/city-intranet-api/internal/models"
	appErrors "github.com/noah-isme/city-intranet-api/pkg/errors"
	"github.com/noah-isme/city-intranet-api/pkg/response"
)

// HasRole reports whether claims carry one of roles. An empty role list
// admits any authenticated caller.
func HasRole(claims *models.JWTClaims, roles ...models.UserRole) bool {
	if claims == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	return false
}

// RequireRoles enforces role-based access control on a route. It must run
// after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !HasRole(claims, roles...) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
