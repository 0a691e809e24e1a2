package middleware

import (
	"github.com/bugtracker-api/apperrors"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/policy"
	"github.com/bugtracker-api/utils"
	"github.com/gin-gonic/gin"
)

// RequireRoles creates a middleware that only lets identities holding one of
// roles through. It must run after the authentication gate; a request without
// an identity or without a role is denied.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			utils.RespondError(c, nil, apperrors.Unauthenticated("Authentication required"))
			return
		}

		if d := policy.RequireRole(identity, roles...); !d.Allowed {
			utils.RespondError(c, nil, apperrors.Forbidden(d.Reason))
			return
		}

		c.Next()
	}
}

// AdminMiddleware creates a middleware that ensures the user has admin role
func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}
