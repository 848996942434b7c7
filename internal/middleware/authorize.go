package middleware

import (
	"net/http"

	autherrors "github.com/LamineOzilJr/memoire-master2/internal/auth/errors"
	"github.com/LamineOzilJr/memoire-master2/internal/shared/response"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// Authorize checks the actor's role against the casbin policy for one
// resource/action pair. The policy gates route access by role; request
// ownership and stage fit stay in the services.
func Authorize(enforcer *casbin.Enforcer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := enforcer.Enforce(role, resource, action)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
			c.Abort()
			return
		}
		if !allowed {
			errObj := autherrors.ErrForbidden
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
