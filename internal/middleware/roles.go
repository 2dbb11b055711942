package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
)

// RequireRole lets the request through when the user holds one of the
// allowed roles. It must run after RequireAuth.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			apierrors.RespondUnauthorized(c, "")
			c.Abort()
			return
		}

		if !models.HasAnyRole(GetRoles(c), allowed...) {
			apierrors.RespondForbidden(c, "You do not have permission to perform this action.")
			c.Abort()
			return
		}

		c.Next()
	}
}
