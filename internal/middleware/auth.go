package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/constants"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"gorm.io/gorm"
)

// RequireAuth checks if the user is authenticated via session and loads the
// user's current roles into the context.
func RequireAuth(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		c.Set(constants.ContextKeyUserID, session.Get(constants.ContextKeyUserID))

		userID, ok := GetUserID(c)
		if !ok {
			apierrors.RespondUnauthorized(c, "")
			c.Abort()
			return
		}

		// Roles are read on every request so that role changes apply at once
		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.RespondUnauthorized(c, "")
			} else {
				apierrors.HandleError(c, err)
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyRoles, []models.Role(user.Roles))
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetRoles retrieves the current user's roles from context
func GetRoles(c *gin.Context) []models.Role {
	roles, ok := c.Get(constants.ContextKeyRoles)
	if !ok {
		return nil
	}
	r, _ := roles.([]models.Role)
	return r
}
