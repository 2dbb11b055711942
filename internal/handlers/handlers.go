package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/middleware"
	"github.com/yukikurage/orgtask-api/internal/services"
)

// actorFrom builds the service actor from the authenticated context. It
// answers 401 itself when there is none.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.RespondUnauthorized(c, "Not authenticated")
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Roles: middleware.GetRoles(c)}, true
}

// paramID parses a numeric path parameter, answering 400 when it is invalid.
func paramID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.RespondBadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 when it is malformed.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.RespondBadRequest(c, "Invalid request body")
		return false
	}
	return true
}
