package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/dto"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

// UserHandler serves the user hierarchy.
type UserHandler struct {
	hierarchy *services.HierarchyService
}

func NewUserHandler(hierarchy *services.HierarchyService) *UserHandler {
	return &UserHandler{hierarchy: hierarchy}
}

// CreateUser adds a user below an existing parent.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.hierarchy.CreateUser(c.Request.Context(), services.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Roles:       req.Roles,
		ParentID:    req.ParentID,
		TeamID:      req.TeamID,
	})
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, "User created successfully", gin.H{"user": dto.ToUserDTO(*user)})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.hierarchy.UpdateUser(c.Request.Context(), services.UpdateUserInput{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Roles:       req.Roles,
		ParentID:    req.ParentID,
		TeamID:      req.TeamID,
	})
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "User updated successfully", gin.H{"user": dto.ToUserDTO(*user)})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.hierarchy.DeleteUser(c.Request.Context(), id); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.hierarchy.GetUser(c.Request.Context(), id)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "User retrieved successfully", gin.H{"user": dto.ToUserDTO(*user)})
}

// Tree returns the whole hierarchy as nested nodes.
func (h *UserHandler) Tree(c *gin.Context) {
	tree, err := h.hierarchy.UserTree(c.Request.Context())
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "User tree retrieved successfully", gin.H{"tree": tree})
}

func (h *UserHandler) ListTeams(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	teams, total, err := h.hierarchy.ListTeams(c.Request.Context(), params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Teams retrieved successfully", gin.H{
		"teams":      teams,
		"pagination": params.Response(total),
	})
}

// SearchUser looks a user up by the email query parameter.
func (h *UserHandler) SearchUser(c *gin.Context) {
	user, err := h.hierarchy.SearchUser(c.Request.Context(), c.Query("email"))
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "User retrieved successfully", gin.H{"user": dto.ToUserDTO(*user)})
}

func (h *UserHandler) ListTOs(c *gin.Context) {
	users, err := h.hierarchy.ListTOs(c.Request.Context())
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Team owners retrieved successfully", gin.H{"users": dto.ToUserDTOs(users)})
}

// HierarchyTO returns the team owners above a user, nearest first.
func (h *UserHandler) HierarchyTO(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}

	users, err := h.hierarchy.HierarchyTO(c.Request.Context(), id)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Team owners retrieved successfully", gin.H{"users": dto.ToUserDTOs(users)})
}
