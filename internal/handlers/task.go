package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/dto"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/services"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

type TaskHandler struct {
	tasks         *services.TaskService
	contributions *services.ContributionService
}

func NewTaskHandler(tasks *services.TaskService, contributions *services.ContributionService) *TaskHandler {
	return &TaskHandler{
		tasks:         tasks,
		contributions: contributions,
	}
}

// taskResultPayload renders the outcome of a task mutation
func taskResultPayload(result *services.TaskResult) gin.H {
	payload := gin.H{
		"task":          dto.ToTaskDTO(*result.Task),
		"history":       result.History,
		"notifications": result.Notifications,
	}
	if len(result.Contributors) > 0 {
		payload["contributors"] = result.Contributors
	}
	return payload
}

// CreateTask creates a task assigned to another user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   req.CreatedBy,
		Subject: services.SubjectInput{
			Type:        req.Type,
			BrandID:     req.BrandID,
			InventoryID: req.InventoryID,
			EventID:     req.EventID,
		},
		ContributorIDs: req.ContributorIDs,
	}, actor.ID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, result.Status, "Task created successfully", taskResultPayload(result))
}

// UpdateTask completes, reassigns or edits a task depending on the body
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		TaskID:         taskID,
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		Status:         req.Status,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      req.CreatedBy,
		ContributorIDs: req.ContributorIDs,
	}
	if req.HasSubject() {
		input.Subject = &services.SubjectInput{
			Type:        req.Type,
			BrandID:     req.BrandID,
			InventoryID: req.InventoryID,
			EventID:     req.EventID,
		}
	}

	result, err := h.tasks.UpdateTask(c.Request.Context(), input, actor)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	message := "Task updated successfully"
	if result.Status == http.StatusCreated {
		message = "Task completed successfully"
	}
	apierrors.Respond(c, result.Status, message, taskResultPayload(result))
}

// DeleteTask deletes a task created by the current user
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(c.Request.Context(), taskID, actor.ID); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// GetTask returns a task with its users resolved
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	details, err := h.tasks.GetTask(c.Request.Context(), taskID)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Task retrieved successfully", gin.H{
		"task":         dto.ToTaskDTO(*details.Task),
		"assignee":     details.Assignee,
		"creator":      details.Creator,
		"contributors": details.Contributors,
	})
}

// ListTasks returns the tasks of one list relative to the current user
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var query dto.ListTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.RespondBadRequest(c, "Invalid query parameters")
		return
	}
	if query.Kind == "" {
		query.Kind = string(services.ListAllTasks)
	}
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.tasks.ListTasks(c.Request.Context(), services.ListTasksInput{
		Kind:      services.ListKind(query.Kind),
		Actor:     actor,
		Completed: query.Completed,
		Page:      params,
	})
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Tasks retrieved successfully", gin.H{
		"tasks":      dto.ToTaskDTOs(tasks),
		"pagination": params.Response(total),
	})
}

// FilterTasks lists tasks matching the query filters with per entity counts
func (h *TaskHandler) FilterTasks(c *gin.Context) {
	var query dto.FilterTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.RespondBadRequest(c, "Invalid query parameters")
		return
	}
	params := utils.GetPaginationParams(c)

	result, err := h.tasks.FilterTasks(c.Request.Context(), services.FilterTasksInput{
		Type:          query.Type,
		AssignedBy:    query.AssignedBy,
		AssignedTo:    query.AssignedTo,
		Team:          query.Team,
		DueDatePassed: query.DueDatePassed,
		BrandName:     query.BrandName,
		InventoryName: query.InventoryName,
		EventName:     query.EventName,
		Status:        query.Status,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	}, params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Tasks retrieved successfully", gin.H{
		"tasks":      dto.ToTaskDTOs(result.Tasks),
		"viewable":   result.Facets,
		"pagination": params.Response(result.Total),
	})
}

// GetHistory returns the audit trail of a task
func (h *TaskHandler) GetHistory(c *gin.Context) {
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	entries, total, err := h.tasks.GetHistory(c.Request.Context(), taskID, params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Task history retrieved successfully", gin.H{
		"history":    entries,
		"pagination": params.Response(total),
	})
}

// AddContributors adds contributors to a pending task
func (h *TaskHandler) AddContributors(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}
	var req dto.ContributorsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.tasks.AddContributors(c.Request.Context(), taskID, req.ContributorIDs, actor)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, result.Status, "Contributors added successfully", taskResultPayload(result))
}

// RemoveContribution removes a contributor; only the task creator may do so
func (h *TaskHandler) RemoveContribution(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}
	userID, ok := paramID(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.contributions.Remove(c.Request.Context(), userID, taskID, actor.ID); err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, "Contribution removed successfully", nil)
}

// AssignedToUsers lists the users holding at least one task
func (h *TaskHandler) AssignedToUsers(c *gin.Context) {
	h.respondUsers(c, h.tasks.AssignedToUsers, "Assigned users retrieved successfully")
}

// AssignedByUsers lists the users that created at least one task
func (h *TaskHandler) AssignedByUsers(c *gin.Context) {
	h.respondUsers(c, h.tasks.AssignedByUsers, "Assigning users retrieved successfully")
}

func (h *TaskHandler) respondUsers(c *gin.Context, list func(context.Context, utils.PaginationParams) ([]models.User, int64, error), message string) {
	params := utils.GetPaginationParams(c)
	users, total, err := list(c.Request.Context(), params)
	if err != nil {
		apierrors.HandleError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, message, gin.H{
		"users":      dto.ToUserDTOs(users),
		"pagination": params.Response(total),
	})
}
