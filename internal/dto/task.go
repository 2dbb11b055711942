package dto

import (
	"time"

	"github.com/yukikurage/orgtask-api/internal/models"
)

// CreateTaskRequest is the body of POST /tasks. At most one of BrandID,
// InventoryID and EventID may be set; none means a General task.
type CreateTaskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	AssignedTo     uint64     `json:"assigned_to" binding:"required"`
	CreatedBy      uint64     `json:"created_by"`
	Type           *string    `json:"type"`
	BrandID        *uint64    `json:"brand_id"`
	InventoryID    *uint64    `json:"inventory_id"`
	EventID        *uint64    `json:"event_id"`
	ContributorIDs []uint64   `json:"contributor_ids"`
}

// UpdateTaskRequest is the body of PATCH /tasks/:id. Omitted fields are left
// unchanged. Any subject field replaces the task's subject.
type UpdateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Status         *string    `json:"status"`
	AssignedTo     *uint64    `json:"assigned_to"`
	CreatedBy      *uint64    `json:"created_by"`
	Type           *string    `json:"type"`
	BrandID        *uint64    `json:"brand_id"`
	InventoryID    *uint64    `json:"inventory_id"`
	EventID        *uint64    `json:"event_id"`
	ContributorIDs []uint64   `json:"contributor_ids"`
}

// HasSubject reports whether the request touches the task's subject.
func (r UpdateTaskRequest) HasSubject() bool {
	return r.Type != nil || r.BrandID != nil || r.InventoryID != nil || r.EventID != nil
}

// ContributorsRequest is the body of POST /tasks/:id/contributors.
type ContributorsRequest struct {
	ContributorIDs []uint64 `json:"contributor_ids" binding:"required"`
}

// ListTasksQuery selects one of the actor relative task lists.
type ListTasksQuery struct {
	Kind      string `form:"type"`
	Completed *bool  `form:"completed"`
}

// FilterTasksQuery holds the filters of GET /tasks/filter.
type FilterTasksQuery struct {
	Type          string  `form:"type"`
	AssignedBy    *uint64 `form:"assignedBy"`
	AssignedTo    *uint64 `form:"assignedTo"`
	Team          *uint64 `form:"teamOwner"` // team id, as listed in the teams facet
	DueDatePassed bool    `form:"dueDatePassed"`
	BrandName     string  `form:"brandName"`
	InventoryName string  `form:"inventoryName"`
	EventName     string  `form:"eventName"`
	Status        string  `form:"status"`
	SortBy        string  `form:"sortBy"`
	SortOrder     string  `form:"sortOrder"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        models.TaskType   `json:"type"`
	BrandID     *uint64           `json:"brand_id,omitempty"`
	InventoryID *uint64           `json:"inventory_id,omitempty"`
	EventID     *uint64           `json:"event_id,omitempty"`
	Status      models.TaskStatus `json:"status"`
	AssignedTo  uint64            `json:"assigned_to"`
	CreatedBy   uint64            `json:"created_by"`
	DueDate     time.Time         `json:"due_date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO. The subject id is reported
// under the key of its type.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Type:        task.Type,
		Status:      task.Status,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	switch task.Type {
	case models.TaskTypeBrand:
		dto.BrandID = task.SubjectID
	case models.TaskTypeInventory:
		dto.InventoryID = task.SubjectID
	case models.TaskTypeEvent:
		dto.EventID = task.SubjectID
	}
	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
