package repository

import (
	"context"
	"time"

	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// UpdatePending writes the selected columns only while the stored task is
	// still Pending. It reports false when no row matched.
	UpdatePending(ctx context.Context, task *models.Task, columns ...string) (bool, error)

	// Delete deletes a task with its contributions, history and comments, and
	// detaches its notifications
	Delete(ctx context.Context, id uint64) error

	// List retrieves tasks with filtering, sorting and pagination
	List(ctx context.Context, filter TaskFilter, page utils.PaginationParams) ([]models.Task, int64, error)

	// Facets counts the filtered tasks per related user, team and subject
	Facets(ctx context.Context, filter TaskFilter) (*TaskFacets, error)

	// Assignees returns a page of the users any task is assigned to
	Assignees(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error)

	// Creators returns a page of the users that created any task
	Creators(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error)

	// CountCreated counts tasks created in [from, to), optionally restricted to a status
	CountCreated(ctx context.Context, from, to time.Time, status *models.TaskStatus) (int64, error)

	// CountOverdue counts pending tasks whose due date is before at
	CountOverdue(ctx context.Context, at time.Time) (int64, error)
}

// TaskFilter holds filtering options for listing tasks. Every set field
// narrows the result.
type TaskFilter struct {
	Type          *models.TaskType
	Status        *models.TaskStatus
	AssignedTo    *uint64
	CreatedBy     *uint64
	AssigneeTeam  *uint64 // assignee is a member of this team
	DueBefore     *time.Time
	BrandName     string
	InventoryName string
	EventName     string
	SortBy        string
	SortOrder     string
}

// FacetCount is the number of filtered tasks that reference one record.
type FacetCount struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// TaskFacets groups FacetCount rows per related entity.
type TaskFacets struct {
	Assignees   []FacetCount `json:"assignees"`
	Creators    []FacetCount `json:"creators"`
	Teams       []FacetCount `json:"teams"`
	Brands      []FacetCount `json:"brands"`
	Inventories []FacetCount `json:"inventories"`
	Events      []FacetCount `json:"events"`
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateWithTeam creates a user and the team they own within a single
	// transaction, then links the user to that team.
	CreateWithTeam(ctx context.Context, user *models.User) error

	// Update saves all user fields. When createTeam is set a team owned by the
	// user is created in the same transaction.
	Update(ctx context.Context, user *models.User, createTeam bool) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByIDs returns the users that exist among ids
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Exists reports whether a user with id exists
	Exists(ctx context.Context, id uint64) (bool, error)

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)

	// ChildIDs returns the ids of the direct children of id
	ChildIDs(ctx context.Context, id uint64) ([]uint64, error)

	// List returns every user ordered by id
	List(ctx context.Context) ([]models.User, error)

	// DeleteAndReparent moves the children of id under newParent and deletes
	// the user within a single transaction.
	DeleteAndReparent(ctx context.Context, id uint64, newParent *uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// FindByID finds a team by ID
	FindByID(ctx context.Context, id uint64) (*models.Team, error)

	// FindByOwner finds the team owned by a user
	FindByOwner(ctx context.Context, ownerID uint64) (*models.Team, error)

	// Count returns the number of teams, which equals the number of TO holders
	Count(ctx context.Context) (int64, error)

	// List returns a page of teams
	List(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error)
}

// ContributionRepository defines the interface for contribution data access
type ContributionRepository interface {
	// UserIDsByTask returns the contributor ids of a task
	UserIDsByTask(ctx context.Context, taskID uint64) ([]uint64, error)

	// CreateBatch inserts contributions, skipping pairs that already exist
	CreateBatch(ctx context.Context, contributions []models.Contribution) error

	// Find finds a specific contribution
	Find(ctx context.Context, userID, taskID uint64) (*models.Contribution, error)

	// Delete removes a contribution
	Delete(ctx context.Context, userID, taskID uint64) error
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// UnreadRecipients returns which of recipientIDs already hold an unread
	// notification with message for the task
	UnreadRecipients(ctx context.Context, message string, taskID *uint64, recipientIDs []uint64) ([]uint64, error)

	// CreateBatch saves notifications in one statement
	CreateBatch(ctx context.Context, notifications []models.Notification) error

	// ListUnread returns a page of unread notifications, newest first
	ListUnread(ctx context.Context, recipientID uint64, page utils.PaginationParams) ([]models.Notification, int64, error)

	// MarkRead flags notifications as read
	MarkRead(ctx context.Context, ids []uint64) error
}

// HistoryRepository defines the interface for task history access. History
// is append-only.
type HistoryRepository interface {
	Create(ctx context.Context, entry *models.TaskHistory) error
	ListByTask(ctx context.Context, taskID uint64, page utils.PaginationParams) ([]models.TaskHistory, int64, error)
}

// CommentRepository defines the interface for task comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.TaskComment) error
	FindByID(ctx context.Context, id uint64) (*models.TaskComment, error)
	Update(ctx context.Context, comment *models.TaskComment) error
	Delete(ctx context.Context, id uint64) error
	ListByTask(ctx context.Context, taskID uint64, page utils.PaginationParams) ([]models.TaskComment, int64, error)
}

// FcmTokenRepository defines the interface for push token data access
type FcmTokenRepository interface {
	// Save stores a token for a user; saving a known token is a no-op
	Save(ctx context.Context, token *models.FcmToken) error

	// TokensByUser returns the device tokens of a user
	TokensByUser(ctx context.Context, userID uint64) ([]string, error)
}

// CatalogRepository defines the interface for brand, inventory and event access
type CatalogRepository interface {
	// SubjectExists reports whether the record a subject points to exists
	SubjectExists(ctx context.Context, subject models.Subject) (bool, error)

	// NameTaken reports whether a record of kind other than except already
	// uses name. except 0 checks every record.
	NameTaken(ctx context.Context, kind models.TaskType, name string, except uint64) (bool, error)

	CreateBrand(ctx context.Context, brand *models.Brand) error
	CreateInventory(ctx context.Context, inventory *models.Inventory) error
	CreateEvent(ctx context.Context, event *models.Event) error

	ListBrands(ctx context.Context, page utils.PaginationParams) ([]models.Brand, int64, error)
	ListInventories(ctx context.Context, page utils.PaginationParams) ([]models.Inventory, int64, error)
	ListEvents(ctx context.Context, page utils.PaginationParams) ([]models.Event, int64, error)

	FindBrand(ctx context.Context, id uint64) (*models.Brand, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) error

	// DeleteBrand removes a brand with its contacts and ownerships. It fails
	// with ErrBrandInUse while a task is about the brand.
	DeleteBrand(ctx context.Context, id uint64) error

	CreateContact(ctx context.Context, contact *models.BrandContact) error
	FindContact(ctx context.Context, brandID, contactID uint64) (*models.BrandContact, error)
	UpdateContact(ctx context.Context, contact *models.BrandContact) error
	ListContacts(ctx context.Context, brandID uint64) ([]models.BrandContact, error)

	CreateOwnership(ctx context.Context, ownership *models.BrandOwnership) error
	OwnershipExists(ctx context.Context, brandID, boUserID uint64) (bool, error)

	// OwnerIDs returns the BO users owning a brand, ordered by id
	OwnerIDs(ctx context.Context, brandID uint64) ([]uint64, error)
}

// Repositories bundles every repository backed by one database handle.
type Repositories struct {
	Users         UserRepository
	Teams         TeamRepository
	Tasks         TaskRepository
	Contributions ContributionRepository
	Notifications NotificationRepository
	History       HistoryRepository
	Comments      CommentRepository
	FcmTokens     FcmTokenRepository
	Catalog       CatalogRepository
}
