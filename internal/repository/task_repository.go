package repository

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/orgtask-api/internal/database"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// sortColumns maps accepted sortBy values to columns.
var sortColumns = map[string]string{
	"title":      "tasks.title",
	"due_date":   "tasks.due_date",
	"created_at": "tasks.created_at",
	"status":     "tasks.status",
	"type":       "tasks.type",
}

// IsSortable reports whether tasks can be sorted by field.
func IsSortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdatePending updates the selected columns guarded by status = Pending
func (r *GormTaskRepository) UpdatePending(ctx context.Context, task *models.Task, columns ...string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(task).
		Where("status = ?", models.TaskStatusPending).
		Select(columns).
		Updates(task)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete deletes a task and everything it owns in a transaction
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Contribution{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).
			Where("task_id = ?", id).
			Update("task_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// filtered applies every condition of filter. Conditions are written as
// subqueries on tasks so callers can add their own joins.
func (r *GormTaskRepository) filtered(ctx context.Context, filter TaskFilter) *gorm.DB {
	db := r.db.WithContext(ctx)
	query := db.Model(&models.Task{})

	if filter.Type != nil {
		query = query.Where("tasks.type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.CreatedBy != nil {
		query = query.Where("tasks.created_by = ?", *filter.CreatedBy)
	}
	if filter.AssigneeTeam != nil {
		members := db.Model(&models.User{}).Select("id").Where("team_id = ?", *filter.AssigneeTeam)
		query = query.Where("tasks.assigned_to IN (?)", members)
	}
	if filter.DueBefore != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueBefore)
	}
	if filter.BrandName != "" {
		brands := db.Model(&models.Brand{}).Select("id").
			Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.BrandName)+"%")
		query = query.Where("tasks.type = ? AND tasks.subject_id IN (?)", models.TaskTypeBrand, brands)
	}
	if name := strings.TrimSpace(filter.InventoryName); name != "" {
		inventories := db.Model(&models.Inventory{}).Select("id").
			Where("LOWER(TRIM(name)) LIKE ?", "%"+strings.ToLower(name)+"%")
		query = query.Where("tasks.type = ? AND tasks.subject_id IN (?)", models.TaskTypeInventory, inventories)
	}
	if filter.EventName != "" {
		events := db.Model(&models.Event{}).Select("id").
			Where("name LIKE ?", "%"+filter.EventName+"%")
		query = query.Where("tasks.type = ? AND tasks.subject_id IN (?)", models.TaskTypeEvent, events)
	}

	return query
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter, page utils.PaginationParams) ([]models.Task, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.filtered(ctx, filter)
	if column, ok := sortColumns[filter.SortBy]; ok {
		order := "ASC"
		if strings.EqualFold(filter.SortOrder, "DESC") {
			order = "DESC"
		}
		listQuery = listQuery.Order(column + " " + order)
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}
	listQuery = listQuery.Order("tasks.id DESC")

	tasks := []models.Task{}
	if err := listQuery.Scopes(database.Paginate(page)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Facets counts the filtered set per related record. Each facet is an
// independent grouped query.
func (r *GormTaskRepository) Facets(ctx context.Context, filter TaskFilter) (*TaskFacets, error) {
	facets := &TaskFacets{}
	g, gctx := errgroup.WithContext(ctx)

	group := func(dest *[]FacetCount, selectID, selectName string, joins ...string) {
		g.Go(func() error {
			rows := []FacetCount{}
			query := r.filtered(gctx, filter)
			for _, j := range joins {
				query = query.Joins(j)
			}
			err := query.
				Select(selectID + " AS id, " + selectName + " AS name, COUNT(*) AS count").
				Group(selectID + ", " + selectName).
				Order(selectID).
				Scan(&rows).Error
			*dest = rows
			return err
		})
	}

	group(&facets.Assignees, "assignees.id", "assignees.name",
		"JOIN users AS assignees ON assignees.id = tasks.assigned_to")
	group(&facets.Creators, "creators.id", "creators.name",
		"JOIN users AS creators ON creators.id = tasks.created_by")
	group(&facets.Teams, "teams.id", "owners.name",
		"JOIN users AS members ON members.id = tasks.assigned_to",
		"JOIN teams ON teams.id = members.team_id",
		"JOIN users AS owners ON owners.id = teams.owner_id")
	group(&facets.Brands, "brands.id", "brands.name",
		"JOIN brands ON brands.id = tasks.subject_id AND tasks.type = 'Brand'")
	group(&facets.Inventories, "inventories.id", "inventories.name",
		"JOIN inventories ON inventories.id = tasks.subject_id AND tasks.type = 'Inventory'")
	group(&facets.Events, "events.id", "events.name",
		"JOIN events ON events.id = tasks.subject_id AND tasks.type = 'Event'")

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return facets, nil
}

// CountCreated counts tasks created in [from, to)
func (r *GormTaskRepository) Assignees(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	return r.referencedUsers(ctx, "assigned_to", page)
}

func (r *GormTaskRepository) Creators(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	return r.referencedUsers(ctx, "created_by", page)
}

// referencedUsers pages the distinct users named by a user column of tasks.
func (r *GormTaskRepository) referencedUsers(ctx context.Context, column string, page utils.PaginationParams) ([]models.User, int64, error) {
	ids := r.db.Model(&models.Task{}).Distinct(column)
	return listPage[models.User](r.db.WithContext(ctx).Where("id IN (?)", ids).Order("id"), page)
}

func (r *GormTaskRepository) CountCreated(ctx context.Context, from, to time.Time, status *models.TaskStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountOverdue counts pending tasks due before at
func (r *GormTaskRepository) CountOverdue(ctx context.Context, at time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("status = ? AND due_date < ?", models.TaskStatusPending, at).
		Count(&count).Error
	return count, err
}
