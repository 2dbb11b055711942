package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/logging"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound          = apierrors.NotFound("Task not found.")
	ErrTaskCompleted         = apierrors.BadRequest("Cannot update a completed task.")
	ErrTaskAccessDenied      = apierrors.Unauthorized("You are not authorized to update this task.")
	ErrOnlyAssigneeCompletes = apierrors.Unauthorized("Only the assigned user can complete this task.")
	ErrOnlyCreatorReassigns  = apierrors.Unauthorized("Only the task creator can reassign this task.")
	ErrOnlyCreatorDeletes    = apierrors.Unauthorized("Only the task creator can delete this task.")
	ErrOnlyCreatorHandsOver  = apierrors.Unauthorized("Only the task creator or an admin can change the creator of this task.")
	ErrTitleRequired         = apierrors.BadRequest("Title is required.")
	ErrContributorsRequired  = apierrors.BadRequest("At least one contributor is required.")
	ErrDueDateRequired       = apierrors.BadRequest("Due date is required.")
	ErrInvalidTaskStatus     = apierrors.BadRequest("Invalid task status.")
	ErrInvalidTaskType       = apierrors.BadRequest("Invalid task type.")
	ErrMultipleSubjects      = apierrors.BadRequest("Only one of brand, inventory or event can be set.")
	ErrAssigneeNotFound      = apierrors.NotFound("Assigned user not found.")
	ErrCreatorNotFound       = apierrors.NotFound("Creator not found.")
	ErrBrandNotFound         = apierrors.NotFound("Brand not found")
	ErrInventoryNotFound     = apierrors.NotFound("Inventory not found")
	ErrEventNotFound         = apierrors.NotFound("Event not found")
	ErrTeamTasksRequireTO    = apierrors.Unauthorized("only TO can view the team tasks")
	ErrNoOwnedTeam           = apierrors.Forbidden("admin can't have the team task")
	ErrInvalidListKind       = apierrors.BadRequest("Invalid task type filter.")
	ErrInvalidSortField      = apierrors.BadRequest("Invalid sort field.")
	ErrInvalidSortOrder      = apierrors.BadRequest("Sort order must be ASC or DESC.")
)

const (
	msgAssigned    = "You have been assigned a new task: %s"
	msgContributed = "You have been contributed a new task: %s"
	msgUpdated     = "Your task has been updated: %s"
	msgRemoved     = "You have been removed from the task: %s"
)

// ListKind selects which tasks ListTasks returns relative to the actor.
type ListKind string

const (
	ListAllTasks          ListKind = "AllTasks"
	ListYourTasks         ListKind = "YourTasks"
	ListTeamTasks         ListKind = "TeamTasks"
	ListDelegatedToOthers ListKind = "DelegatedToOthers"
)

// TaskService decides which task mutations an actor may perform and drives
// their side effects.
type TaskService struct {
	taskRepo      repository.TaskRepository
	userRepo      repository.UserRepository
	teamRepo      repository.TeamRepository
	catalogRepo   repository.CatalogRepository
	historyRepo   repository.HistoryRepository
	contributions *ContributionService
	dispatcher    *Dispatcher
	access        *accessChecker
	now           func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(repos *repository.Repositories, contributions *ContributionService, dispatcher *Dispatcher) *TaskService {
	return &TaskService{
		taskRepo:      repos.Tasks,
		userRepo:      repos.Users,
		teamRepo:      repos.Teams,
		catalogRepo:   repos.Catalog,
		historyRepo:   repos.History,
		contributions: contributions,
		dispatcher:    dispatcher,
		access: &accessChecker{
			userRepo:         repos.Users,
			teamRepo:         repos.Teams,
			contributionRepo: repos.Contributions,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SubjectInput carries the optional subject references of a request.
type SubjectInput struct {
	Type        *string
	BrandID     *uint64
	InventoryID *uint64
	EventID     *uint64
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	DueDate        *time.Time
	AssignedTo     uint64
	CreatedBy      uint64 // defaults to the actor
	Subject        SubjectInput
	ContributorIDs []uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged.
type UpdateTaskInput struct {
	TaskID         uint64
	Title          *string
	Description    *string
	DueDate        *time.Time
	Status         *string
	AssignedTo     *uint64
	CreatedBy      *uint64
	Subject        *SubjectInput
	ContributorIDs []uint64
}

// TaskResult is the outcome of a task mutation. Status is the envelope status
// the caller should report.
type TaskResult struct {
	Status        int
	Task          *models.Task
	History       *models.TaskHistory
	Notifications []models.Notification
	Contributors  []uint64
}

// resolveSubject turns the submitted references into a tagged subject.
func resolveSubject(in SubjectInput) (models.Subject, error) {
	subject := models.GeneralSubject()
	refs := 0
	if in.BrandID != nil {
		subject = models.NewSubject(models.TaskTypeBrand, *in.BrandID)
		refs++
	}
	if in.InventoryID != nil {
		subject = models.NewSubject(models.TaskTypeInventory, *in.InventoryID)
		refs++
	}
	if in.EventID != nil {
		subject = models.NewSubject(models.TaskTypeEvent, *in.EventID)
		refs++
	}
	if refs > 1 {
		return models.Subject{}, ErrMultipleSubjects
	}

	if in.Type != nil && *in.Type != "" {
		t := models.TaskType(*in.Type)
		if !t.Valid() {
			return models.Subject{}, ErrInvalidTaskType
		}
		if t != subject.Type {
			return models.Subject{}, apierrors.BadRequest("Task type %s does not match the referenced record.", t)
		}
	}
	return subject, nil
}

func subjectNotFound(t models.TaskType) error {
	switch t {
	case models.TaskTypeBrand:
		return ErrBrandNotFound
	case models.TaskTypeInventory:
		return ErrInventoryNotFound
	default:
		return ErrEventNotFound
	}
}

// requireUser fails with notFound when the user does not exist.
func (s *TaskService) requireUser(ctx context.Context, id uint64, notFound error) error {
	ok, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !ok {
		return notFound
	}
	return nil
}

func (s *TaskService) requireSubject(ctx context.Context, subject models.Subject) error {
	ok, err := s.catalogRepo.SubjectExists(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", strings.ToLower(string(subject.Type)), err)
	}
	if !ok {
		return subjectNotFound(subject.Type)
	}
	return nil
}

func (s *TaskService) findTask(ctx context.Context, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask validates and persists a task, records its contributors, notifies
// the assignee and logs TASK_CREATED.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput, actorID uint64) (*TaskResult, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.DueDate == nil || input.DueDate.IsZero() {
		return nil, ErrDueDateRequired
	}
	subject, err := resolveSubject(input.Subject)
	if err != nil {
		return nil, err
	}

	creatorID := input.CreatedBy
	if creatorID == 0 {
		creatorID = actorID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.requireUser(gctx, input.AssignedTo, ErrAssigneeNotFound) })
	g.Go(func() error { return s.requireUser(gctx, creatorID, ErrCreatorNotFound) })
	if subject.Type != models.TaskTypeGeneral {
		g.Go(func() error { return s.requireSubject(gctx, subject) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contributors, err := s.contributions.Plan(ctx, input.ContributorIDs, 0)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusPending,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   creatorID,
		DueDate:     input.DueDate.UTC(),
	}
	task.SetSubject(subject)
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.contributions.Apply(ctx, contributors, task.ID); err != nil {
		return nil, err
	}

	result := &TaskResult{Status: http.StatusCreated, Task: task, Contributors: contributors}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		notifications, err := s.dispatcher.Notify(gctx, NotifyInput{
			Message:            fmt.Sprintf(msgAssigned, task.Title),
			TaskID:             &task.ID,
			RecipientID:        task.AssignedTo,
			ContributorIDs:     contributors,
			ContributorMessage: fmt.Sprintf(msgContributed, task.Title),
		})
		result.Notifications = notifications
		return err
	})
	g.Go(func() error {
		details := fmt.Sprintf("Task %q created by user %d and assigned to user %d", task.Title, creatorID, task.AssignedTo)
		entry, err := s.dispatcher.LogHistory(gctx, task.ID, models.ActionTaskCreated, details, actorID)
		result.History = entry
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":     task.ID,
		"actor_id":    actorID,
		"assigned_to": task.AssignedTo,
		"type":        task.Type,
	}).Info("task created")

	return result, nil
}

// UpdateTask applies one of three transitions to a pending task: completion
// by the assignee, reassignment by the creator, or a general update.
func (s *TaskService) UpdateTask(ctx context.Context, input UpdateTaskInput, actor Actor) (*TaskResult, error) {
	task, err := s.findTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted() {
		return nil, ErrTaskCompleted
	}

	allowed, err := s.access.Allows(ctx, taskEditRule, actor, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTaskAccessDenied
	}

	var status *models.TaskStatus
	if input.Status != nil {
		st := models.TaskStatus(*input.Status)
		if !st.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		status = &st
	}

	var subject *models.Subject
	if input.Subject != nil {
		resolved, err := resolveSubject(*input.Subject)
		if err != nil {
			return nil, err
		}
		subject = &resolved
	}

	g, gctx := errgroup.WithContext(ctx)
	if input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo {
		g.Go(func() error { return s.requireUser(gctx, *input.AssignedTo, ErrAssigneeNotFound) })
	}
	if input.CreatedBy != nil && *input.CreatedBy != task.CreatedBy {
		g.Go(func() error { return s.requireUser(gctx, *input.CreatedBy, ErrCreatorNotFound) })
	}
	if subject != nil && subject.Type != models.TaskTypeGeneral {
		g.Go(func() error { return s.requireSubject(gctx, *subject) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completing := status != nil && *status == models.TaskStatusCompleted
	reassigning := !completing && input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo

	switch {
	case completing:
		if actor.ID != task.AssignedTo {
			return nil, ErrOnlyAssigneeCompletes
		}
	case reassigning:
		if actor.ID != task.CreatedBy {
			return nil, ErrOnlyCreatorReassigns
		}
	}
	// only the creator or an ADMIN may hand the task to another creator
	if input.CreatedBy != nil && *input.CreatedBy != task.CreatedBy &&
		actor.ID != task.CreatedBy && !models.HasRole(actor.Roles, models.RoleAdmin) {
		return nil, ErrOnlyCreatorHandsOver
	}

	var contributors []uint64
	if len(input.ContributorIDs) > 0 {
		contributors, err = s.contributions.Plan(ctx, input.ContributorIDs, task.ID)
		if err != nil {
			return nil, err
		}
	}

	previousAssignee := task.AssignedTo
	updated := *task
	columns := []string{"updated_at"}
	changed := []string{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		updated.Title = title
		columns = append(columns, "title")
		changed = append(changed, "title")
	}
	if input.Description != nil {
		updated.Description = *input.Description
		columns = append(columns, "description")
		changed = append(changed, "description")
	}
	if input.DueDate != nil {
		updated.DueDate = input.DueDate.UTC()
		columns = append(columns, "due_date")
		changed = append(changed, "due_date")
	}
	if input.CreatedBy != nil {
		updated.CreatedBy = *input.CreatedBy
		columns = append(columns, "created_by")
		changed = append(changed, "created_by")
	}
	if subject != nil {
		updated.SetSubject(*subject)
		columns = append(columns, "type", "subject_id")
		changed = append(changed, "type")
	}
	if completing {
		updated.Status = models.TaskStatusCompleted
		columns = append(columns, "status")
	} else if reassigning {
		updated.AssignedTo = *input.AssignedTo
		columns = append(columns, "assigned_to")
	}

	ok, err := s.taskRepo.UpdatePending(ctx, &updated, columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !ok {
		return nil, ErrTaskCompleted
	}

	if err := s.contributions.Apply(ctx, contributors, task.ID); err != nil {
		return nil, err
	}

	result := &TaskResult{Status: http.StatusOK, Task: &updated, Contributors: contributors}
	var action models.HistoryAction
	var details string
	var notices []NotifyInput

	switch {
	case completing:
		result.Status = http.StatusCreated
		action = models.ActionTaskCompleted
		details = fmt.Sprintf("Task %q marked as completed by user %d", updated.Title, actor.ID)
	case reassigning:
		action = models.ActionTaskReassigned
		details = fmt.Sprintf("Task %q reassigned from user %d to user %d", updated.Title, previousAssignee, updated.AssignedTo)
		notices = []NotifyInput{
			{
				Message:            fmt.Sprintf(msgAssigned, updated.Title),
				TaskID:             &updated.ID,
				RecipientID:        updated.AssignedTo,
				ContributorIDs:     contributors,
				ContributorMessage: fmt.Sprintf(msgContributed, updated.Title),
			},
			{
				Message:     fmt.Sprintf(msgRemoved, updated.Title),
				TaskID:      &updated.ID,
				RecipientID: previousAssignee,
			},
		}
	default:
		action = models.ActionTaskUpdated
		details = fmt.Sprintf("Task %q updated", updated.Title)
		if len(changed) > 0 {
			details += ": " + strings.Join(changed, ", ")
		}
		notices = []NotifyInput{{
			Message:            fmt.Sprintf(msgUpdated, updated.Title),
			TaskID:             &updated.ID,
			RecipientID:        updated.AssignedTo,
			ContributorIDs:     contributors,
			ContributorMessage: fmt.Sprintf(msgContributed, updated.Title),
		}}
	}

	sent := make([][]models.Notification, len(notices))
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		entry, err := s.dispatcher.LogHistory(gctx, updated.ID, action, details, actor.ID)
		result.History = entry
		return err
	})
	for i, notice := range notices {
		i, notice := i, notice
		g.Go(func() error {
			notifications, err := s.dispatcher.Notify(gctx, notice)
			sent[i] = notifications
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Notifications = []models.Notification{}
	for _, batch := range sent {
		result.Notifications = append(result.Notifications, batch...)
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":  updated.ID,
		"actor_id": actor.ID,
		"action":   action,
	}).Info("task updated")

	return result, nil
}

// AddContributors records new contributors on a pending task the actor may
// edit, notifies them and logs the change.
func (s *TaskService) AddContributors(ctx context.Context, taskID uint64, ids []uint64, actor Actor) (*TaskResult, error) {
	if len(ids) == 0 {
		return nil, ErrContributorsRequired
	}
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted() {
		return nil, ErrTaskCompleted
	}
	allowed, err := s.access.Allows(ctx, taskEditRule, actor, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTaskAccessDenied
	}

	added, err := s.contributions.Reconcile(ctx, ids, task.ID)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return nil, ErrContributorsRequired
	}

	result := &TaskResult{Status: http.StatusOK, Task: task, Contributors: added}
	names := make([]string, len(added))
	for i, id := range added {
		names[i] = strconv.FormatUint(id, 10)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		details := fmt.Sprintf("Task %q contributors added: %s", task.Title, strings.Join(names, ", "))
		entry, err := s.dispatcher.LogHistory(gctx, task.ID, models.ActionTaskUpdated, details, actor.ID)
		result.History = entry
		return err
	})
	g.Go(func() error {
		notifications, err := s.dispatcher.Notify(gctx, NotifyInput{
			Message:        fmt.Sprintf(msgContributed, task.Title),
			TaskID:         &task.ID,
			RecipientID:    added[0],
			ContributorIDs: added[1:],
		})
		result.Notifications = notifications
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":  task.ID,
		"actor_id": actor.ID,
		"added":    len(added),
	}).Info("task contributors added")

	return result, nil
}

// DeleteTask deletes a task. Only its creator may do so.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != actorID {
		return ErrOnlyCreatorDeletes
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{"task_id": taskID, "actor_id": actorID}).Info("task deleted")
	return nil
}

// UserSummary is the public view of a user referenced by a task.
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDetails is a task with its references resolved.
type TaskDetails struct {
	Task         *models.Task  `json:"task"`
	Assignee     *UserSummary  `json:"assignee"`
	Creator      *UserSummary  `json:"creator"`
	Contributors []UserSummary `json:"contributors"`
}

// GetTask returns a task with its assignee, creator and contributors resolved.
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*TaskDetails, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	contributorIDs, err := s.contributions.Contributors(ctx, taskID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindByIDs(ctx, uniqueExcept(append([]uint64{task.AssignedTo, task.CreatedBy}, contributorIDs...), 0))
	if err != nil {
		return nil, fmt.Errorf("failed to find task users: %w", err)
	}
	byID := make(map[uint64]UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	details := &TaskDetails{Task: task, Contributors: []UserSummary{}}
	if u, ok := byID[task.AssignedTo]; ok {
		details.Assignee = &u
	}
	if u, ok := byID[task.CreatedBy]; ok {
		details.Creator = &u
	}
	for _, id := range contributorIDs {
		if u, ok := byID[id]; ok {
			details.Contributors = append(details.Contributors, u)
		}
	}
	return details, nil
}

// ListTasksInput selects tasks relative to the actor
type ListTasksInput struct {
	Kind      ListKind
	Actor     Actor
	Completed *bool
	Page      utils.PaginationParams
}

// ListTasks returns a page of tasks of the requested kind.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{}
	if input.Completed != nil {
		status := models.TaskStatusPending
		if *input.Completed {
			status = models.TaskStatusCompleted
		}
		filter.Status = &status
	}

	actorID := input.Actor.ID
	switch input.Kind {
	case ListAllTasks:
	case ListYourTasks:
		filter.AssignedTo = &actorID
	case ListDelegatedToOthers:
		filter.CreatedBy = &actorID
	case ListTeamTasks:
		if !models.HasRole(input.Actor.Roles, models.RoleTO) {
			return nil, 0, ErrTeamTasksRequireTO
		}
		team, err := s.teamRepo.FindByOwner(ctx, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrNoOwnedTeam
			}
			return nil, 0, fmt.Errorf("failed to find owned team: %w", err)
		}
		filter.AssigneeTeam = &team.ID
	default:
		return nil, 0, ErrInvalidListKind
	}

	tasks, total, err := s.taskRepo.List(ctx, filter, input.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// FilterTasksInput holds the optional filters of FilterTasks. Empty values
// are ignored.
type FilterTasksInput struct {
	Type          string
	AssignedBy    *uint64
	AssignedTo    *uint64
	Team          *uint64
	DueDatePassed bool
	BrandName     string
	InventoryName string
	EventName     string
	Status        string
	SortBy        string
	SortOrder     string
}

// FilterResult is a page of filtered tasks with counts over the whole
// filtered set.
type FilterResult struct {
	Tasks  []models.Task
	Total  int64
	Facets *repository.TaskFacets
}

// FilterTasks lists tasks matching every given filter.
func (s *TaskService) FilterTasks(ctx context.Context, input FilterTasksInput, page utils.PaginationParams) (*FilterResult, error) {
	filter := repository.TaskFilter{
		AssignedTo:    input.AssignedTo,
		CreatedBy:     input.AssignedBy,
		AssigneeTeam:  input.Team,
		BrandName:     strings.TrimSpace(input.BrandName),
		InventoryName: input.InventoryName,
		EventName:     strings.TrimSpace(input.EventName),
	}

	if input.Type != "" {
		t := models.TaskType(input.Type)
		if !t.Valid() {
			return nil, ErrInvalidTaskType
		}
		filter.Type = &t
	}
	if input.Status != "" {
		st := models.TaskStatus(input.Status)
		if !st.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		filter.Status = &st
	}
	if input.DueDatePassed {
		now := s.now()
		filter.DueBefore = &now
	}
	if input.SortBy != "" {
		if !repository.IsSortable(input.SortBy) {
			return nil, ErrInvalidSortField
		}
		filter.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		order := strings.ToUpper(input.SortOrder)
		if order != "ASC" && order != "DESC" {
			return nil, ErrInvalidSortOrder
		}
		filter.SortOrder = order
	}

	result := &FilterResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, total, err := s.taskRepo.List(gctx, filter, page)
		if err != nil {
			return fmt.Errorf("failed to filter tasks: %w", err)
		}
		result.Tasks, result.Total = tasks, total
		return nil
	})
	g.Go(func() error {
		facets, err := s.taskRepo.Facets(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to count task facets: %w", err)
		}
		result.Facets = facets
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetHistory returns a page of a task's history, newest first.
func (s *TaskService) GetHistory(ctx context.Context, taskID uint64, page utils.PaginationParams) ([]models.TaskHistory, int64, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, 0, err
	}

	entries, total, err := s.historyRepo.ListByTask(ctx, taskID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list task history: %w", err)
	}
	return entries, total, nil
}

// AssignedToUsers returns a page of the users that hold at least one task.
func (s *TaskService) AssignedToUsers(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.taskRepo.Assignees(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignees: %w", err)
	}
	return users, total, nil
}

// AssignedByUsers returns a page of the users that created at least one task.
func (s *TaskService) AssignedByUsers(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.taskRepo.Creators(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list task creators: %w", err)
	}
	return users, total, nil
}
