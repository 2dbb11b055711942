package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrContributorsExist    = apierrors.Conflict("All contributed users already exist for this task.")
	ErrContributionNotFound = apierrors.NotFound("Contribution not found.")
	ErrNotContributionOwner = apierrors.Unauthorized("Only the task creator can remove a contribution.")
)

// ContributionService maintains the set of users contributing to a task.
type ContributionService struct {
	userRepo         repository.UserRepository
	taskRepo         repository.TaskRepository
	contributionRepo repository.ContributionRepository
}

// NewContributionService creates a new ContributionService
func NewContributionService(
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	contributionRepo repository.ContributionRepository,
) *ContributionService {
	return &ContributionService{
		userRepo:         userRepo,
		taskRepo:         taskRepo,
		contributionRepo: contributionRepo,
	}
}

// Plan resolves ids and returns the users that are not yet contributors of
// the task. taskID 0 means the task does not exist yet. Unknown ids are a
// validation error; a non-empty request that adds nobody is a conflict.
func (s *ContributionService) Plan(ctx context.Context, ids []uint64, taskID uint64) ([]uint64, error) {
	requested := uniqueExcept(ids, 0)
	if len(requested) == 0 {
		return nil, nil
	}

	users, err := s.userRepo.FindByIDs(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to find contributors: %w", err)
	}
	found := make(map[uint64]struct{}, len(users))
	for _, u := range users {
		found[u.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, strconv.FormatUint(id, 10))
		}
	}
	if len(missing) > 0 {
		return nil, apierrors.BadRequest("Users not found: %s", strings.Join(missing, ", "))
	}

	existing := map[uint64]struct{}{}
	if taskID != 0 {
		current, err := s.contributionRepo.UserIDsByTask(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to list contributions: %w", err)
		}
		for _, id := range current {
			existing[id] = struct{}{}
		}
	}

	fresh := make([]uint64, 0, len(requested))
	for _, id := range requested {
		if _, ok := existing[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return nil, ErrContributorsExist
	}
	return fresh, nil
}

// Apply records planned contributors for a task.
func (s *ContributionService) Apply(ctx context.Context, userIDs []uint64, taskID uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.Contribution, len(userIDs))
	for i, id := range userIDs {
		rows[i] = models.Contribution{UserID: id, TaskID: taskID}
	}
	if err := s.contributionRepo.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("failed to save contributions: %w", err)
	}
	return nil
}

// Reconcile plans ids against the recorded contributors of the task and
// inserts the new ones. An empty list is a no-op.
func (s *ContributionService) Reconcile(ctx context.Context, ids []uint64, taskID uint64) ([]uint64, error) {
	fresh, err := s.Plan(ctx, ids, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, fresh, taskID); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Contributors returns the contributor ids of a task.
func (s *ContributionService) Contributors(ctx context.Context, taskID uint64) ([]uint64, error) {
	ids, err := s.contributionRepo.UserIDsByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return ids, nil
}

// Remove deletes a contribution. Only the task creator may do so.
func (s *ContributionService) Remove(ctx context.Context, userID, taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	if task.CreatedBy != actorID {
		return ErrNotContributionOwner
	}

	if _, err := s.contributionRepo.Find(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContributionNotFound
		}
		return fmt.Errorf("failed to find contribution: %w", err)
	}

	if err := s.contributionRepo.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to remove contribution: %w", err)
	}
	return nil
}
