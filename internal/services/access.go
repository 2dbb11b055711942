package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"gorm.io/gorm"
)

// Relationship is a way an actor can be related to a task.
type Relationship int

const (
	RelCreator Relationship = iota
	RelAssignee
	RelContributor
	RelTeamOwnerOfAssignee
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID    uint64
	Roles []models.Role
}

// AccessRule grants access when the actor holds one of the allowed roles or
// has one of the listed relationships with the task.
type AccessRule struct {
	Relationships []Relationship
	Roles         []models.Role
}

var (
	// taskEditRule guards task updates.
	taskEditRule = AccessRule{
		Relationships: []Relationship{RelCreator, RelAssignee},
		Roles:         []models.Role{models.RoleAdmin, models.RoleManagement},
	}
	// taskDiscussRule guards reading and writing comments.
	taskDiscussRule = AccessRule{
		Relationships: []Relationship{RelCreator, RelAssignee, RelContributor, RelTeamOwnerOfAssignee},
		Roles:         []models.Role{models.RoleAdmin, models.RoleManagement},
	}
)

// accessChecker evaluates AccessRule values against the stores.
type accessChecker struct {
	userRepo         repository.UserRepository
	teamRepo         repository.TeamRepository
	contributionRepo repository.ContributionRepository
}

// Allows reports whether actor satisfies rule for task. Cheap checks run
// first; store lookups happen only for relationships that need them.
func (a *accessChecker) Allows(ctx context.Context, rule AccessRule, actor Actor, task *models.Task) (bool, error) {
	if models.HasAnyRole(actor.Roles, rule.Roles...) {
		return true, nil
	}

	for _, rel := range rule.Relationships {
		var ok bool
		var err error
		switch rel {
		case RelCreator:
			ok = task.CreatedBy == actor.ID
		case RelAssignee:
			ok = task.AssignedTo == actor.ID
		case RelContributor:
			ok, err = a.isContributor(ctx, actor.ID, task.ID)
		case RelTeamOwnerOfAssignee:
			ok, err = a.ownsAssigneeTeam(ctx, actor, task)
		}
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (a *accessChecker) isContributor(ctx context.Context, userID, taskID uint64) (bool, error) {
	_, err := a.contributionRepo.Find(ctx, userID, taskID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to find contribution: %w", err)
}

// ownsAssigneeTeam is the single team-scoped rule: a TO qualifies only for
// tasks assigned to a member of the team they own.
func (a *accessChecker) ownsAssigneeTeam(ctx context.Context, actor Actor, task *models.Task) (bool, error) {
	if !models.HasRole(actor.Roles, models.RoleTO) {
		return false, nil
	}

	team, err := a.teamRepo.FindByOwner(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find owned team: %w", err)
	}

	assignee, err := a.userRepo.FindByID(ctx, task.AssignedTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find assignee: %w", err)
	}

	return assignee.TeamID != nil && *assignee.TeamID == team.ID, nil
}
