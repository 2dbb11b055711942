package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/orgtask-api/internal/constants"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/logging"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = apierrors.NotFound("User not found.")
	ErrEmailRequired         = apierrors.BadRequest("Email is required.")
	ErrEmailTaken            = apierrors.BadRequest("User with this email already exists.")
	ErrEmailInUse            = apierrors.BadRequest("Email is already in use.")
	ErrPasswordTooShort      = apierrors.BadRequest("Password must be at least %d characters.", constants.MinPasswordLength)
	ErrRolesRequired         = apierrors.BadRequest("At least one role must be assigned.")
	ErrPORequiresTO          = apierrors.BadRequest("A TO must be selected if a PO role is assigned.")
	ErrTeamRequired          = apierrors.BadRequest("A team owner must be provided, or a TO role must be included.")
	ErrTORequiredBeforeBO    = apierrors.BadRequest("A TO role must be created before creating a BO.")
	ErrTeamNotFound          = apierrors.BadRequest("There is no team with this id.")
	ErrParentRequired        = apierrors.BadRequest("Parent ID must be provided.")
	ErrCannotRemoveTO        = apierrors.BadRequest("Cannot remove TO role.")
	ErrSelfParent            = apierrors.BadRequest("A user cannot be their own parent.")
	ErrParentCycle           = apierrors.BadRequest("Updating this user's parent would create a cycle.")
	ErrCannotDeleteRoot      = apierrors.BadRequest("Cannot delete the root user.")
	ErrOnlyBOCanBeDeleted    = apierrors.Forbidden("Only BO users can be deleted.")
	ErrFailedToHashPassword  = errors.New("failed to hash password")
	ErrFailedToCreateUser    = errors.New("failed to create user")
	ErrFailedToCreateTeam    = errors.New("failed to create team")
	ErrFailedToReparentUsers = errors.New("failed to reparent users")
)

// HierarchyService maintains the user tree and team ownership.
type HierarchyService struct {
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
}

// NewHierarchyService creates a new HierarchyService.
func NewHierarchyService(userRepo repository.UserRepository, teamRepo repository.TeamRepository) *HierarchyService {
	return &HierarchyService{
		userRepo: userRepo,
		teamRepo: teamRepo,
	}
}

// CreateUserInput represents the information needed to add a user to the tree.
type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	Department  string
	PhoneNumber string
	Roles       []models.Role
	ParentID    *uint64
	TeamID      *uint64
}

// UpdateUserInput holds the fields to change. Nil fields are left unchanged.
type UpdateUserInput struct {
	ID          uint64
	Name        *string
	Email       *string
	Password    *string
	Department  *string
	PhoneNumber *string
	Roles       []models.Role
	ParentID    *uint64
	TeamID      *uint64
}

func validateRoles(roles []models.Role) error {
	if len(roles) == 0 {
		return ErrRolesRequired
	}
	for _, r := range roles {
		if !r.Valid() {
			return apierrors.BadRequest("Invalid role %s.", r)
		}
	}
	if models.HasRole(roles, models.RolePO) && !models.HasRole(roles, models.RoleTO) {
		return ErrPORequiresTO
	}
	return nil
}

// checkRoleRules applies the team related role rules. isRoot exempts the
// root user from needing a team.
func (s *HierarchyService) checkRoleRules(ctx context.Context, roles []models.Role, teamID *uint64, isRoot bool) error {
	if err := validateRoles(roles); err != nil {
		return err
	}

	holdsTO := models.HasRole(roles, models.RoleTO)
	if !holdsTO && teamID == nil && !isRoot {
		return ErrTeamRequired
	}
	if models.HasRole(roles, models.RoleBO) && !holdsTO {
		count, err := s.teamRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}
		if count == 0 {
			return ErrTORequiredBeforeBO
		}
	}
	if teamID != nil {
		if _, err := s.teamRepo.FindByID(ctx, *teamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to find team: %w", err)
		}
	}
	return nil
}

func (s *HierarchyService) emailTaken(ctx context.Context, email string) (bool, error) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return false, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}

func (s *HierarchyService) requireParent(ctx context.Context, parentID uint64) error {
	ok, err := s.userRepo.Exists(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to find parent: %w", err)
	}
	if !ok {
		return apierrors.NotFound("Parent node with ID %d does not exist.", parentID)
	}
	return nil
}

// CreateUser adds a user under an existing parent. Only the first user may be
// created without a parent. TO holders get their team in the same
// transaction.
func (s *HierarchyService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	isRoot := false
	if input.ParentID == nil {
		count, err := s.userRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			return nil, ErrParentRequired
		}
		isRoot = true
	}

	if err := s.checkRoleRules(ctx, input.Roles, input.TeamID, isRoot); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if err := s.requireParent(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hashed,
		Department:   input.Department,
		PhoneNumber:  input.PhoneNumber,
		Roles:        models.Roles(input.Roles),
		ParentID:     input.ParentID,
		TeamID:       input.TeamID,
	}

	if user.HasRole(models.RoleTO) {
		user.TeamID = nil
		err = s.userRepo.CreateWithTeam(ctx, user)
	} else {
		err = s.userRepo.Create(ctx, user)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateTeam):
			return nil, ErrFailedToCreateTeam
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	logging.Logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"parent_id": user.ParentID,
		"roles":     user.Roles,
	}).Info("user created")

	return user, nil
}

// UpdateUser changes a user. Parent changes are checked for cycles against
// the current tree.
func (s *HierarchyService) UpdateUser(ctx context.Context, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	hadTO := user.HasRole(models.RoleTO)
	roles := []models.Role(user.Roles)
	if input.Roles != nil {
		roles = input.Roles
	}
	if hadTO && !models.HasRole(roles, models.RoleTO) {
		return nil, ErrCannotRemoveTO
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			taken, err := s.emailTaken(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailInUse
			}
			user.Email = email
		}
	}

	teamID := user.TeamID
	if input.TeamID != nil {
		teamID = input.TeamID
	}
	if err := s.checkRoleRules(ctx, roles, teamID, user.ParentID == nil); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parentID := *input.ParentID
		if parentID == user.ID {
			return nil, ErrSelfParent
		}
		if user.ParentID == nil || *user.ParentID != parentID {
			if err := s.requireParent(ctx, parentID); err != nil {
				return nil, err
			}
			cycle, err := CheckForCycle(ctx, s.userRepo, user.ID, parentID)
			if err != nil {
				return nil, err
			}
			if cycle {
				return nil, ErrParentCycle
			}
			user.ParentID = &parentID
		}
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	user.Roles = models.Roles(roles)
	user.TeamID = teamID

	gainsTO := !hadTO && user.HasRole(models.RoleTO)
	if err := s.userRepo.Update(ctx, user, gainsTO); err != nil {
		if errors.Is(err, repository.ErrCreateTeam) {
			return nil, ErrFailedToCreateTeam
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a BO user and moves their children one level up.
func (s *HierarchyService) DeleteUser(ctx context.Context, id uint64) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.ParentID == nil {
		return ErrCannotDeleteRoot
	}
	if user.HasRole(models.RoleTO) {
		return ErrCannotRemoveTO
	}
	if !user.HasRole(models.RoleBO) {
		return ErrOnlyBOCanBeDeleted
	}

	if err := s.userRepo.DeleteAndReparent(ctx, id, user.ParentID); err != nil {
		if errors.Is(err, repository.ErrReparent) {
			return ErrFailedToReparentUsers
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"user_id":   id,
		"parent_id": *user.ParentID,
	}).Info("user deleted")
	return nil
}

// GetUser retrieves a user by ID.
func (s *HierarchyService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UserNode is a user with its children, used to render the tree.
type UserNode struct {
	*models.User
	Children []*UserNode `json:"children"`
}

// UserTree returns the user forest rooted at users without a parent.
func (s *HierarchyService) UserTree(ctx context.Context) ([]*UserNode, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	nodes := make(map[uint64]*UserNode, len(users))
	for i := range users {
		nodes[users[i].ID] = &UserNode{User: &users[i], Children: []*UserNode{}}
	}

	roots := []*UserNode{}
	for i := range users {
		node := nodes[users[i].ID]
		if users[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*users[i].ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}

// ListTeams returns a page of teams.
func (s *HierarchyService) ListTeams(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error) {
	teams, total, err := s.teamRepo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

// SearchUser finds a user by email.
func (s *HierarchyService) SearchUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListTOs returns every user holding the TO role, ordered by id.
func (s *HierarchyService) ListTOs(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	owners := []models.User{}
	for _, u := range users {
		if u.HasRole(models.RoleTO) {
			owners = append(owners, u)
		}
	}
	return owners, nil
}

// HierarchyTO returns the TO holders above a user, nearest first.
func (s *HierarchyService) HierarchyTO(ctx context.Context, id uint64) ([]models.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return toAncestors(ctx, s.userRepo, id)
}

// toAncestors walks the parent chain of id and collects the TO holders on it.
// The user itself is not included.
func toAncestors(ctx context.Context, users repository.UserRepository, id uint64) ([]models.User, error) {
	owners := []models.User{}
	visited := map[uint64]struct{}{id: {}}

	current, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	for current.ParentID != nil {
		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			break
		}
		visited[parentID] = struct{}{}

		parent, err := users.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, fmt.Errorf("failed to find user %d: %w", parentID, err)
		}
		if parent.HasRole(models.RoleTO) {
			owners = append(owners, *parent)
		}
		current = parent
	}
	return owners, nil
}
