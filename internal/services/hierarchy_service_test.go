package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/testutil"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type HierarchyServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	service *HierarchyService
}

func (suite *HierarchyServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	repos := repository.NewRepositories(suite.db)
	suite.service = NewHierarchyService(repos.Users, repos.Teams)
}

func (suite *HierarchyServiceTestSuite) create(email string, roles []models.Role, parent, team *uint64) *models.User {
	user, err := suite.service.CreateUser(suite.ctx, CreateUserInput{
		Name:     email,
		Email:    email,
		Password: "password123",
		Roles:    roles,
		ParentID: parent,
		TeamID:   team,
	})
	suite.Require().NoError(err)
	return user
}

// buildTree creates root -> to -> bo -> leaf and returns them in that order.
func (suite *HierarchyServiceTestSuite) buildTree() (root, to, bo, leaf *models.User) {
	root = suite.create("root@example.com", []models.Role{models.RoleAdmin}, nil, nil)
	to = suite.create("to@example.com", []models.Role{models.RoleTO}, &root.ID, nil)
	bo = suite.create("bo@example.com", []models.Role{models.RoleBO}, &to.ID, to.TeamID)
	leaf = suite.create("leaf@example.com", []models.Role{models.RoleBO}, &bo.ID, to.TeamID)
	return root, to, bo, leaf
}

func (suite *HierarchyServiceTestSuite) TestCreateUser_RootAndTeams() {
	root, to, bo, _ := suite.buildTree()

	suite.Nil(root.ParentID)
	suite.Nil(root.TeamID)

	suite.Require().NotNil(to.TeamID)
	team, err := suite.service.teamRepo.FindByOwner(suite.ctx, to.ID)
	suite.Require().NoError(err)
	suite.Equal(*to.TeamID, team.ID)

	suite.Equal(to.TeamID, bo.TeamID)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(bo.PasswordHash), []byte("password123")))
	suite.Equal("bo@example.com", bo.Email)
}

func (suite *HierarchyServiceTestSuite) TestCreateUser_Validation() {
	_, err := suite.service.CreateUser(suite.ctx, CreateUserInput{Email: "a@example.com", Password: "password123"})
	suite.ErrorIs(err, ErrRolesRequired)

	root := suite.create("root@example.com", []models.Role{models.RoleAdmin}, nil, nil)

	cases := []struct {
		name  string
		input CreateUserInput
		want  error
	}{
		{"second root", CreateUserInput{Email: "x@example.com", Password: "password123", Roles: []models.Role{models.RoleAdmin}}, ErrParentRequired},
		{"blank email", CreateUserInput{Email: " ", Password: "password123", ParentID: &root.ID}, ErrEmailRequired},
		{"duplicate email", CreateUserInput{Email: "ROOT@example.com", Password: "password123", ParentID: &root.ID}, ErrEmailTaken},
		{"po without to", CreateUserInput{Email: "po@example.com", Password: "password123", Roles: []models.Role{models.RolePO}, ParentID: &root.ID}, ErrPORequiresTO},
		{"no team", CreateUserInput{Email: "m@example.com", Password: "password123", Roles: []models.Role{models.RoleManagement}, ParentID: &root.ID}, ErrTeamRequired},
		{"bo before any to", CreateUserInput{Email: "b@example.com", Password: "password123", Roles: []models.Role{models.RoleBO}, ParentID: &root.ID, TeamID: testutil.Ptr(uint64(1))}, ErrTORequiredBeforeBO},
		{"short password", CreateUserInput{Email: "t@example.com", Password: "short", Roles: []models.Role{models.RoleTO}, ParentID: &root.ID}, ErrPasswordTooShort},
	}
	for _, tc := range cases {
		_, err := suite.service.CreateUser(suite.ctx, tc.input)
		suite.ErrorIs(err, tc.want, tc.name)
	}

	_, err = suite.service.CreateUser(suite.ctx, CreateUserInput{
		Email: "t@example.com", Password: "password123", Roles: []models.Role{models.RoleTO}, ParentID: testutil.Ptr(uint64(404)),
	})
	suite.Equal(http.StatusNotFound, apierrors.StatusOf(err))

	_, err = suite.service.CreateUser(suite.ctx, CreateUserInput{
		Email: "t@example.com", Password: "password123", Roles: []models.Role{"OWNER"}, ParentID: &root.ID,
	})
	suite.Equal(http.StatusBadRequest, apierrors.StatusOf(err))
}

func (suite *HierarchyServiceTestSuite) TestCreateUser_UnknownTeam() {
	root := suite.create("root@example.com", []models.Role{models.RoleAdmin}, nil, nil)
	suite.create("to@example.com", []models.Role{models.RoleTO}, &root.ID, nil)

	_, err := suite.service.CreateUser(suite.ctx, CreateUserInput{
		Email: "b@example.com", Password: "password123", Roles: []models.Role{models.RoleBO}, ParentID: &root.ID, TeamID: testutil.Ptr(uint64(77)),
	})
	suite.ErrorIs(err, ErrTeamNotFound)
}

func (suite *HierarchyServiceTestSuite) TestUpdateUser_RejectsCycles() {
	_, to, bo, leaf := suite.buildTree()

	_, err := suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: to.ID, ParentID: &leaf.ID})
	suite.ErrorIs(err, ErrParentCycle)

	_, err = suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: bo.ID, ParentID: &bo.ID})
	suite.ErrorIs(err, ErrSelfParent)

	stored, err := suite.service.GetUser(suite.ctx, to.ID)
	suite.Require().NoError(err)
	suite.NotEqual(leaf.ID, *stored.ParentID)

	// moving the leaf up is fine
	updated, err := suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: leaf.ID, ParentID: &to.ID})
	suite.Require().NoError(err)
	suite.Equal(to.ID, *updated.ParentID)
}

func (suite *HierarchyServiceTestSuite) TestUpdateUser_Roles() {
	_, to, bo, _ := suite.buildTree()

	_, err := suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: to.ID, Roles: []models.Role{models.RoleBO}})
	suite.ErrorIs(err, ErrCannotRemoveTO)

	updated, err := suite.service.UpdateUser(suite.ctx, UpdateUserInput{
		ID:    bo.ID,
		Roles: []models.Role{models.RoleBO, models.RoleTO},
		Name:  testutil.Ptr("Promoted"),
	})
	suite.Require().NoError(err)
	suite.Equal("Promoted", updated.Name)
	suite.Require().NotNil(updated.TeamID)
	suite.NotEqual(*to.TeamID, *updated.TeamID)

	team, err := suite.service.teamRepo.FindByOwner(suite.ctx, bo.ID)
	suite.Require().NoError(err)
	suite.Equal(team.ID, *updated.TeamID)
}

func (suite *HierarchyServiceTestSuite) TestUpdateUser_Email() {
	root, to, _, _ := suite.buildTree()

	_, err := suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: to.ID, Email: &root.Email})
	suite.ErrorIs(err, ErrEmailInUse)

	updated, err := suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: to.ID, Email: testutil.Ptr(" New@Example.com ")})
	suite.Require().NoError(err)
	suite.Equal("new@example.com", updated.Email)

	_, err = suite.service.UpdateUser(suite.ctx, UpdateUserInput{ID: 404})
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *HierarchyServiceTestSuite) TestDeleteUser_ReparentsChildren() {
	root, to, bo, leaf := suite.buildTree()

	suite.Require().NoError(suite.service.DeleteUser(suite.ctx, bo.ID))

	_, err := suite.service.GetUser(suite.ctx, bo.ID)
	suite.ErrorIs(err, ErrUserNotFound)
	moved, err := suite.service.GetUser(suite.ctx, leaf.ID)
	suite.Require().NoError(err)
	suite.Equal(to.ID, *moved.ParentID)

	suite.ErrorIs(suite.service.DeleteUser(suite.ctx, root.ID), ErrCannotDeleteRoot)
	suite.ErrorIs(suite.service.DeleteUser(suite.ctx, to.ID), ErrCannotRemoveTO)
	suite.ErrorIs(suite.service.DeleteUser(suite.ctx, 404), ErrUserNotFound)

	manager := suite.create("m@example.com", []models.Role{models.RoleManagement}, &root.ID, to.TeamID)
	err = suite.service.DeleteUser(suite.ctx, manager.ID)
	suite.ErrorIs(err, ErrOnlyBOCanBeDeleted)
	suite.Equal(http.StatusForbidden, apierrors.StatusOf(err))
}

func (suite *HierarchyServiceTestSuite) TestUserTreeAndTeams() {
	root, to, bo, leaf := suite.buildTree()

	tree, err := suite.service.UserTree(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tree, 1)
	suite.Equal(root.ID, tree[0].ID)
	suite.Require().Len(tree[0].Children, 1)
	suite.Equal(to.ID, tree[0].Children[0].ID)
	suite.Equal(bo.ID, tree[0].Children[0].Children[0].ID)
	suite.Equal(leaf.ID, tree[0].Children[0].Children[0].Children[0].ID)

	teams, total, err := suite.service.ListTeams(suite.ctx, utils.NewPaginationParams(1, 10))
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(to.ID, teams[0].OwnerID)
}

func (suite *HierarchyServiceTestSuite) TestLookups() {
	_, to, bo, leaf := suite.buildTree()
	nested := suite.create("nested@example.com", []models.Role{models.RoleTO, models.RoleBO}, &bo.ID, nil)
	below := suite.create("below@example.com", []models.Role{models.RoleBO}, &nested.ID, nested.TeamID)

	found, err := suite.service.SearchUser(suite.ctx, "  BO@Example.com ")
	suite.Require().NoError(err)
	suite.Equal(bo.ID, found.ID)
	_, err = suite.service.SearchUser(suite.ctx, "nobody@example.com")
	suite.ErrorIs(err, ErrUserNotFound)
	_, err = suite.service.SearchUser(suite.ctx, " ")
	suite.ErrorIs(err, ErrEmailRequired)

	owners, err := suite.service.ListTOs(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(owners, 2)
	suite.Equal(to.ID, owners[0].ID)
	suite.Equal(nested.ID, owners[1].ID)

	chain, err := suite.service.HierarchyTO(suite.ctx, below.ID)
	suite.Require().NoError(err)
	suite.Require().Len(chain, 2)
	suite.Equal(nested.ID, chain[0].ID)
	suite.Equal(to.ID, chain[1].ID)

	chain, err = suite.service.HierarchyTO(suite.ctx, leaf.ID)
	suite.Require().NoError(err)
	suite.Require().Len(chain, 1)
	suite.Equal(to.ID, chain[0].ID)

	chain, err = suite.service.HierarchyTO(suite.ctx, to.ID)
	suite.Require().NoError(err)
	suite.Empty(chain)

	_, err = suite.service.HierarchyTO(suite.ctx, 404)
	suite.ErrorIs(err, ErrUserNotFound)
}

func TestHierarchyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HierarchyServiceTestSuite))
}
