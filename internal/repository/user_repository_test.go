package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/testutil"
	"gorm.io/gorm"
)

type UserRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	db   *gorm.DB
	repo UserRepository
}

func (suite *UserRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	suite.repo = NewUserRepository(suite.db)
}

func (suite *UserRepositoryTestSuite) TestCreateWithTeam() {
	user := &models.User{Name: "Owner", Email: "owner@example.com", Roles: models.Roles{models.RoleTO}}
	suite.Require().NoError(suite.repo.CreateWithTeam(suite.ctx, user))
	suite.Require().NotNil(user.TeamID)

	stored, err := suite.repo.FindByID(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Equal(user.TeamID, stored.TeamID)
	suite.True(stored.HasRole(models.RoleTO))

	team, err := NewTeamRepository(suite.db).FindByOwner(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Equal(*user.TeamID, team.ID)
}

func (suite *UserRepositoryTestSuite) TestCreateWithTeam_RollsBackOnDuplicateEmail() {
	first := &models.User{Name: "A", Email: "dup@example.com", Roles: models.Roles{models.RoleTO}}
	suite.Require().NoError(suite.repo.CreateWithTeam(suite.ctx, first))

	second := &models.User{Name: "B", Email: "dup@example.com", Roles: models.Roles{models.RoleTO}}
	err := suite.repo.CreateWithTeam(suite.ctx, second)
	suite.ErrorIs(err, ErrCreateUser)

	count, err := NewTeamRepository(suite.db).Count(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
}

func (suite *UserRepositoryTestSuite) TestDeleteAndReparent() {
	t := suite.T()
	testutil.CreateUser(t, suite.db, testutil.UserFixture{ID: 1, Roles: []models.Role{models.RoleAdmin}})
	testutil.CreateUser(t, suite.db, testutil.UserFixture{ID: 2, Roles: []models.Role{models.RoleBO}, ParentID: testutil.Ptr(uint64(1))})
	testutil.CreateUser(t, suite.db, testutil.UserFixture{ID: 3, Roles: []models.Role{models.RoleBO}, ParentID: testutil.Ptr(uint64(2))})
	testutil.CreateUser(t, suite.db, testutil.UserFixture{ID: 4, Roles: []models.Role{models.RoleBO}, ParentID: testutil.Ptr(uint64(2))})

	suite.Require().NoError(suite.repo.DeleteAndReparent(suite.ctx, 2, testutil.Ptr(uint64(1))))

	children, err := suite.repo.ChildIDs(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal([]uint64{3, 4}, children)

	exists, err := suite.repo.Exists(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *UserRepositoryTestSuite) TestFindByIDs() {
	testutil.CreateUser(suite.T(), suite.db, testutil.UserFixture{ID: 1, Roles: []models.Role{models.RoleAdmin}})
	testutil.CreateUser(suite.T(), suite.db, testutil.UserFixture{ID: 2, Roles: []models.Role{models.RoleBO}, ParentID: testutil.Ptr(uint64(1))})

	users, err := suite.repo.FindByIDs(suite.ctx, []uint64{2, 9})
	suite.Require().NoError(err)
	suite.Require().Len(users, 1)
	suite.Equal(uint64(2), users[0].ID)

	users, err = suite.repo.FindByIDs(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Empty(users)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}
