package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/testutil"
	"gorm.io/gorm"
)

type ContributionServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	service *ContributionService
	task    *models.Task
}

func (suite *ContributionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	seedOrg(suite.T(), suite.db)
	repos := repository.NewRepositories(suite.db)
	suite.service = NewContributionService(repos.Users, repos.Tasks, repos.Contributions)

	suite.task = &models.Task{
		Title:      "Shared",
		Type:       models.TaskTypeGeneral,
		Status:     models.TaskStatusPending,
		AssignedTo: 5,
		CreatedBy:  3,
		DueDate:    time.Now().UTC().Add(time.Hour),
	}
	suite.Require().NoError(suite.db.Create(suite.task).Error)
}

func (suite *ContributionServiceTestSuite) TestPlan() {
	planned, err := suite.service.Plan(suite.ctx, nil, suite.task.ID)
	suite.Require().NoError(err)
	suite.Empty(planned)

	planned, err = suite.service.Plan(suite.ctx, []uint64{7, 7, 8}, 0)
	suite.Require().NoError(err)
	suite.Equal([]uint64{7, 8}, planned)

	_, err = suite.service.Plan(suite.ctx, []uint64{7, 98, 99}, suite.task.ID)
	suite.Equal(http.StatusBadRequest, apierrors.StatusOf(err))
	suite.Contains(err.Error(), "98, 99")
}

func (suite *ContributionServiceTestSuite) add(ids ...uint64) ([]uint64, error) {
	return suite.service.Reconcile(suite.ctx, ids, suite.task.ID)
}

func (suite *ContributionServiceTestSuite) TestReconcile_IsIdempotent() {
	added, err := suite.add()
	suite.Require().NoError(err)
	suite.Empty(added)

	added, err = suite.add(7, 8)
	suite.Require().NoError(err)
	suite.Equal([]uint64{7, 8}, added)

	_, err = suite.add(8, 7)
	suite.ErrorIs(err, ErrContributorsExist)

	added, err = suite.add(8, 9)
	suite.Require().NoError(err)
	suite.Equal([]uint64{9}, added)

	// a second apply of the same rows is absorbed by the store
	suite.Require().NoError(suite.service.Apply(suite.ctx, []uint64{9}, suite.task.ID))

	current, err := suite.service.Contributors(suite.ctx, suite.task.ID)
	suite.Require().NoError(err)
	suite.Equal([]uint64{7, 8, 9}, current)
}

func (suite *ContributionServiceTestSuite) TestRemove() {
	_, err := suite.add(7)
	suite.Require().NoError(err)

	suite.ErrorIs(suite.service.Remove(suite.ctx, 7, suite.task.ID, 5), ErrNotContributionOwner)
	suite.ErrorIs(suite.service.Remove(suite.ctx, 8, suite.task.ID, 3), ErrContributionNotFound)
	suite.ErrorIs(suite.service.Remove(suite.ctx, 7, 404, 3), ErrTaskNotFound)

	suite.Require().NoError(suite.service.Remove(suite.ctx, 7, suite.task.ID, 3))
	current, err := suite.service.Contributors(suite.ctx, suite.task.ID)
	suite.Require().NoError(err)
	suite.Empty(current)
}

func TestContributionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ContributionServiceTestSuite))
}
