package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/testutil"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
)

type DispatcherTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	pusher     *testutil.RecordingPusher
	dispatcher *Dispatcher
}

func (suite *DispatcherTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	repos := repository.NewRepositories(suite.db)
	suite.pusher = &testutil.RecordingPusher{}
	suite.dispatcher = NewDispatcher(repos.Notifications, repos.History, repos.FcmTokens, suite.pusher)
}

func (suite *DispatcherTestSuite) notificationCount() int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(&models.Notification{}).Count(&n).Error)
	return n
}

func (suite *DispatcherTestSuite) TestNotify_SkipsPendingDuplicates() {
	taskID := uint64(10)
	input := NotifyInput{Message: "You have been assigned a new task: A", TaskID: &taskID, RecipientID: 5}

	first, err := suite.dispatcher.Notify(suite.ctx, input)
	suite.Require().NoError(err)
	suite.Len(first, 1)
	suite.NotZero(first[0].ID)

	second, err := suite.dispatcher.Notify(suite.ctx, input)
	suite.Require().NoError(err)
	suite.Empty(second)
	suite.Equal(int64(1), suite.notificationCount())
	suite.Len(suite.pusher.Pushes(), 1)

	// the same message for another task is not a duplicate
	other := uint64(11)
	input.TaskID = &other
	third, err := suite.dispatcher.Notify(suite.ctx, input)
	suite.Require().NoError(err)
	suite.Len(third, 1)
}

func (suite *DispatcherTestSuite) TestNotify_ReadNotificationsDoNotBlock() {
	input := NotifyInput{Message: "Welcome", RecipientID: 5}

	_, err := suite.dispatcher.Notify(suite.ctx, input)
	suite.Require().NoError(err)

	unread, total, err := suite.dispatcher.UnreadNotifications(suite.ctx, 5, utils.NewPaginationParams(1, 10))
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(unread, 1)

	again, total, err := suite.dispatcher.UnreadNotifications(suite.ctx, 5, utils.NewPaginationParams(1, 10))
	suite.Require().NoError(err)
	suite.Equal(int64(0), total)
	suite.Empty(again)

	repeated, err := suite.dispatcher.Notify(suite.ctx, input)
	suite.Require().NoError(err)
	suite.Len(repeated, 1)
	suite.Equal(int64(2), suite.notificationCount())
}

func (suite *DispatcherTestSuite) TestNotify_ContributorFanOut() {
	taskID := uint64(3)
	notifications, err := suite.dispatcher.Notify(suite.ctx, NotifyInput{
		Message:            "assigned",
		TaskID:             &taskID,
		RecipientID:        5,
		ContributorIDs:     []uint64{5, 7, 7, 8},
		ContributorMessage: "contributed",
	})
	suite.Require().NoError(err)
	suite.Require().Len(notifications, 3)
	suite.Equal(uint64(5), notifications[0].RecipientID)
	suite.Equal("assigned", notifications[0].Message)
	suite.Equal([]uint64{7, 8}, []uint64{notifications[1].RecipientID, notifications[2].RecipientID})
	suite.Equal("contributed", notifications[1].Message)

	// only new contributors are notified the second time
	notifications, err = suite.dispatcher.Notify(suite.ctx, NotifyInput{
		Message:            "assigned",
		TaskID:             &taskID,
		RecipientID:        5,
		ContributorIDs:     []uint64{7, 9},
		ContributorMessage: "contributed",
	})
	suite.Require().NoError(err)
	suite.Require().Len(notifications, 1)
	suite.Equal(uint64(9), notifications[0].RecipientID)

	pushes := suite.pusher.Pushes()
	suite.Len(pushes, 4)
	suite.Equal("contributed", pushes[3].Body)
}

func (suite *DispatcherTestSuite) TestLogHistory() {
	entry, err := suite.dispatcher.LogHistory(suite.ctx, 4, models.ActionTaskUpdated, "Task \"x\" updated", 3)
	suite.Require().NoError(err)
	suite.NotZero(entry.ID)
	suite.Equal(uint64(3), entry.UserID)

	_, err = suite.dispatcher.LogHistory(suite.ctx, 0, models.ActionTaskCreated, "", 3)
	suite.ErrorIs(err, ErrHistoryWithoutTask)
}

func (suite *DispatcherTestSuite) TestRegisterFcmToken() {
	suite.Require().NoError(suite.dispatcher.RegisterFcmToken(suite.ctx, 5, "device-a"))
	suite.Require().NoError(suite.dispatcher.RegisterFcmToken(suite.ctx, 5, " device-a "))
	suite.Require().NoError(suite.dispatcher.RegisterFcmToken(suite.ctx, 5, "device-b"))

	tokens, err := suite.dispatcher.fcmRepo.TokensByUser(suite.ctx, 5)
	suite.Require().NoError(err)
	suite.ElementsMatch([]string{"device-a", "device-b"}, tokens)

	suite.ErrorIs(suite.dispatcher.RegisterFcmToken(suite.ctx, 5, "  "), ErrFcmTokenRequired)
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}
