package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/logging"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/utils"
)

// ErrHistoryWithoutTask is an internal failure: history can only be written
// for a persisted task.
var ErrHistoryWithoutTask = errors.New("cannot log history for a task without id")

var ErrFcmTokenRequired = apierrors.BadRequest("FCM token is required.")

// Pusher schedules best effort push delivery of a notification body.
type Pusher interface {
	Enqueue(recipientID uint64, body string)
}

// Dispatcher persists the notification and history side effects of task
// transitions and hands new notifications to push delivery.
type Dispatcher struct {
	notificationRepo repository.NotificationRepository
	historyRepo      repository.HistoryRepository
	fcmRepo          repository.FcmTokenRepository
	pusher           Pusher
}

// NewDispatcher creates a new Dispatcher. pusher may be nil.
func NewDispatcher(
	notificationRepo repository.NotificationRepository,
	historyRepo repository.HistoryRepository,
	fcmRepo repository.FcmTokenRepository,
	pusher Pusher,
) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		historyRepo:      historyRepo,
		fcmRepo:          fcmRepo,
		pusher:           pusher,
	}
}

// NotifyInput describes one notification and its optional contributor fan-out.
type NotifyInput struct {
	Message            string
	TaskID             *uint64
	RecipientID        uint64
	ContributorIDs     []uint64
	ContributorMessage string // defaults to Message
}

// Notify stores the notifications that are not already pending unread and
// queues a push for each of them. An empty result is not an error.
func (d *Dispatcher) Notify(ctx context.Context, input NotifyInput) ([]models.Notification, error) {
	created := []models.Notification{}

	duplicate, err := d.notificationRepo.UnreadRecipients(ctx, input.Message, input.TaskID, []uint64{input.RecipientID})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing notifications: %w", err)
	}
	if len(duplicate) == 0 {
		created = append(created, models.Notification{
			Message:     input.Message,
			TaskID:      input.TaskID,
			RecipientID: input.RecipientID,
		})
	}

	contributors := uniqueExcept(input.ContributorIDs, input.RecipientID)
	if len(contributors) > 0 {
		message := input.ContributorMessage
		if message == "" {
			message = input.Message
		}

		notified, err := d.notificationRepo.UnreadRecipients(ctx, message, input.TaskID, contributors)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing notifications: %w", err)
		}
		skip := make(map[uint64]struct{}, len(notified))
		for _, id := range notified {
			skip[id] = struct{}{}
		}
		for _, id := range contributors {
			if _, ok := skip[id]; ok {
				continue
			}
			created = append(created, models.Notification{
				Message:     message,
				TaskID:      input.TaskID,
				RecipientID: id,
			})
		}
	}

	if len(created) == 0 {
		return created, nil
	}

	if err := d.notificationRepo.CreateBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to save notifications: %w", err)
	}

	if d.pusher != nil {
		for _, n := range created {
			d.pusher.Enqueue(n.RecipientID, n.Message)
		}
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id": input.TaskID,
		"count":   len(created),
	}).Debug("notifications created")

	return created, nil
}

// LogHistory appends an audit row for a task.
func (d *Dispatcher) LogHistory(ctx context.Context, taskID uint64, action models.HistoryAction, details string, actorID uint64) (*models.TaskHistory, error) {
	if taskID == 0 {
		return nil, ErrHistoryWithoutTask
	}

	entry := &models.TaskHistory{
		TaskID:  taskID,
		UserID:  actorID,
		Action:  action,
		Details: details,
	}
	if err := d.historyRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save task history: %w", err)
	}
	return entry, nil
}

// UnreadNotifications returns a page of unread notifications and marks them read.
func (d *Dispatcher) UnreadNotifications(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Notification, int64, error) {
	notifications, total, err := d.notificationRepo.ListUnread(ctx, userID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	ids := make([]uint64, len(notifications))
	for i, n := range notifications {
		ids[i] = n.ID
	}
	if err := d.notificationRepo.MarkRead(ctx, ids); err != nil {
		return nil, 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return notifications, total, nil
}

// RegisterFcmToken stores a device token for a user. Registering the same
// token again is a no-op.
func (d *Dispatcher) RegisterFcmToken(ctx context.Context, userID uint64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrFcmTokenRequired
	}
	if err := d.fcmRepo.Save(ctx, &models.FcmToken{UserID: userID, Token: token}); err != nil {
		return fmt.Errorf("failed to save FCM token: %w", err)
	}
	return nil
}

// uniqueExcept returns ids without duplicates and without skip, keeping order.
func uniqueExcept(ids []uint64, skip uint64) []uint64 {
	seen := map[uint64]struct{}{skip: {}}
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
