package repository

import (
	"context"

	"github.com/yukikurage/orgtask-api/internal/database"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// UnreadRecipients returns the recipients already holding the same unread notification
func (r *GormNotificationRepository) UnreadRecipients(ctx context.Context, message string, taskID *uint64, recipientIDs []uint64) ([]uint64, error) {
	ids := []uint64{}
	if len(recipientIDs) == 0 {
		return ids, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("message = ? AND is_read = ? AND recipient_id IN ?", message, false, recipientIDs)
	if taskID != nil {
		query = query.Where("task_id = ?", *taskID)
	} else {
		query = query.Where("task_id IS NULL")
	}

	err := query.Distinct().Pluck("recipient_id", &ids).Error
	return ids, err
}

// CreateBatch saves notifications in one statement
func (r *GormNotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

// ListUnread returns a page of unread notifications, newest first
func (r *GormNotificationRepository) ListUnread(ctx context.Context, recipientID uint64, page utils.PaginationParams) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Scopes(database.NewestFirst)
	return listPage[models.Notification](query, page)
}

// MarkRead flags notifications as read
func (r *GormNotificationRepository) MarkRead(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("is_read", true).Error
}

// GormFcmTokenRepository is a GORM implementation of FcmTokenRepository
type GormFcmTokenRepository struct {
	db *gorm.DB
}

// NewFcmTokenRepository creates a new FcmTokenRepository
func NewFcmTokenRepository(db *gorm.DB) FcmTokenRepository {
	return &GormFcmTokenRepository{db: db}
}

// Save stores a token; a known (user, token) pair is left untouched
func (r *GormFcmTokenRepository) Save(ctx context.Context, token *models.FcmToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
			DoNothing: true,
		}).
		Create(token).Error
}

// TokensByUser returns the device tokens of a user
func (r *GormFcmTokenRepository) TokensByUser(ctx context.Context, userID uint64) ([]string, error) {
	tokens := []string{}
	err := r.db.WithContext(ctx).Model(&models.FcmToken{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("token", &tokens).Error
	return tokens, err
}
