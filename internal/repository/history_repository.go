package repository

import (
	"context"

	"github.com/yukikurage/orgtask-api/internal/database"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
)

// GormHistoryRepository is a GORM implementation of HistoryRepository
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Create appends a history entry
func (r *GormHistoryRepository) Create(ctx context.Context, entry *models.TaskHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByTask returns a page of history for a task, newest first
func (r *GormHistoryRepository) ListByTask(ctx context.Context, taskID uint64, page utils.PaginationParams) ([]models.TaskHistory, int64, error) {
	query := r.db.WithContext(ctx).Where("task_id = ?", taskID).Scopes(database.NewestFirst)
	return listPage[models.TaskHistory](query, page)
}

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

// Create creates a comment
func (r *GormCommentRepository) Create(ctx context.Context, comment *models.TaskComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID finds a comment by ID
func (r *GormCommentRepository) FindByID(ctx context.Context, id uint64) (*models.TaskComment, error) {
	var comment models.TaskComment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update updates a comment
func (r *GormCommentRepository) Update(ctx context.Context, comment *models.TaskComment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// Delete deletes a comment
func (r *GormCommentRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.TaskComment{}, id).Error
}

// ListByTask returns a page of comments for a task, newest first
func (r *GormCommentRepository) ListByTask(ctx context.Context, taskID uint64, page utils.PaginationParams) ([]models.TaskComment, int64, error) {
	query := r.db.WithContext(ctx).Where("task_id = ?", taskID).Scopes(database.NewestFirst)
	return listPage[models.TaskComment](query, page)
}
